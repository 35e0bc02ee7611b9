package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/venue-events/internal/logger"
)

// SourceParam is the query parameter naming the source.
const SourceParam = "source"

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

// Response is a transport-neutral reply shared by the HTTP and Lambda shells.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

func textResponse(status int, msg string) Response {
	return Response{Status: status, ContentType: contentTypeText, Body: []byte(msg + "\n")}
}

// Respond runs Handle and serializes the outcome.
// Missing or unknown sources are 400, listing failures 502, success 200 with a JSON array.
func (d *Dispatcher) Respond(ctx context.Context, name string) Response {
	start := time.Now()
	log := d.log.With(logger.Fields{
		"request_id": uuid.NewString(),
		"source":     name,
	})

	var (
		resp   Response
		events int
	)
	if strings.TrimSpace(name) == "" {
		resp = textResponse(http.StatusBadRequest, "missing "+SourceParam+" parameter")
	} else {
		result, err := d.Handle(ctx, name)
		switch {
		case errors.Is(err, ErrUnknownSource):
			resp = textResponse(http.StatusBadRequest, "unknown source: "+strconv.Quote(name))
		case err != nil:
			log.Error("listing fetch failed", nil, err)
			resp = textResponse(http.StatusBadGateway, "failed to fetch listing for "+name)
		default:
			body, mErr := json.Marshal(result)
			if mErr != nil {
				log.Error("encoding events", nil, mErr)
				resp = textResponse(http.StatusInternalServerError, "failed to encode events")
				break
			}
			events = len(result)
			resp = Response{Status: http.StatusOK, ContentType: contentTypeJSON, Body: body}
		}
	}

	took := time.Since(start)
	label := name
	if resp.Status == http.StatusBadRequest {
		label = "invalid"
	}
	d.metrics.Dispatched(label, strconv.Itoa(resp.Status), events, took)
	log.Info("dispatch finished", logger.Fields{
		"status":      resp.Status,
		"events":      events,
		"duration_ms": took.Milliseconds(),
	})
	return resp
}

// ServeHTTP answers GET /events?source=<name>.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		write(w, textResponse(http.StatusMethodNotAllowed, "method not allowed"))
		return
	}
	write(w, d.Respond(r.Context(), r.URL.Query().Get(SourceParam)))
}

// Routes returns a mux serving /events, /sources and /healthz.
func (d *Dispatcher) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/events", d)
	mux.HandleFunc("/sources", func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(d.Sources())
		write(w, Response{Status: http.StatusOK, ContentType: contentTypeJSON, Body: body})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		write(w, textResponse(http.StatusOK, "ok"))
	})
	return mux
}

func write(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}
