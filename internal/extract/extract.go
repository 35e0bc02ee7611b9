// Package extract pulls single string values out of parsed HTML fragments.
//
// A Rule pairs a CSS selector with an extraction mode (element text or a named
// attribute). Selectors are compiled when the rule is built, so a malformed
// selector fails at registration time and never while handling a request.
// Extraction itself never fails: a missing node or attribute yields "".
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Rule selects one value from a fragment.
type Rule struct {
	Selector string
	Attr     string // empty for text mode

	matcher goquery.Matcher
}

// Compile builds a rule, reporting a malformed selector as an error.
// An empty selector targets the fragment itself.
func Compile(selector, attr string) (Rule, error) {
	r := Rule{Selector: strings.TrimSpace(selector), Attr: attr}
	if r.Selector == "" {
		return r, nil
	}
	sel, err := cascadia.Compile(r.Selector)
	if err != nil {
		return Rule{}, fmt.Errorf("compiling selector %q: %w", r.Selector, err)
	}
	r.matcher = sel
	return r, nil
}

// MustCompile is like Compile but panics on a malformed selector.
func MustCompile(selector, attr string) Rule {
	r, err := Compile(selector, attr)
	if err != nil {
		panic(err)
	}
	return r
}

// Text returns a rule extracting the trimmed text of the first match.
func Text(selector string) Rule {
	return MustCompile(selector, "")
}

// Attr returns a rule extracting attribute name of the first match.
func Attr(selector, name string) Rule {
	return MustCompile(selector, name)
}

// IsText reports whether the rule extracts element text.
func (r Rule) IsText() bool {
	return r.Attr == ""
}

// Compiled reports whether the rule is ready for Extract.
func (r Rule) Compiled() bool {
	return r.Selector == "" || r.matcher != nil
}

// Extract applies the rule to s and returns the value, or "" when nothing matches.
// Text and attribute values are both trimmed of surrounding whitespace.
func (r Rule) Extract(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}

	target := s.First()
	if r.Selector != "" {
		if r.matcher == nil {
			return ""
		}
		target = s.FindMatcher(r.matcher).First()
	}
	if target.Length() == 0 {
		return ""
	}

	if r.IsText() {
		return strings.TrimSpace(target.Text())
	}
	val, _ := target.Attr(r.Attr)
	return strings.TrimSpace(val)
}

func (r Rule) String() string {
	if r.IsText() {
		return fmt.Sprintf("text(%s)", r.Selector)
	}
	return fmt.Sprintf("attr(%s@%s)", r.Selector, r.Attr)
}
