// Package template handles the mustache-style `{{name}}` placeholders that
// raw query definitions use for request parameters.
package template

import (
	"strconv"
	"strings"

	"github.com/lowkit/sqlrunner/pkg/value"
)

const (
	openMarker  = "{{"
	closeMarker = "}}"
)

// PlaceholderFunc renders the driver-native positional placeholder for the
// given 1-based bind index ("?" for mysql, "$1" for pgsql).
type PlaceholderFunc func(index int) string

// QuestionMark is the placeholder style of drivers with anonymous positional
// parameters.
func QuestionMark(int) string { return "?" }

// Dollar is the placeholder style of drivers with ordinal parameters.
func Dollar(index int) string { return "$" + strconv.Itoa(index) }

// ExtractKeys returns the ordered placeholder names appearing in the
// template. The same name used twice yields two entries; positional order is
// what makes the prepared bind order deterministic.
func ExtractKeys(tmpl string) []string {
	var keys []string
	rest := tmpl
	for {
		start := strings.Index(rest, openMarker)
		if start < 0 {
			return keys
		}
		end := strings.Index(rest[start:], closeMarker)
		if end < 0 {
			return keys
		}
		key := strings.TrimSpace(rest[start+len(openMarker) : start+end])
		if key != "" {
			keys = append(keys, key)
		}
		rest = rest[start+end+len(closeMarker):]
	}
}

// Prepare rewrites every placeholder into driver-native positional
// placeholder syntax, numbering occurrences left to right.
func Prepare(tmpl string, ph PlaceholderFunc) string {
	var b strings.Builder
	b.Grow(len(tmpl))
	rest := tmpl
	index := 1
	for {
		start := strings.Index(rest, openMarker)
		if start < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end := strings.Index(rest[start:], closeMarker)
		if end < 0 {
			b.WriteString(rest)
			return b.String()
		}
		key := strings.TrimSpace(rest[start+len(openMarker) : start+end])
		b.WriteString(rest[:start])
		if key == "" {
			// An empty marker is left as-is rather than consuming a slot.
			b.WriteString(rest[start : start+end+len(closeMarker)])
		} else {
			b.WriteString(ph(index))
			index++
		}
		rest = rest[start+end+len(closeMarker):]
	}
}

// Render substitutes every placeholder with its parameter value's textual
// form. The result is literal SQL text with no bind slots: this is the
// explicitly unsafe path for callers that disabled parameter binding.
func Render(tmpl string, params map[string]any) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))
	rest := tmpl
	for {
		start := strings.Index(rest, openMarker)
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.Index(rest[start:], closeMarker)
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		key := strings.TrimSpace(rest[start+len(openMarker) : start+end])
		b.WriteString(rest[:start])
		if key == "" {
			b.WriteString(rest[start : start+end+len(closeMarker)])
		} else {
			lit, err := value.Literal(params[key])
			if err != nil {
				return "", err
			}
			b.WriteString(lit)
		}
		rest = rest[start+end+len(closeMarker):]
	}
}
