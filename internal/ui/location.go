package ui

import (
	"net/url"
	"strings"
)

// Location is the canonical, shareable address of a screen. Only the
// "query" parameter is meaningful; anything else is dropped on parse.
type Location struct {
	query string
}

// ParseLocation accepts "?query=...", "query=..." or a full URL.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	raw := s
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Location{}, err
		}
		raw = u.RawQuery
	} else {
		raw = strings.TrimPrefix(raw, "?")
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return Location{}, err
	}
	return Location{}.WithQuery(values.Get("query")), nil
}

// Query returns the active filter, "" when the location is unfiltered.
func (l Location) Query() string {
	return l.query
}

// WithQuery returns a copy addressing q with surrounding whitespace
// trimmed, so a navigate submission retrieves the trimmed text. Blank q
// clears the parameter.
func (l Location) WithQuery(q string) Location {
	l.query = strings.TrimSpace(q)
	return l
}

// IsZero reports whether the location carries no filter.
func (l Location) IsZero() bool { return l.query == "" }

// String renders the canonical form: "" or "?query=<percent-encoded>".
func (l Location) String() string {
	if l.query == "" {
		return ""
	}
	return "?query=" + strings.ReplaceAll(url.QueryEscape(l.query), "+", "%20")
}
