// Package urlstate encodes the browsing state (category, query, page) to and
// from a URL query string.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/kamusis/skillcat/internal/catalog"
)

// Query parameter names.
const (
	ParamCategory = "category"
	ParamQuery    = "q"
	ParamPage     = "page"
)

// State is the session filter state.
type State struct {
	Category string
	Query    string
	Page     int
}

// Default is the state of a URL with no parameters.
func Default() State {
	return State{Category: catalog.AllCategories, Page: 1}
}

// IsDefault reports whether s encodes to no parameters.
func (s State) IsDefault() bool {
	return s.normalize() == Default()
}

func (s State) normalize() State {
	if s.Category == "" {
		s.Category = catalog.AllCategories
	}
	if strings.TrimSpace(s.Query) == "" {
		s.Query = ""
	}
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}

// Decode reads state from a raw query string. Missing or malformed values
// fall back to their defaults; Decode never fails.
func Decode(rawQuery string) State {
	vals, _ := url.ParseQuery(rawQuery)
	return FromValues(vals)
}

// FromValues reads state from already-parsed query values.
func FromValues(vals url.Values) State {
	s := Default()
	if c := vals.Get(ParamCategory); c != "" {
		s.Category = c
	}
	s.Query = vals.Get(ParamQuery)
	if p, err := strconv.Atoi(vals.Get(ParamPage)); err == nil && p >= 1 {
		s.Page = p
	}
	return s
}

// Apply writes s into vals, deleting parameters that hold their default.
// Other keys in vals are left alone.
func Apply(s State, vals url.Values) {
	s = s.normalize()
	if s.Category == catalog.AllCategories {
		vals.Del(ParamCategory)
	} else {
		vals.Set(ParamCategory, s.Category)
	}
	if s.Query == "" {
		vals.Del(ParamQuery)
	} else {
		vals.Set(ParamQuery, s.Query)
	}
	if s.Page == 1 {
		vals.Del(ParamPage)
	} else {
		vals.Set(ParamPage, strconv.Itoa(s.Page))
	}
}

// Encode returns a copy of base whose query string carries s.
func Encode(s State, base *url.URL) *url.URL {
	u := &url.URL{}
	if base != nil {
		cp := *base
		u = &cp
	}
	vals := u.Query()
	Apply(s, vals)
	u.RawQuery = vals.Encode()
	u.ForceQuery = false
	return u
}

// Href is Encode rendered as a string relative to base.
func Href(s State, base *url.URL) string {
	u := Encode(s, base)
	if u.RawQuery == "" {
		if u.Path == "" {
			return "?"
		}
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}
