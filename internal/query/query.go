// Package query filters, sorts and paginates skill lists. Every function
// returns a new slice and leaves its input untouched.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/kamusis/skillcat/internal/catalog"
)

// DefaultPerPage is the page size used when the caller passes none.
const DefaultPerPage = 24

// Filter selects skills by category and free-text query.
type Filter struct {
	Category string
	Query    string
}

// fold case-folds s. A Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// FilterSkills applies the category predicate, then the text predicate.
func FilterSkills(skills []catalog.Skill, f Filter) []catalog.Skill {
	out := make([]catalog.Skill, 0, len(skills))

	matchCategory := f.Category != "" && f.Category != catalog.AllCategories
	q := strings.TrimSpace(f.Query)
	matchText := q != ""
	if matchText {
		q = fold(q)
	}

	for _, s := range skills {
		if matchCategory && !s.InCategory(f.Category) {
			continue
		}
		if matchText && !Matches(s, q) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Matches reports whether the already-folded query occurs in the skill's
// name, author, description or localized description.
func Matches(s catalog.Skill, foldedQuery string) bool {
	if strings.Contains(fold(s.Name), foldedQuery) ||
		strings.Contains(fold(s.Author), foldedQuery) ||
		strings.Contains(fold(s.Description), foldedQuery) {
		return true
	}
	return s.DescriptionCn != "" && strings.Contains(fold(s.DescriptionCn), foldedQuery)
}

// Search is FilterSkills with only the text predicate.
func Search(skills []catalog.Skill, q string) []catalog.Skill {
	return FilterSkills(skills, Filter{Query: q})
}

// SortField names a sortable skill attribute.
type SortField string

// SortOrder is asc or desc.
type SortOrder string

const (
	SortByName     SortField = "name"
	SortByAuthor   SortField = "author"
	SortByCategory SortField = "category"

	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Sort orders skills by field. Equal keys keep their relative order.
// Unknown fields sort by name, unknown orders sort ascending.
func Sort(skills []catalog.Skill, field SortField, order SortOrder) []catalog.Skill {
	key := func(s catalog.Skill) string { return s.Name }
	switch field {
	case SortByAuthor:
		key = func(s catalog.Skill) string { return s.Author }
	case SortByCategory:
		key = func(s catalog.Skill) string { return s.Category }
	}

	type keyed struct {
		key   string
		skill catalog.Skill
	}
	tmp := make([]keyed, len(skills))
	for i, s := range skills {
		tmp[i] = keyed{key: fold(key(s)), skill: s}
	}

	desc := order == Desc
	sort.SliceStable(tmp, func(i, j int) bool {
		if desc {
			return tmp[i].key > tmp[j].key
		}
		return tmp[i].key < tmp[j].key
	})

	out := make([]catalog.Skill, len(tmp))
	for i, k := range tmp {
		out[i] = k.skill
	}
	return out
}

// Page is one slice of a paginated list.
type Page struct {
	Skills      []catalog.Skill
	CurrentPage int
	TotalPages  int
	TotalSkills int
	PerPage     int
	StartIndex  int
	EndIndex    int
}

// Empty reports whether the underlying list had no skills.
func (p Page) Empty() bool { return p.TotalSkills == 0 }

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.CurrentPage > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.CurrentPage < p.TotalPages }

// Paginate returns the requested page. Out-of-range pages are clamped into
// [1, max(TotalPages, 1)]; TotalPages is 0 for an empty list.
func Paginate(skills []catalog.Skill, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(skills)
	totalPages := (total + perPage - 1) / perPage

	current := page
	if current > totalPages {
		current = totalPages
	}
	if current < 1 {
		current = 1
	}

	start := (current - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	out := make([]catalog.Skill, end-start)
	copy(out, skills[start:end])

	return Page{
		Skills:      out,
		CurrentPage: current,
		TotalPages:  totalPages,
		TotalSkills: total,
		PerPage:     perPage,
		StartIndex:  start,
		EndIndex:    end,
	}
}
