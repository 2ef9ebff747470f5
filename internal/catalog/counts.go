package catalog

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// CountByCategory tallies skills per category name.
func CountByCategory(skills []Skill) map[string]int {
	counts := make(map[string]int)
	for _, s := range skills {
		counts[s.Category]++
	}
	return counts
}

// Recount recomputes every category count and totalSkills from the skill
// list. Call it after any mutation of the catalog.
func Recount(c *Catalog) {
	counts := CountByCategory(c.Skills)
	newCount := 0
	for _, s := range c.Skills {
		if s.IsNew {
			newCount++
		}
	}
	for i := range c.Categories {
		if c.Categories[i].Name == Latest {
			c.Categories[i].Count = newCount
			continue
		}
		c.Categories[i].Count = counts[c.Categories[i].Name]
	}
	c.TotalSkills = len(c.Skills)
}

// AllCount is the count shown on the "all skills" tab: the sum of category
// counts, leaving out Latest since its skills also sit in a real category.
func AllCount(c *Catalog) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, cat := range c.Categories {
		if cat.Name == Latest {
			continue
		}
		n += cat.Count
	}
	return n
}

// Validate checks the catalog invariants and reports every violation.
func Validate(c *Catalog) error {
	if c == nil {
		return errors.New("catalog is nil")
	}
	var result *multierror.Error

	if c.TotalSkills != len(c.Skills) {
		result = multierror.Append(result, fmt.Errorf("totalSkills is %d but catalog has %d skills", c.TotalSkills, len(c.Skills)))
	}

	seen := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		if s.ID == "" {
			result = multierror.Append(result, fmt.Errorf("skill %q has an empty id", s.Name))
			continue
		}
		if seen[s.ID] {
			result = multierror.Append(result, fmt.Errorf("duplicate skill id %q", s.ID))
		}
		seen[s.ID] = true
	}

	known := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		known[cat.Name] = true
	}
	for _, s := range c.Skills {
		if !known[s.Category] {
			result = multierror.Append(result, fmt.Errorf("skill %q references unknown category %q", s.ID, s.Category))
		}
	}

	counts := CountByCategory(c.Skills)
	newCount := 0
	for _, s := range c.Skills {
		if s.IsNew {
			newCount++
		}
	}
	for i, cat := range c.Categories {
		want := counts[cat.Name]
		if cat.Name == Latest {
			want = newCount
			if i != 0 {
				result = multierror.Append(result, fmt.Errorf("category %s must be first, found at position %d", Latest, i+1))
			}
		}
		if cat.Count != want {
			result = multierror.Append(result, fmt.Errorf("category %q: expected count %d, got %d", cat.Name, want, cat.Count))
		}
	}

	return result.ErrorOrNil()
}
