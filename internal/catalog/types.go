// Package catalog defines the skills catalog document and the helpers the
// pipeline uses to read, write and keep it consistent.
package catalog

// SchemaVersion is the catalog schema written by the pipeline and trusted by
// the store's persistent cache.
const SchemaVersion = "3.0"

// AllCategories is the sentinel category that matches every skill.
const AllCategories = "all"

// Latest is the reserved virtual category holding skills flagged isNew.
const Latest = "Latest"

// Skill is one catalog entry.
type Skill struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Author         string `json:"author"`
	Description    string `json:"description"`
	DescriptionCn  string `json:"descriptionCn"`
	GithubURL      string `json:"githubUrl"`
	Category       string `json:"category"`
	InstallCommand string `json:"installCommand"`
	IsNew          bool   `json:"isNew,omitempty"`
}

// DisplayDescription prefers the localized description.
func (s Skill) DisplayDescription() string {
	if s.DescriptionCn != "" {
		return s.DescriptionCn
	}
	return s.Description
}

// Category groups skills under a canonical name.
type Category struct {
	Name   string `json:"name"`
	NameCn string `json:"nameCn"`
	Count  int    `json:"count"`
	Icon   string `json:"icon"`
}

// Catalog is the top-level document.
type Catalog struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	TotalSkills int        `json:"totalSkills"`
	Categories  []Category `json:"categories"`
	Skills      []Skill    `json:"skills"`
}

// InCategory reports whether s belongs to the named category.
// Latest selects new skills; every other name is an exact match.
func (s Skill) InCategory(name string) bool {
	if name == Latest {
		return s.IsNew
	}
	return s.Category == name
}

// SkillByID returns the skill with the given id.
func (c *Catalog) SkillByID(id string) (Skill, bool) {
	if c == nil {
		return Skill{}, false
	}
	for _, s := range c.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return Skill{}, false
}

// Category returns the category with the given name.
func (c *Catalog) Category(name string) (Category, bool) {
	if c == nil {
		return Category{}, false
	}
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}
