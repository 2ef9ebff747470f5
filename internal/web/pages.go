package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/kamusis/skillcat/internal/app"
	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/categorize"
	"github.com/kamusis/skillcat/internal/logger"
	"github.com/kamusis/skillcat/internal/richtext"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// cardDescriptionLimit is the number of runes a result card shows.
const cardDescriptionLimit = 100

func parseTemplates() (*template.Template, error) {
	return template.New("_root").ParseFS(templateFS, "templates/*.tmpl")
}

type sidebarItem struct {
	Name   string
	Label  string
	Icon   string
	Count  int
	Href   string
	Active bool
}

type card struct {
	ID            string
	Href          string
	Name          string
	Author        string
	CategoryLabel string
	Icon          string
	Description   string
	IsNew         bool
}

type pager struct {
	Current  int
	Total    int
	PrevHref string
	NextHref string
}

type detail struct {
	Skill         catalog.Skill
	CategoryLabel string
	Icon          string
	Description   template.HTML
	Original      template.HTML
}

type pageData struct {
	// DebounceMS is the search input delay handed to htmx.
	DebounceMS int64
	View       app.View
	Ready      bool
	Failed     bool
	// OOB asks the results fragment to refresh the sidebar out of band.
	OOB        bool
	Sidebar    []sidebarItem
	Cards      []card
	Pager      *pager
	RetryHref  string
	Detail     *detail
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.G(r.Context()).WithError(err).WithField("template", name).Error("template execution failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleIndex renders the browsing page for the filter state in the URL.
// htmx requests get only the results region and the address to push.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctl := app.New(app.Options{PerPage: s.opts.PerPage})
	v := ctl.Start(ctx, r.URL.RawQuery, s.store)
	data := s.buildPage(ctl, v)

	status := http.StatusOK
	if IsHTMX(ctx) {
		data.OOB = true
		w.Header().Set("HX-Push-Url", v.URL)
		s.render(w, r, status, "results", data)
		return
	}
	if v.Status == app.StatusFailed {
		status = http.StatusServiceUnavailable
	}
	s.render(w, r, status, "layout", data)
}

// handleSkill renders one skill as a modal fragment or a standalone page.
func (s *Server) handleSkill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctl := app.New(app.Options{PerPage: s.opts.PerPage})
	v := ctl.Start(ctx, "", s.store)
	data := s.buildPage(ctl, v)
	if v.Status == app.StatusFailed {
		s.render(w, r, http.StatusServiceUnavailable, "layout", data)
		return
	}

	c, _ := s.store.Load(ctx)
	sk, ok := c.SkillByID(skillID(r))
	if !ok {
		http.NotFound(w, r)
		return
	}
	data.Detail = newDetail(c, sk)

	if IsHTMX(ctx) {
		s.render(w, r, http.StatusOK, "skill", data.Detail)
		return
	}
	s.render(w, r, http.StatusOK, "layout", data)
}

func newDetail(c *catalog.Catalog, sk catalog.Skill) *detail {
	d := &detail{
		Skill:         sk,
		CategoryLabel: categoryLabel(c, sk.Category),
		Icon:          categoryIcon(c, sk.Category),
		Description:   richtext.Render(sk.DisplayDescription()),
	}
	if sk.DescriptionCn != "" && sk.DescriptionCn != sk.Description {
		d.Original = richtext.Render(sk.Description)
	}
	return d
}

func (s *Server) buildPage(ctl *app.Controller, v app.View) *pageData {
	data := &pageData{
		DebounceMS: s.opts.Debounce.Milliseconds(),
		View:       v,
		Ready:      v.Status == app.StatusReady,
		Failed:     v.Status == app.StatusFailed,
	}
	if data.Failed {
		data.RetryHref, _ = ctl.Href(app.RetryRequested{})
		return data
	}
	if !data.Ready {
		return data
	}

	allHref, _ := ctl.Href(app.CategorySelected{Category: catalog.AllCategories})
	data.Sidebar = append(data.Sidebar, sidebarItem{
		Name:   catalog.AllCategories,
		Label:  "所有 Skills",
		Icon:   "fa-th-large",
		Count:  v.AllCount,
		Href:   allHref,
		Active: v.State.Category == catalog.AllCategories,
	})
	labels := make(map[string]catalog.Category, len(v.Categories))
	for _, cat := range v.Categories {
		labels[cat.Name] = cat
		href, _ := ctl.Href(app.CategorySelected{Category: cat.Name})
		data.Sidebar = append(data.Sidebar, sidebarItem{
			Name:   cat.Name,
			Label:  label(cat),
			Icon:   icon(cat),
			Count:  cat.Count,
			Href:   href,
			Active: v.State.Category == cat.Name,
		})
	}

	for _, sk := range v.Page.Skills {
		cat, ok := labels[sk.Category]
		if !ok {
			cat = catalog.Category{Name: sk.Category}
		}
		data.Cards = append(data.Cards, card{
			ID:            sk.ID,
			Href:          skillHref(sk.ID),
			Name:          sk.Name,
			Author:        sk.Author,
			CategoryLabel: label(cat),
			Icon:          icon(cat),
			Description:   richtext.Truncate(sk.DisplayDescription(), cardDescriptionLimit),
			IsNew:         sk.IsNew,
		})
	}

	if v.Page.TotalPages > 1 {
		p := &pager{Current: v.Page.CurrentPage, Total: v.Page.TotalPages}
		p.PrevHref, _ = ctl.Href(app.PageChanged{Page: p.Current - 1})
		p.NextHref, _ = ctl.Href(app.PageChanged{Page: p.Current + 1})
		data.Pager = p
	}
	return data
}

// skillHref is the detail page of the skill with the given id.
func skillHref(id string) string {
	return "/skills/" + url.PathEscape(id)
}

// skillID reads the {id} route parameter. chi routes on RawPath when the
// request has one, so the parameter is still escaped in that case.
func skillID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id
	}
	if raw, err := url.PathUnescape(id); err == nil {
		return raw
	}
	return id
}

func label(cat catalog.Category) string {
	if cat.NameCn != "" {
		return cat.NameCn
	}
	return categorize.Meta(cat.Name).NameCn
}

func icon(cat catalog.Category) string {
	if cat.Icon != "" {
		return cat.Icon
	}
	return categorize.Icon(cat.Name)
}

func categoryLabel(c *catalog.Catalog, name string) string {
	if cat, ok := c.Category(name); ok {
		return label(cat)
	}
	return label(catalog.Category{Name: name})
}

func categoryIcon(c *catalog.Catalog, name string) string {
	if cat, ok := c.Category(name); ok {
		return icon(cat)
	}
	return categorize.Icon(name)
}
