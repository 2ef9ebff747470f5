// Package app holds the browsing controller shared by the web and terminal
// front ends. It owns the session filter state, applies events to it and
// produces the view to render.
package app

import (
	"context"
	"net/url"
	"time"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/debounce"
	"github.com/kamusis/skillcat/internal/logger"
	"github.com/kamusis/skillcat/internal/query"
	"github.com/kamusis/skillcat/internal/urlstate"
)

// Loader yields the catalog. *store.Store satisfies it.
type Loader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// History receives the re-encoded URL after every state change.
type History interface {
	Push(u *url.URL)
}

// HistoryFunc adapts a function to History.
type HistoryFunc func(u *url.URL)

func (f HistoryFunc) Push(u *url.URL) { f(u) }

// Options configures a Controller.
type Options struct {
	PerPage  int
	Debounce time.Duration
	// Base is the URL state is encoded onto. Defaults to "/".
	Base    *url.URL
	History History
}

// View is everything a front end needs to draw one frame.
type View struct {
	Status     Status
	State      urlstate.State
	// URL encodes State with the page clamped to what is actually shown.
	URL        string
	Err        error
	Categories []catalog.Category
	// AllCount is the sum of category counts without Latest, shown next to "all".
	AllCount int
	// TotalSkills is the catalog size regardless of filters.
	TotalSkills int
	Page        query.Page
	// Empty is set when the filters match nothing; Page carries no
	// pagination then.
	Empty bool
}

// Controller is not safe for concurrent use. Front ends drive it from a
// single goroutine and feed asynchronous results back as events.
type Controller struct {
	perPage   int
	base      *url.URL
	history   History
	debouncer *debounce.Debouncer

	state          urlstate.State
	status         Status
	err            error
	cat            *catalog.Catalog
	lastTotalPages int
}

// New returns a controller in the idle state.
func New(opts Options) *Controller {
	if opts.PerPage <= 0 {
		opts.PerPage = query.DefaultPerPage
	}
	base := opts.Base
	if base == nil {
		base = &url.URL{Path: "/"}
	}
	return &Controller{
		perPage:   opts.PerPage,
		base:      base,
		history:   opts.History,
		debouncer: debounce.New(opts.Debounce),
		state:     urlstate.Default(),
	}
}

// Init seeds the state from the URL query and enters the loading status.
// The caller performs the load, typically with LoadCatalog, and feeds the
// result back through Handle.
func (c *Controller) Init(rawQuery string) {
	c.state = urlstate.Decode(rawQuery)
	c.status = StatusLoading
	c.err = nil
}

// Start runs Init and a synchronous load.
func (c *Controller) Start(ctx context.Context, rawQuery string, loader Loader) View {
	c.Init(rawQuery)
	return c.Handle(ctx, LoadCatalog(ctx, loader))
}

// LoadCatalog loads through l and wraps the outcome as an event.
func LoadCatalog(ctx context.Context, l Loader) Event {
	cat, err := l.Load(ctx)
	if err != nil {
		return LoadFailed{Err: err}
	}
	return CatalogLoaded{Catalog: cat}
}

// State returns the current session filter state.
func (c *Controller) State() urlstate.State { return c.state }

// Status returns the current load status.
func (c *Controller) Status() Status { return c.status }

// Handle applies ev and returns the resulting view.
func (c *Controller) Handle(ctx context.Context, ev Event) View {
	log := logger.G(ctx)

	switch e := ev.(type) {
	case CatalogLoaded:
		c.cat = e.Catalog
		c.status = StatusReady
		c.err = nil
	case LoadFailed:
		c.status = StatusFailed
		c.err = e.Err
		log.WithError(e.Err).Warn("catalog unavailable")
	case RetryRequested:
		if c.status == StatusFailed {
			c.status = StatusLoading
			c.err = nil
		}
	case CategorySelected:
		c.state.Category = e.Category
		if c.state.Category == "" {
			c.state.Category = catalog.AllCategories
		}
		c.state.Page = 1
		c.push()
	case SearchChanged:
		c.state.Query = e.Query
		c.state.Page = 1
		c.push()
	case PageChanged:
		if !c.pageInRange(e.Page) {
			log.WithField("page", e.Page).Debug("ignoring page outside range")
			break
		}
		c.state.Page = e.Page
		c.push()
	}
	return c.View()
}

// InputSearch debounces raw search input. Only the last call within the
// quiet period delivers a SearchChanged event; deliver runs on a timer
// goroutine and must hand the event back to the controller's goroutine.
func (c *Controller) InputSearch(text string, deliver func(Event)) {
	c.debouncer.Schedule(func() { deliver(SearchChanged{Query: text}) })
}

// CancelInput drops a pending debounced search.
func (c *Controller) CancelInput() { c.debouncer.Cancel() }

func (c *Controller) pageInRange(p int) bool {
	return c.status == StatusReady && p >= 1 && p <= c.lastTotalPages
}

func (c *Controller) push() {
	if c.history != nil {
		c.history.Push(urlstate.Encode(c.state, c.base))
	}
}

// Href returns the URL ev would navigate to, without applying it. ok is
// false when ev would be ignored, such as paging past either end.
func (c *Controller) Href(ev Event) (href string, ok bool) {
	next := c.state
	switch e := ev.(type) {
	case CategorySelected:
		next.Category = e.Category
		next.Page = 1
	case SearchChanged:
		next.Query = e.Query
		next.Page = 1
	case PageChanged:
		if !c.pageInRange(e.Page) {
			return "", false
		}
		next.Page = e.Page
	case RetryRequested:
	default:
		return "", false
	}
	return urlstate.Href(next, c.base), true
}

// View renders the current state: filter, then paginate.
func (c *Controller) View() View {
	v := View{
		Status: c.status,
		State:  c.state,
		URL:    urlstate.Href(c.state, c.base),
		Err:    c.err,
	}
	if c.status != StatusReady || c.cat == nil {
		return v
	}

	v.Categories = c.cat.Categories
	v.TotalSkills = c.cat.TotalSkills
	v.AllCount = catalog.AllCount(c.cat)

	filtered := query.FilterSkills(c.cat.Skills, query.Filter{
		Category: c.state.Category,
		Query:    c.state.Query,
	})
	v.Page = query.Paginate(filtered, c.state.Page, c.perPage)
	c.lastTotalPages = v.Page.TotalPages
	if v.Page.CurrentPage != c.state.Page {
		shown := c.state
		shown.Page = v.Page.CurrentPage
		v.URL = urlstate.Href(shown, c.base)
	}
	v.Empty = v.Page.Empty()
	return v
}
