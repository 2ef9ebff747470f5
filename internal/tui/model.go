// Package tui is the terminal front end: the same browsing controller as the
// web UI, driven by bubbletea key events.
package tui

import (
	"context"
	"net/url"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamusis/skillcat/internal/app"
	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/logger"
)

type focus int

const (
	focusResults focus = iota
	focusCategories
	focusSearch
)

// Options configures the browser.
type Options struct {
	Loader   app.Loader
	PerPage  int
	Debounce time.Duration
	// InitialQuery seeds the filter state, written like a page URL's query
	// string. When empty the last saved state is restored.
	InitialQuery string
	// StatePath persists the last URL between sessions. Empty disables it.
	StatePath string
}

type (
	loadedMsg struct{ ev app.Event }
	eventMsg  struct{ ev app.Event }
)

// Model is the bubbletea model. The controller is only touched from Update.
type Model struct {
	ctx     context.Context
	ctl     *app.Controller
	loader  app.Loader
	events  chan app.Event
	deliver func(app.Event)

	view       app.View
	input      textinput.Model
	focus      focus
	catCursor  int
	cursor     int
	showDetail bool
	width      int
	height     int
	styles     styles
}

// New builds the model and seeds its state. Loading starts in Init.
func New(ctx context.Context, opts Options) Model {
	raw := opts.InitialQuery
	if raw == "" {
		raw = LoadState(opts.StatePath)
	}
	statePath := opts.StatePath

	ti := textinput.New()
	ti.Placeholder = "搜索 Skill 名称、描述或作者..."
	ti.Prompt = "/ "
	ti.CharLimit = 200

	events := make(chan app.Event)
	m := Model{
		ctx:    ctx,
		loader: opts.Loader,
		events: events,
		deliver: func(ev app.Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		},
		input:  ti,
		styles: defaultStyles(),
	}
	m.ctl = app.New(app.Options{
		PerPage:  opts.PerPage,
		Debounce: opts.Debounce,
		History: app.HistoryFunc(func(u *url.URL) {
			if err := SaveState(statePath, u); err != nil {
				logger.G(ctx).WithError(err).Warn("cannot save browse state")
			}
		}),
	})
	m.ctl.Init(raw)
	m.view = m.ctl.View()
	m.input.SetValue(m.view.State.Query)
	return m
}

// Init starts the catalog load and the debounced-event listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitForEvent())
}

func (m Model) loadCmd() tea.Cmd {
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		return loadedMsg{ev: app.LoadCatalog(ctx, loader)}
	}
}

// waitForEvent hands the next debounced event to Update.
func (m Model) waitForEvent() tea.Cmd {
	ctx, ch := m.ctx, m.events
	return func() tea.Msg {
		select {
		case ev := <-ch:
			return eventMsg{ev: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil
	case loadedMsg:
		m.apply(msg.ev)
		return m, nil
	case eventMsg:
		m.apply(msg.ev)
		return m, m.waitForEvent()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) apply(ev app.Event) {
	m.view = m.ctl.Handle(m.ctx, ev)
	switch ev.(type) {
	case app.CategorySelected, app.SearchChanged, app.PageChanged:
		m.cursor = 0
		m.showDetail = false
	case app.CatalogLoaded:
		m.catCursor = m.activeCategoryIndex()
	}
	m.clampCursors()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.ctl.CancelInput()
		return m, tea.Quit
	}

	if m.focus == focusSearch {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeyTab:
			m.focus = focusResults
			m.input.Blur()
			return m, nil
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != before {
			m.ctl.InputSearch(v, m.deliver)
		}
		return m, cmd
	}

	if m.showDetail {
		switch msg.String() {
		case "esc", "enter", "q", "backspace":
			m.showDetail = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.ctl.CancelInput()
		return m, tea.Quit
	case "/":
		m.focus = focusSearch
		return m, m.input.Focus()
	case "tab":
		if m.focus == focusCategories {
			m.focus = focusResults
		} else {
			m.focus = focusCategories
		}
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "left", "h", "pgup":
		m.turnPage(-1)
	case "right", "l", "pgdown":
		m.turnPage(1)
	case "enter":
		m.choose()
	case "r":
		if m.view.Status == app.StatusFailed {
			m.apply(app.RetryRequested{})
			return m, m.loadCmd()
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if m.focus == focusCategories {
		m.catCursor += delta
	} else {
		m.cursor += delta
	}
	m.clampCursors()
}

func (m *Model) turnPage(delta int) {
	if m.view.Status != app.StatusReady {
		return
	}
	m.apply(app.PageChanged{Page: m.view.Page.CurrentPage + delta})
}

func (m *Model) choose() {
	if m.view.Status != app.StatusReady {
		return
	}
	if m.focus == focusCategories {
		items := m.categoryItems()
		if m.catCursor < len(items) {
			m.apply(app.CategorySelected{Category: items[m.catCursor].name})
			m.focus = focusResults
		}
		return
	}
	if len(m.view.Page.Skills) > 0 {
		m.showDetail = true
	}
}

func (m *Model) clampCursors() {
	m.catCursor = clamp(m.catCursor, 0, len(m.categoryItems())-1)
	m.cursor = clamp(m.cursor, 0, len(m.view.Page.Skills)-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

type categoryItem struct {
	name  string
	label string
	count int
}

func (m Model) categoryItems() []categoryItem {
	if m.view.Status != app.StatusReady {
		return nil
	}
	items := []categoryItem{{name: catalog.AllCategories, label: "所有 Skills", count: m.view.AllCount}}
	for _, c := range m.view.Categories {
		label := c.NameCn
		if label == "" {
			label = c.Name
		}
		items = append(items, categoryItem{name: c.Name, label: label, count: c.Count})
	}
	return items
}

func (m Model) activeCategoryIndex() int {
	for i, it := range m.categoryItems() {
		if it.name == m.view.State.Category {
			return i
		}
	}
	return 0
}

func (m Model) selected() (catalog.Skill, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Page.Skills) {
		return catalog.Skill{}, false
	}
	return m.view.Page.Skills[m.cursor], true
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
