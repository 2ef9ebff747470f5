package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/skillcat/internal/catalog"
)

type staticLoader struct {
	cat *catalog.Catalog
	err error
}

func (l staticLoader) Load(context.Context) (*catalog.Catalog, error) { return l.cat, l.err }

func sampleCatalog(n int) *catalog.Catalog {
	c := &catalog.Catalog{
		Version: catalog.SchemaVersion,
		Categories: []catalog.Category{
			{Name: "Git & GitHub", NameCn: "Git 与 GitHub", Icon: "fa-code-branch"},
			{Name: "Notes & PKM", NameCn: "笔记", Icon: "fa-book"},
		},
	}
	for i := 0; i < n; i++ {
		cat := "Git & GitHub"
		if i%3 == 0 {
			cat = "Notes & PKM"
		}
		c.Skills = append(c.Skills, catalog.Skill{
			ID:       fmt.Sprintf("skill-%02d", i),
			Name:     fmt.Sprintf("Skill %02d", i),
			Author:   "author",
			Category: cat,
		})
	}
	catalog.Recount(c)
	return c
}

type recorder struct{ urls []string }

func (r *recorder) Push(u *url.URL) { r.urls = append(r.urls, u.String()) }

func TestStart_SeedsStateFromURL(t *testing.T) {
	ctx := context.Background()
	c := New(Options{})
	v := c.Start(ctx, "category=Git+%26+GitHub&page=1", staticLoader{cat: sampleCatalog(30)})

	assert.Equal(t, StatusReady, v.Status)
	assert.Equal(t, "Git & GitHub", v.State.Category)
	assert.Equal(t, 20, v.Page.TotalSkills)
	assert.Equal(t, 30, v.TotalSkills)
	assert.Equal(t, 30, v.AllCount)
	assert.Len(t, v.Categories, 2)
}

func TestStart_ClampsPageInRender(t *testing.T) {
	c := New(Options{})
	v := c.Start(context.Background(), "page=3", staticLoader{cat: sampleCatalog(30)})

	assert.Equal(t, 3, v.State.Page)
	assert.Equal(t, 2, v.Page.CurrentPage)
	assert.Len(t, v.Page.Skills, 6)
}

func TestView_URLCarriesClampedPage(t *testing.T) {
	c := New(Options{})
	v := c.Start(context.Background(), "category=Git+%26+GitHub&page=7", staticLoader{cat: sampleCatalog(30)})

	assert.Equal(t, 7, v.State.Page)
	assert.Equal(t, 1, v.Page.CurrentPage)
	assert.Equal(t, "/?category=Git+%26+GitHub", v.URL)

	v = New(Options{}).Start(context.Background(), "page=2", staticLoader{cat: sampleCatalog(30)})
	assert.Equal(t, "/?page=2", v.URL, "an in-range page is kept")
}

func TestView_AllCountSkipsLatest(t *testing.T) {
	cat := sampleCatalog(30)
	cat.Skills[0].IsNew = true
	cat.Categories = append([]catalog.Category{{Name: catalog.Latest}}, cat.Categories...)
	catalog.Recount(cat)

	v := New(Options{}).Start(context.Background(), "", staticLoader{cat: cat})
	assert.Equal(t, 1, v.Categories[0].Count)
	assert.Equal(t, 30, v.AllCount)
}

func TestStart_LoadFailedThenRetry(t *testing.T) {
	ctx := context.Background()
	c := New(Options{})
	boom := errors.New("boom")

	v := c.Start(ctx, "q=git", staticLoader{err: boom})
	assert.Equal(t, StatusFailed, v.Status)
	assert.ErrorIs(t, v.Err, boom)
	assert.Empty(t, v.Page.Skills)

	v = c.Handle(ctx, RetryRequested{})
	assert.Equal(t, StatusLoading, v.Status)
	assert.NoError(t, v.Err)

	v = c.Handle(ctx, LoadCatalog(ctx, staticLoader{cat: sampleCatalog(5)}))
	assert.Equal(t, StatusReady, v.Status)
	assert.Equal(t, "git", v.State.Query)
}

func TestCategorySelected_ResetsPageAndPushes(t *testing.T) {
	ctx := context.Background()
	hist := &recorder{}
	c := New(Options{History: hist})
	c.Start(ctx, "page=2", staticLoader{cat: sampleCatalog(30)})

	v := c.Handle(ctx, CategorySelected{Category: "Notes & PKM"})
	assert.Equal(t, 1, v.State.Page)
	assert.Equal(t, 10, v.Page.TotalSkills)
	assert.Equal(t, []string{"/?category=Notes+%26+PKM"}, hist.urls)

	c.Handle(ctx, CategorySelected{Category: "all"})
	assert.Equal(t, "/", hist.urls[1])
}

func TestSearchChanged(t *testing.T) {
	ctx := context.Background()
	hist := &recorder{}
	c := New(Options{History: hist})
	c.Start(ctx, "page=2", staticLoader{cat: sampleCatalog(30)})

	v := c.Handle(ctx, SearchChanged{Query: "SKILL 0"})
	assert.Equal(t, 1, v.State.Page)
	assert.Equal(t, 10, v.Page.TotalSkills)
	assert.Equal(t, "/?q=SKILL+0", hist.urls[0])
}

func TestEmptyState(t *testing.T) {
	c := New(Options{})
	v := c.Start(context.Background(), "category=Nonexistent", staticLoader{cat: sampleCatalog(30)})

	assert.Equal(t, StatusReady, v.Status)
	assert.True(t, v.Empty)
	assert.Equal(t, 0, v.Page.TotalPages)
	assert.False(t, v.Page.HasNext())
}

func TestPageChanged_IgnoredOutsideRange(t *testing.T) {
	ctx := context.Background()
	hist := &recorder{}
	c := New(Options{History: hist})
	c.Start(ctx, "", staticLoader{cat: sampleCatalog(30)})

	v := c.Handle(ctx, PageChanged{Page: 0})
	assert.Equal(t, 1, v.State.Page)
	v = c.Handle(ctx, PageChanged{Page: 3})
	assert.Equal(t, 1, v.State.Page)
	assert.Empty(t, hist.urls)

	v = c.Handle(ctx, PageChanged{Page: 2})
	assert.Equal(t, 2, v.State.Page)
	assert.Len(t, v.Page.Skills, 6)
	assert.Equal(t, []string{"/?page=2"}, hist.urls)
}

func TestPageChanged_IgnoredBeforeLoad(t *testing.T) {
	c := New(Options{})
	c.Init("")
	v := c.Handle(context.Background(), PageChanged{Page: 1})
	assert.Equal(t, StatusLoading, v.Status)
	assert.Equal(t, 1, v.State.Page)
}

func TestHref(t *testing.T) {
	ctx := context.Background()
	c := New(Options{})
	c.Start(ctx, "q=skill", staticLoader{cat: sampleCatalog(30)})

	href, ok := c.Href(PageChanged{Page: 2})
	assert.True(t, ok)
	assert.Equal(t, "/?page=2&q=skill", href)

	_, ok = c.Href(PageChanged{Page: 0})
	assert.False(t, ok)
	_, ok = c.Href(PageChanged{Page: 3})
	assert.False(t, ok)

	href, ok = c.Href(CategorySelected{Category: "Git & GitHub"})
	assert.True(t, ok)
	assert.Equal(t, "/?category=Git+%26+GitHub&q=skill", href)

	assert.Equal(t, 1, c.State().Page, "Href does not apply the event")

	_, ok = c.Href(CatalogLoaded{})
	assert.False(t, ok)
}

func TestInputSearch_DeliversLastInput(t *testing.T) {
	c := New(Options{Debounce: 10 * time.Millisecond})
	events := make(chan Event, 4)
	for _, q := range []string{"s", "sk", "ski"} {
		c.InputSearch(q, func(ev Event) { events <- ev })
	}

	select {
	case ev := <-events:
		assert.Equal(t, SearchChanged{Query: "ski"}, ev)
	case <-time.After(time.Second):
		require.Fail(t, "no event delivered")
	}
	select {
	case ev := <-events:
		assert.Failf(t, "unexpected event", "%v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
