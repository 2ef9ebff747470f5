package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/skillcat/internal/catalog"
)

type fakeStore struct {
	cat     *catalog.Catalog
	err     error
	cleared int
}

func (f *fakeStore) Load(context.Context) (*catalog.Catalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cat, nil
}

func (f *fakeStore) ClearCache(context.Context) error {
	f.cleared++
	return nil
}

// fixture has 20 Git skills followed by 10 Gaming skills.
func fixture() *catalog.Catalog {
	c := &catalog.Catalog{Version: catalog.SchemaVersion, LastUpdated: "2026-01-02"}
	for i := 0; i < 30; i++ {
		cat := "Git & GitHub"
		if i >= 20 {
			cat = "Gaming"
		}
		name := fmt.Sprintf("skill-%02d", i)
		c.Skills = append(c.Skills, catalog.Skill{
			ID:             name,
			Name:           name,
			Author:         "octo",
			Description:    "Description for " + name,
			GithubURL:      "https://github.com/openclaw/skills/tree/main/skills/octo/" + name,
			Category:       cat,
			InstallCommand: "npx clawhub@latest install " + name,
		})
	}
	c.Skills[0].Description = "Use **bold** tools"
	c.Skills[0].DescriptionCn = "使用**粗体**工具"
	c.Categories = []catalog.Category{
		{Name: "Git & GitHub", NameCn: "Git与GitHub", Count: 20, Icon: "fa-code-branch"},
		{Name: "Gaming", NameCn: "游戏", Count: 10, Icon: "fa-gamepad"},
	}
	c.TotalSkills = len(c.Skills)
	return c
}

func newTestServer(t *testing.T, st CatalogStore) http.Handler {
	t.Helper()
	srv, err := NewServer(st, Options{PerPage: 24})
	require.NoError(t, err)
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, target string, htmx bool) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return rec, doc
}

func TestIndex_FullPage(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})
	rec, doc := get(t, h, "/", false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30", doc.Find("#total-skills").Text())

	items := doc.Find("#sidebar a.category")
	require.Equal(t, 3, items.Length())
	first := items.First()
	assert.Equal(t, "所有 Skills", first.Find(".label").Text())
	assert.Equal(t, "30", first.Find(".count").Text())
	assert.True(t, first.HasClass("active"))
	assert.Equal(t, "游戏", items.Eq(2).Find(".label").Text())

	assert.Equal(t, 24, doc.Find(".card").Length())
	assert.Equal(t, "第 1 页，共 2 页", doc.Find(".page-info").Text())
	assert.Equal(t, 1, doc.Find("span.prev.disabled").Length())
	next, ok := doc.Find("a.next").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "/?page=2", next)
}

func TestIndex_ClampsPage(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})
	_, doc := get(t, h, "/?page=3", false)

	assert.Equal(t, "第 2 页，共 2 页", doc.Find(".page-info").Text())
	assert.Equal(t, 6, doc.Find(".card").Length())
	prev, _ := doc.Find("a.prev").Attr("href")
	assert.Equal(t, "/", prev)
	assert.Equal(t, 1, doc.Find("span.next.disabled").Length())
}

func TestIndex_HTMXFragment(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})
	rec, doc := get(t, h, "/?category=Gaming", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/?category=Gaming", rec.Header().Get("HX-Push-Url"))
	assert.NotContains(t, rec.Body.String(), "<html")
	assert.Equal(t, 10, doc.Find(".card").Length())
	assert.Zero(t, doc.Find(".pagination").Length(), "a single page has no pagination")

	nav := doc.Find("nav#sidebar[hx-swap-oob]")
	require.Equal(t, 1, nav.Length())
	active, _ := nav.Find("a.active").Attr("data-category")
	assert.Equal(t, "Gaming", active)
	val, _ := nav.Find("#category-input").Attr("value")
	assert.Equal(t, "Gaming", val)
}

func TestIndex_HTMXPushesClampedPage(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})

	rec, doc := get(t, h, "/?page=99", true)
	assert.Equal(t, "/?page=2", rec.Header().Get("HX-Push-Url"))
	assert.Equal(t, "第 2 页，共 2 页", doc.Find(".page-info").Text())

	rec, _ = get(t, h, "/?category=Gaming&page=5", true)
	assert.Equal(t, "/?category=Gaming", rec.Header().Get("HX-Push-Url"))
}

func TestIndex_AllCountSkipsLatest(t *testing.T) {
	c := fixture()
	c.Skills[3].IsNew = true
	c.Skills[24].IsNew = true
	c.Categories = append([]catalog.Category{{Name: catalog.Latest, NameCn: "最新", Count: 2, Icon: "fa-star"}}, c.Categories...)
	h := newTestServer(t, &fakeStore{cat: c})

	_, doc := get(t, h, "/", false)
	items := doc.Find("#sidebar a.category")
	require.Equal(t, 4, items.Length())
	assert.Equal(t, "30", items.First().Find(".count").Text())
	assert.Equal(t, "2", items.Eq(1).Find(".count").Text())

	rec, _ := get(t, h, "/api/categories", false)
	assert.Equal(t, 30, decode[CategoriesResponse](t, rec).AllCount)
}

func TestSkill_IDsNeedingEscapes(t *testing.T) {
	const id = "octo/tool?v=2"
	c := fixture()
	c.Skills[1].ID = id
	h := newTestServer(t, &fakeStore{cat: c})

	_, doc := get(t, h, "/", false)
	cardSel := doc.Find(`.card[data-id="octo/tool?v=2"]`)
	require.Equal(t, 1, cardSel.Length())
	href, _ := cardSel.Attr("href")
	assert.Equal(t, "/skills/octo%2Ftool%3Fv=2", href)
	hxGet, _ := cardSel.Attr("hx-get")
	assert.Equal(t, href, hxGet)

	rec, doc := get(t, h, href, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "skill-01", doc.Find("#skill-modal h2.name").Text())

	rec, _ = get(t, h, "/api"+href, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode[catalog.Skill](t, rec).ID)

	rec, _ = get(t, h, "/skills/skill-02", true)
	assert.Equal(t, http.StatusOK, rec.Code, "plain ids still resolve")
}

func TestIndex_SearchAndEmptyState(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})

	_, doc := get(t, h, "/?q=SKILL-2", false)
	assert.Equal(t, 10, doc.Find(".card").Length())

	_, doc = get(t, h, "/?q=nothing-matches-this", false)
	assert.Contains(t, doc.Find(".empty-state").Text(), "未找到相关 Skill")
	assert.Zero(t, doc.Find(".card").Length())
	assert.Zero(t, doc.Find(".pagination").Length())

	_, doc = get(t, h, "/?category=Nonexistent", false)
	assert.Equal(t, 1, doc.Find(".empty-state").Length())
}

func TestIndex_CardPrefersLocalizedDescription(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})
	_, doc := get(t, h, "/", false)
	assert.Equal(t, "使用**粗体**工具", doc.Find(`.card[data-id="skill-00"] .description`).Text())
}

func TestIndex_LoadFailure(t *testing.T) {
	h := newTestServer(t, &fakeStore{err: errors.New("boom")})
	rec, doc := get(t, h, "/?q=x", false)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, doc.Find(".error-state").Text(), "加载失败，请重试")
	retry, _ := doc.Find("a.retry").Attr("href")
	assert.Equal(t, "/?q=x", retry)
	assert.Zero(t, doc.Find("#total-skills").Length())
}

func TestSkill_ModalFragment(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})
	rec, doc := get(t, h, "/skills/skill-00", true)

	require.Equal(t, http.StatusOK, rec.Code)
	modal := doc.Find("#skill-modal")
	require.Equal(t, 1, modal.Length())
	assert.Equal(t, "skill-00", modal.Find("h2.name").Text())
	assert.Equal(t, 1, modal.Find(".description strong").Length(), "markdown is rendered")
	assert.Equal(t, 1, modal.Find(".original strong").Length())
	assert.Equal(t, "npx clawhub@latest install skill-00", modal.Find("pre.install").Text())
	href, _ := modal.Find("a.github").Attr("href")
	assert.Contains(t, href, "/skills/octo/skill-00")
	assert.Contains(t, modal.Find(".badge").Text(), "Git与GitHub")
}

func TestSkill_FullPageAndNotFound(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})

	rec, doc := get(t, h, "/skills/skill-25", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, doc.Find("#modal #skill-modal").Length())
	assert.Equal(t, 3, doc.Find("#sidebar a.category").Length())

	rec, _ = get(t, h, "/skills/missing", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAPI_Skills(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})

	rec, _ := get(t, h, "/api/skills?category=Gaming&per_page=5&page=2", false)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SkillsResponse](t, rec)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 10, resp.TotalSkills)
	require.Len(t, resp.Skills, 5)
	assert.Equal(t, "skill-25", resp.Skills[0].ID)

	rec, _ = get(t, h, "/api/skills?category=Gaming&sort=name&order=desc", false)
	resp = decode[SkillsResponse](t, rec)
	assert.Equal(t, "skill-29", resp.Skills[0].ID)

	rec, _ = get(t, h, "/api/skills?q=nothing-here", false)
	resp = decode[SkillsResponse](t, rec)
	assert.NotNil(t, resp.Skills)
	assert.Empty(t, resp.Skills)
	assert.Equal(t, 0, resp.TotalPages)

	rec, _ = get(t, h, "/api/skills?per_page=0", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_CategoriesAndSkill(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})

	rec, _ := get(t, h, "/api/categories", false)
	cats := decode[CategoriesResponse](t, rec)
	assert.Equal(t, 30, cats.AllCount)
	assert.Len(t, cats.Categories, 2)

	rec, _ = get(t, h, "/api/skills/skill-03", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "skill-03", decode[catalog.Skill](t, rec).Name)

	rec, _ = get(t, h, "/api/skills/missing", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = get(t, h, "/api/catalog", false)
	assert.Equal(t, 30, decode[catalog.Catalog](t, rec).TotalSkills)
}

func TestAPI_LoadFailureAndCacheClear(t *testing.T) {
	st := &fakeStore{err: errors.New("offline")}
	h := newTestServer(t, st)

	rec, _ := get(t, h, "/api/catalog", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "catalog unavailable", decode[map[string]any](t, rec)["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, st.cleared)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, &fakeStore{cat: fixture()})
	rec, _ := get(t, h, "/healthz", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestNewServer_RequiresStore(t *testing.T) {
	_, err := NewServer(nil, Options{})
	assert.Error(t, err)
}
