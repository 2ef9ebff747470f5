package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/logger"
	"github.com/kamusis/skillcat/internal/query"
	"github.com/kamusis/skillcat/internal/urlstate"
)

// SkillsResponse is the body of GET /api/skills.
type SkillsResponse struct {
	Skills      []catalog.Skill `json:"skills"`
	Page        int             `json:"page"`
	PerPage     int             `json:"perPage"`
	TotalPages  int             `json:"totalPages"`
	TotalSkills int             `json:"totalSkills"`
}

// CategoriesResponse is the body of GET /api/categories.
type CategoriesResponse struct {
	AllCount   int                `json:"allCount"`
	Categories []catalog.Category `json:"categories"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		logger.G(r.Context()).WithError(err).Error(message)
	}
	s.writeJSON(w, r, status, map[string]any{
		"error":  message,
		"status": status,
	})
}

// loadOrFail loads the catalog, answering 503 when it is unavailable.
func (s *Server) loadOrFail(w http.ResponseWriter, r *http.Request) (*catalog.Catalog, bool) {
	c, err := s.store.Load(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "catalog unavailable", err)
		return nil, false
	}
	return c, true
}

func (s *Server) handleAPICatalog(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadOrFail(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) handleAPICategories(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadOrFail(w, r)
	if !ok {
		return
	}
	resp := CategoriesResponse{Categories: c.Categories, AllCount: catalog.AllCount(c)}
	if resp.Categories == nil {
		resp.Categories = []catalog.Category{}
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

// handleAPISkills filters with the same parameters as the page URL, plus
// per_page, sort and order.
func (s *Server) handleAPISkills(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadOrFail(w, r)
	if !ok {
		return
	}
	params := r.URL.Query()
	st := urlstate.FromValues(params)

	perPage := s.opts.PerPage
	if v := params.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			s.writeError(w, r, http.StatusBadRequest, "per_page must be between 1 and 500", nil)
			return
		}
		perPage = n
	}

	skills := query.FilterSkills(c.Skills, query.Filter{Category: st.Category, Query: st.Query})
	if field := params.Get("sort"); field != "" {
		skills = query.Sort(skills, query.SortField(field), query.SortOrder(params.Get("order")))
	}
	page := query.Paginate(skills, st.Page, perPage)

	resp := SkillsResponse{
		Skills:      page.Skills,
		Page:        page.CurrentPage,
		PerPage:     page.PerPage,
		TotalPages:  page.TotalPages,
		TotalSkills: page.TotalSkills,
	}
	if resp.Skills == nil {
		resp.Skills = []catalog.Skill{}
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleAPISkill(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadOrFail(w, r)
	if !ok {
		return
	}
	id := skillID(r)
	sk, found := c.SkillByID(id)
	if !found {
		s.writeError(w, r, http.StatusNotFound, "skill not found: "+id, nil)
		return
	}
	s.writeJSON(w, r, http.StatusOK, sk)
}

func (s *Server) handleAPIClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearCache(r.Context()); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to clear cache", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
