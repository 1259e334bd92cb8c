// Package dashboard serves the read-only candidate views: the filterable
// list, candidate detail, dashboard aggregates, and the xlsx export.
package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"candidate-insights/internal/candidates"
	"candidate-insights/internal/export"
	"candidate-insights/internal/query"
	"candidate-insights/internal/shared/server/respond"
	"candidate-insights/internal/shared/telemetry"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler wires HTTP handlers to the candidate store.
type Handler struct {
	Store *candidates.Store
	Now   func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(store *candidates.Store) *Handler {
	return &Handler{Store: store, Now: time.Now}
}

// RegisterRoutes attaches candidate and dashboard routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/candidates", h.listCandidates)
	rg.GET("/candidates/roles", h.listRoles)
	rg.GET("/candidates/export", h.exportCandidates)
	rg.GET("/candidates/:id", h.getCandidate)

	rg.GET("/dashboard", h.getDashboard)
	rg.GET("/dashboard/stats", h.getStats)
	rg.GET("/dashboard/groups", h.getGroups)
	rg.GET("/dashboard/scatter", h.getScatter)
}

func (h *Handler) listCandidates(c *gin.Context) {
	params, err := query.ParseListParams(rawListParams(c))
	if err != nil {
		respondValidation(c, err)
		return
	}

	filtered := query.FilterCandidates(h.Store.All(), params.Search, params.Role)
	respond.OK(c, gin.H{
		"items":  query.Page(filtered, params.Limit, params.Offset),
		"total":  len(filtered),
		"limit":  params.Limit,
		"offset": params.Offset,
		"search": params.Search,
		"role":   params.Role,
	})
}

func (h *Handler) listRoles(c *gin.Context) {
	respond.OK(c, gin.H{"roles": query.DistinctRoles(h.Store.All())})
}

func (h *Handler) getCandidate(c *gin.Context) {
	id, err := query.ParseCandidateID(c.Param("id"))
	if err != nil {
		respondValidation(c, err)
		return
	}
	candidate, err := h.Store.ByID(id)
	if err != nil {
		if errors.Is(err, candidates.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch candidate", nil)
		return
	}
	respond.OK(c, candidate)
}

func (h *Handler) exportCandidates(c *gin.Context) {
	params, err := query.ParseListParams(rawListParams(c))
	if err != nil {
		respondValidation(c, err)
		return
	}

	all := h.Store.All()
	filtered := query.FilterCandidates(all, params.Search, params.Role)
	now := h.now()

	var buf bytes.Buffer
	err = export.Write(&buf, export.Workbook{
		Candidates:  filtered,
		Summary:     query.SummaryStats(all),
		Roles:       query.GroupCountBy(all, query.ByJobRole),
		Education:   query.GroupCountBy(all, query.ByEducation),
		Search:      params.Search,
		Role:        params.Role,
		GeneratedAt: now,
	})
	if err != nil {
		telemetry.Error("export.failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build export", nil)
		return
	}

	filename := fmt.Sprintf("candidates-%s.xlsx", now.UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// getDashboard mirrors the dashboard view: stat cards, role bar chart,
// education pie, and the experience/score scatter. Stats always cover the
// whole pool.
func (h *Handler) getDashboard(c *gin.Context) {
	all := h.Store.All()
	respond.OK(c, gin.H{
		"stats":              query.SummaryStats(all),
		"roleDistribution":   query.GroupCountBy(all, query.ByJobRole),
		"educationBreakdown": query.GroupCountBy(all, query.ByEducation),
		"scatter":            query.ScatterPairs(all),
	})
}

func (h *Handler) getStats(c *gin.Context) {
	respond.OK(c, query.SummaryStats(h.Store.All()))
}

func (h *Handler) getGroups(c *gin.Context) {
	by := c.DefaultQuery("by", "jobRole")
	key, err := query.KeyByName(by)
	if err != nil {
		respondValidation(c, err)
		return
	}
	respond.OK(c, gin.H{
		"by":     by,
		"groups": query.GroupCountBy(h.Store.All(), key),
	})
}

func (h *Handler) getScatter(c *gin.Context) {
	respond.OK(c, gin.H{"points": query.ScatterPairs(h.Store.All())})
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func rawListParams(c *gin.Context) query.RawListParams {
	return query.RawListParams{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Limit:  c.Query("limit"),
		Offset: c.Query("offset"),
	}
}

func respondValidation(c *gin.Context, err error) {
	var vErr *query.ValidationError
	if errors.As(err, &vErr) {
		respond.Error(c, http.StatusBadRequest, "validation_error", vErr.Error(), []map[string]string{
			{"field": vErr.Field, "issue": vErr.Message},
		})
		return
	}
	respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request", nil)
}
