package stats

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/el-tools/elstats/pkg/models/api"
	"github.com/el-tools/elstats/pkg/models/domain"
	"github.com/el-tools/elstats/pkg/services/stats"
	"github.com/rs/zerolog"
)

// Service is the pipeline surface the handler serves; satisfied by
// stats.Service.
type Service interface {
	EPELUsage(ctx context.Context, opts stats.EPELOptions) (*domain.Table, error)
	RockyVersions(ctx context.Context) (*domain.Table, error)
	ContainerPulls(ctx context.Context, shares bool) (*domain.Table, error)
}

type Handler struct {
	svc     Service
	distros []domain.DistroInfo
}

func NewHandler(svc Service, distros []domain.DistroInfo) *Handler {
	return &Handler{svc: svc, distros: distros}
}

// ListDistros serves the tracked universe with labels and colors.
func (h *Handler) ListDistros(w http.ResponseWriter, r *http.Request) {
	response := make([]api.Distro, 0, len(h.distros))
	for _, d := range h.distros {
		response = append(response, api.Distro{
			Name:  string(d.Name),
			Label: d.Label,
			Color: d.Color,
		})
	}
	writeJSON(w, r, response)
}

// GetEPELUsage serves the weekly hits table. Query parameters mirror the
// CLI filters: repo, os, arch, age, since, shares.
func (h *Handler) GetEPELUsage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	age, ok := domain.ParseAgeFilter(q.Get("age"))
	if !ok {
		http.Error(w, "unknown age bucket", http.StatusBadRequest)
		return
	}

	opts := stats.EPELOptions{
		RepoTag: q.Get("repo"),
		OSName:  q.Get("os"),
		Arch:    q.Get("arch"),
		Age:     age,
		Shares:  q.Get("shares") == "true",
	}
	if since := q.Get("since"); since != "" {
		parsed, err := time.Parse("2006-01-02", since)
		if err != nil {
			http.Error(w, "invalid since date", http.StatusBadRequest)
			return
		}
		opts.Since = parsed
	}

	t, err := h.svc.EPELUsage(r.Context(), opts)
	if err != nil {
		h.serveError(w, r, err, "failed to build epel usage table")
		return
	}
	writeJSON(w, r, toAPITable(t))
}

// GetRockyVersions serves the Rocky Linux per-version hits table.
func (h *Handler) GetRockyVersions(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.RockyVersions(r.Context())
	if err != nil {
		h.serveError(w, r, err, "failed to build versions table")
		return
	}
	writeJSON(w, r, toAPITable(t))
}

// GetContainerPulls serves the daily pull-delta table.
func (h *Handler) GetContainerPulls(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.ContainerPulls(r.Context(), r.URL.Query().Get("shares") == "true")
	if err != nil {
		h.serveError(w, r, err, "failed to build container pulls table")
		return
	}
	writeJSON(w, r, toAPITable(t))
}

func (h *Handler) serveError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logger := zerolog.Ctx(r.Context())
	logger.Error().Err(err).Msg(msg)

	var schemaErr *domain.SchemaError
	var parseErr *domain.ParseError
	if errors.As(err, &schemaErr) || errors.As(err, &parseErr) {
		http.Error(w, "upstream dataset format changed", http.StatusBadGateway)
		return
	}
	http.Error(w, "failed to build table", http.StatusInternalServerError)
}

func toAPITable(t *domain.Table) api.Table {
	index := t.Index()
	out := api.Table{Index: index}
	for _, col := range t.Columns() {
		values := make([]*float64, 0, len(index))
		for _, v := range t.Column(col) {
			if math.IsNaN(v) {
				values = append(values, nil)
				continue
			}
			v := v
			values = append(values, &v)
		}
		out.Series = append(out.Series, api.Series{Name: col, Values: values})
	}
	return out
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
