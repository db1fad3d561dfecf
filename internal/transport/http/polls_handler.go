package http

import (
	"bytes"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "pollscope/internal/errors"
	"pollscope/internal/exporter"
	"pollscope/internal/middleware"
	"pollscope/internal/services"
	api "pollscope/pkg/contracts/api/v1"
)

// PollsHandler serves the poll views and downloads
type PollsHandler struct {
	service      PollServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	now          func() time.Time
}

// StatusResponse is the refresh status with a human readable age
type StatusResponse struct {
	services.RefreshStatus
	UpdatedAgo string `json:"updated_ago,omitempty"`
}

// NewPollsHandler creates a new polls handler
func NewPollsHandler(service PollServiceInterface, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PollsHandler {
	return &PollsHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "polls_handler")),
		errorHandler: errorHandler,
		now:          time.Now,
	}
}

// Routes returns the poll routes
func (h *PollsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.GetStatus)
	r.Post("/refresh", h.Refresh)
	r.Get("/sources", h.GetSources)
	r.Get("/candidates", h.GetCandidates)
	r.Get("/comparison", h.GetComparison)

	r.Route("/sources/{source}", func(r chi.Router) {
		r.Get("/ranking", h.GetRanking)
		r.Get("/evolution", h.GetEvolution)
	})

	r.Get("/export/{view}.{format}", h.Export)

	return r
}

func (h *PollsHandler) status() StatusResponse {
	st := h.service.Status()
	resp := StatusResponse{RefreshStatus: st}
	if st.LastUpdated != nil {
		resp.UpdatedAgo = humanize.RelTime(*st.LastUpdated, h.now(), "ago", "from now")
	}
	return resp
}

// GetStatus handles GET /api/polls/status
func (h *PollsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.status())
}

// Refresh handles POST /api/polls/refresh
func (h *PollsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.service.Refresh(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "Manual refresh completed",
		slog.String("snapshot_id", snap.ID),
		slog.Int("rows_accepted", snap.RowsAccepted))
	render.JSON(w, r, h.status())
}

// GetSources handles GET /api/polls/sources
func (h *PollsHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Sources()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetCandidates handles GET /api/polls/candidates
func (h *PollsHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Candidates()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetRanking handles GET /api/polls/sources/{source}/ranking
func (h *PollsHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Ranking(chi.URLParam(r, "source"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetEvolution handles GET /api/polls/sources/{source}/evolution
func (h *PollsHandler) GetEvolution(w http.ResponseWriter, r *http.Request) {
	q := api.EvolutionQuery{
		Source:     chi.URLParam(r, "source"),
		Candidates: api.CandidateList(r.URL.Query()["candidates"]),
	}
	if err := h.validator.ValidateStruct(&q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Evolution(q.Source, q.Candidates)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetComparison handles GET /api/polls/comparison
func (h *PollsHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	q := api.ComparisonQuery{Candidates: api.CandidateList(r.URL.Query()["candidates"])}
	if err := h.validator.ValidateStruct(&q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Comparison(q.Candidates)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// Export handles GET /api/polls/export/{view}.{format}
func (h *PollsHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := api.ExportQuery{
		View:       chi.URLParam(r, "view"),
		Format:     chi.URLParam(r, "format"),
		Source:     r.URL.Query().Get("source"),
		Candidates: api.CandidateList(r.URL.Query()["candidates"]),
	}
	if err := h.validator.ValidateStruct(&q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := exporter.ParseFormat(q.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	var (
		table    *exporter.Table
		filename string
	)
	switch q.View {
	case "ranking":
		view, err := h.service.Ranking(q.Source)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		table = exporter.RankingTable(view.Source, view.Entries)
		filename = "ranking-" + view.Source
	default:
		view, err := h.service.Comparison(q.Candidates)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		names := make([]string, len(view.Sources))
		for i, s := range view.Sources {
			names[i] = s.Name
		}
		table = exporter.ComparisonTable(names, view.Rows)
		filename = "comparison"
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, format, table); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": filename + format.Extension(),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(ctx, "Export write failed", slog.String("error", err.Error()))
		return
	}

	h.logger.DebugContext(ctx, "Export served",
		slog.String("view", q.View),
		slog.String("format", string(format)),
		slog.Int("rows", len(table.Rows)))
}
