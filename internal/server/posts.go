package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/edvm/autoblogger/internal/agent/core"
	"github.com/edvm/autoblogger/internal/archive"
	"github.com/edvm/autoblogger/internal/helpers"
	"github.com/edvm/autoblogger/internal/store"
	"github.com/edvm/autoblogger/internal/usage"
	"github.com/edvm/autoblogger/internal/workflow"
	"github.com/edvm/autoblogger/tools/search/models"
)

// PostsHandler serves content generation and retrieval. Usage and Archive are
// optional collaborators; nil disables the feature without failing requests.
type PostsHandler struct {
	Store   *store.Store
	Service *core.Service
	Usage   *usage.Recorder
	Archive *archive.Archive
	logger  *log.Logger
}

func (h *PostsHandler) Register(g *echo.Group) {
	h.logger = log.New(log.Writer(), "[POSTS] ", log.LstdFlags)
	g.POST("", h.generate)
	g.GET("", h.list)
	g.GET("/search", h.search)
	g.GET("/usage", h.usageTotals)
	g.GET("/:id", h.get)
	g.GET("/:id/download", h.download)
}

func userID(c echo.Context) (int64, error) {
	raw, _ := c.Get("user_id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid subject")
	}
	return id, nil
}

func formatUserID(id int64) string { return strconv.FormatInt(id, 10) }

// buildSearchConfig overlays the request's optional search parameters on the
// configured defaults.
func buildSearchConfig(defaults models.Config, req GenerateRequest) models.Config {
	cfg := defaults
	if req.SearchDepth != nil {
		cfg.Depth = *req.SearchDepth
	}
	if req.SearchTopic != nil {
		cfg.Topic = *req.SearchTopic
	}
	if req.TimeRange != nil {
		cfg.TimeRange = *req.TimeRange
	}
	if req.Days != nil {
		cfg.Days = *req.Days
	}
	if req.MaxResults != nil {
		cfg.MaxResults = *req.MaxResults
	}
	if req.IncludeAnswer != nil {
		cfg.IncludeAnswer = *req.IncludeAnswer
	}
	if req.IncludeRawContent != nil {
		cfg.IncludeRaw = *req.IncludeRawContent
	}
	if req.IncludeImages != nil {
		cfg.IncludeImages = *req.IncludeImages
	}
	if req.IncludeDomains != nil {
		cfg.IncludeDomains = req.IncludeDomains
	}
	if req.ExcludeDomains != nil {
		cfg.ExcludeDomains = req.ExcludeDomains
	}
	if req.TimeoutSeconds != nil && *req.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(*req.TimeoutSeconds) * time.Second
	}
	cfg.Normalize()
	return cfg
}

func (h *PostsHandler) generate(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Topic) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic is required")
	}

	opts := buildSearchConfig(h.Service.SearchDefaults(), req)
	state, err := h.Service.Generate(c.Request().Context(), req.Topic, opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	rec := state.Record()

	if err := h.Store.SaveRun(c.Request().Context(), uid, rec); err != nil {
		h.logger.Printf("persisting run %s: %v", rec.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "run finished but could not be saved")
	}
	if h.Usage != nil {
		if err := h.Usage.Record(c.Request().Context(), uid, rec.ID, rec.Status); err != nil {
			h.logger.Printf("recording usage for run %s: %v", rec.ID, err)
		}
	}
	if h.Archive != nil && rec.FinalContent != "" {
		if err := h.Archive.Index(rec.ID, archive.Article{
			Topic:     rec.CleanTopic,
			Content:   rec.FinalContent,
			CreatedAt: time.Now(),
		}); err != nil {
			h.logger.Printf("indexing run %s: %v", rec.ID, err)
		}
	}

	code := http.StatusCreated
	if rec.Status == workflow.StatusFailed {
		code = http.StatusUnprocessableEntity
	}
	return c.JSON(code, rec)
}

func (h *PostsHandler) list(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	runs, err := h.Store.ListRuns(c.Request().Context(), uid, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]PostResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, PostResponse{
			ID:        r.ID,
			Topic:     r.Topic,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PostsHandler) get(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	run, err := h.Store.GetRun(c.Request().Context(), uid, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, PostDetailResponse{
		ID:     run.ID,
		Topic:  run.Topic,
		Status: run.Status,
		Record: run.Record,
	})
}

func (h *PostsHandler) download(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	run, err := h.Store.GetRun(c.Request().Context(), uid, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var rec workflow.Record
	if err := json.Unmarshal(run.Record, &rec); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rec.FinalContent == "" {
		return echo.NewHTTPError(http.StatusConflict, "run produced no article")
	}

	filename := helpers.DownloadFilename(rec.CleanTopic, run.ID)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(rec.FinalContent))
}

func (h *PostsHandler) search(c echo.Context) error {
	if h.Archive == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "article archive disabled")
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	hits, err := h.Archive.Search(q, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, hits)
}

func (h *PostsHandler) usageTotals(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	if h.Usage == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "usage tracking disabled")
	}
	totals, err := h.Usage.Totals(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, UsageResponse{
		Total:     totals.Total,
		Completed: totals.Completed,
		Failed:    totals.Failed,
	})
}
