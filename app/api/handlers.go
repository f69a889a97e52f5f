package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Volkan-eles/yatirimx3-sub001/app/cfg"
	"github.com/Volkan-eles/yatirimx3-sub001/app/database"
	"github.com/Volkan-eles/yatirimx3-sub001/app/dataset"
	"github.com/Volkan-eles/yatirimx3-sub001/app/tasks"
)

type Handler struct {
	store     *dataset.Store
	runs      database.RunRepository
	pages     database.PageRepository
	scheduler tasks.TaskSchedulerInterface
	pipeline  func() tasks.TaskInterface
}

func NewHandler(store *dataset.Store, runs database.RunRepository,
	pages database.PageRepository, scheduler tasks.TaskSchedulerInterface,
	pipeline func() tasks.TaskInterface) *Handler {
	return &Handler{
		store:     store,
		runs:      runs,
		pages:     pages,
		scheduler: scheduler,
		pipeline:  pipeline,
	}
}

func (h *Handler) GetSitemap(c *gin.Context) {
	path := h.store.Path("sitemap.xml")
	if _, err := os.Stat(path); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.File(path)
}

// GetData serves one published JSON artifact. Only flat .json names are
// accepted, so the data directory's internals stay unreachable.
func (h *Handler) GetData(c *gin.Context) {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".json") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dataset name"})
		return
	}

	path := h.store.Path(name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dataset not found"})
		return
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.File(path)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	if runCount, err := h.runs.GetRunCount(); err == nil {
		health["runs"] = runCount
	}
	if pageCount, err := h.pages.GetPageCount(); err == nil {
		health["tracked_pages"] = pageCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 20
	}

	runs, err := h.runs.GetRecentRuns(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entries := make([]map[string]interface{}, 0, len(runs))
	for _, run := range runs {
		entries = append(entries, map[string]interface{}{
			"task":        run.Task,
			"status":      run.Status,
			"started_at":  run.StartedAt.Format(time.RFC3339),
			"finished_at": run.FinishedAt.Format(time.RFC3339),
			"duration":    run.FinishedAt.Sub(run.StartedAt).String(),
			"detail":      run.Detail,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"runs":  entries,
		"total": len(entries),
	})
}

// APIRefresh enqueues an out-of-schedule pipeline run.
func (h *Handler) APIRefresh(c *gin.Context) {
	task := h.pipeline()
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue pipeline run", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue pipeline run"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "queued",
		"task_id": task.GetID(),
	})
}
