package api

import (
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/content-comb/app/content"
	"github.com/lysyi3m/content-comb/app/tasks"
	"github.com/lysyi3m/content-comb/app/webhook"
)

const maxRequestBody = 10 * 1024 * 1024

func NewHandler(configCache *webhook.ConfigCache, repos tasks.Repositories, parsers *tasks.Parsers,
	renderer RendererInterface, calendarCache CalendarCacheInterface, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		configCache: configCache,
		repos:       repos,
		parsers:     parsers,
		generator:   content.NewGenerator(),
		renderer:    renderer,
		cache:       calendarCache,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetCalendar(c *gin.Context) {
	clientID := c.Param("client")
	if clientID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	// Only the full calendar is cached
	cacheable := h.cache != nil && c.Query("limit") == ""

	if cacheable {
		cached, err := h.cache.GetCalendar(c.Request.Context(), clientID)
		if err != nil {
			slog.Warn("Calendar cache read failed", "client", clientID, "error", err)
		}
		if cached != nil {
			writeCalendar(c, clientID, cached.Content, cached.Rows, "HIT")
			return
		}
	}

	rows, err := h.repos.Rows.GetRows(clientID, limitParam(c, maxCalendarRows))
	if err != nil {
		slog.Error("Database error", "operation", "get_rows", "client", clientID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if len(rows) == 0 {
		c.Status(http.StatusNotFound)
		return
	}

	rss, err := h.generator.Run(content.Calendar{ClientID: clientID}, rows)
	if err != nil {
		slog.Error("RSS generation error", "client", clientID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	cacheStatus := ""
	if cacheable {
		cacheStatus = "MISS"
		if err := h.cache.SetCalendar(c.Request.Context(), clientID, rss, len(rows)); err != nil {
			slog.Warn("Calendar cache write failed", "client", clientID, "error", err)
		}
	}

	writeCalendar(c, clientID, rss, len(rows), cacheStatus)
}

func writeCalendar(c *gin.Context, clientID, rss string, rows int, cacheStatus string) {
	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Calendar-Rows", strconv.Itoa(rows))
	c.Header("X-Calendar-Client", clientID)
	if cacheStatus != "" {
		c.Header("X-Cache", cacheStatus)
	}

	c.String(http.StatusOK, rss)
}

func (h *Handler) invalidateCalendar(c *gin.Context, clientID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateCalendar(c.Request.Context(), clientID); err != nil {
		slog.Warn("Calendar cache invalidation failed", "client", clientID, "error", err)
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	if h.cache != nil {
		health["cache"] = h.cache.Health(c.Request.Context())
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"loaded_configurations": h.configCache.GetConfigCount(),
	}

	if workflowCount, err := h.repos.Workflows.GetWorkflowCount(); err == nil {
		stats["workflows"] = workflowCount
	}

	if rowCount, err := h.repos.Rows.GetRowCount(""); err == nil {
		stats["rows"] = rowCount
	}

	if executionStats, err := h.repos.Executions.GetExecutionStats(); err == nil {
		stats["executions"] = executionStats
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIParseTable(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	rows := h.parsers.TableParser.Run(string(body))

	c.JSON(http.StatusOK, gin.H{
		"rows":  rows,
		"total": len(rows),
	})
}

func (h *Handler) APIParsePayload(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	items := h.parsers.Normalizer.Run(body)

	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"total":    len(items),
		"strategy": h.parsers.Normalizer.Strategy(body),
	})
}

func (h *Handler) APIParseOutline(c *gin.Context) {
	var req outlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	outline := h.parsers.Outline.Run(req.Content, req.Title)

	c.JSON(http.StatusOK, gin.H{
		"outline": outline,
		"total":   len(outline),
	})
}

func (h *Handler) APIRender(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	html, err := h.renderer.Run(req.Markdown)
	if err != nil {
		slog.Error("Markdown render error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render markdown"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"html": html})
}

func (h *Handler) APIListWorkflows(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	workflows := make([]map[string]interface{}, 0, len(configs))

	for _, name := range names {
		config := configs[name]
		info := map[string]interface{}{
			"name":    config.Name,
			"kind":    config.Kind,
			"url":     config.URL,
			"enabled": config.Settings.Enabled,
			"timeout": config.TimeoutDuration().String(),
			"filters": len(config.Filters),
		}

		if config.Kind == webhook.KindFeed {
			info["client_id"] = config.ClientID
			info["max_items"] = config.Settings.MaxItems
			info["refresh_interval"] = config.RefreshDuration().String()
		}

		if workflow, err := h.repos.Workflows.GetWorkflow(config.Name); err == nil && workflow != nil {
			info["last_run_at"] = workflow.LastRunAt
			info["next_run_at"] = workflow.NextRunAt
			info["updated_at"] = workflow.UpdatedAt
		}

		workflows = append(workflows, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"workflows": workflows,
		"total":     len(workflows),
	})
}

func (h *Handler) APIRunWorkflow(c *gin.Context) {
	name := c.Param("name")

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow configuration not found"})
		return
	}

	if !config.Settings.Enabled {
		c.JSON(http.StatusConflict, gin.H{"error": "Workflow is disabled"})
		return
	}

	var req runWorkflowRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	if req.ClientID == "" && config.Kind != webhook.KindFeed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id is required"})
		return
	}

	execution, err := h.scheduler.RunWorkflow(config, req.ClientID, req.Params)
	if err != nil {
		slog.Error("Error starting workflow", "workflow", name, "client", req.ClientID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to start workflow",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":   true,
		"message":   "Workflow execution queued",
		"execution": newExecutionResponse(execution),
	})
}

func (h *Handler) APIGetExecution(c *gin.Context) {
	id := c.Param("id")

	execution, err := h.repos.Executions.GetExecution(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_execution", "execution", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if execution == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Execution not found"})
		return
	}

	rows, err := h.repos.Rows.GetRowsByExecution(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_execution_rows", "execution", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"execution": newExecutionResponse(execution),
		"rows":      newRowResponses(rows),
	})
}

func (h *Handler) APIListExecutions(c *gin.Context) {
	clientID := c.Param("client")

	executions, err := h.repos.Executions.ListExecutions(clientID, limitParam(c, 50))
	if err != nil {
		slog.Error("Database error", "operation", "list_executions", "client", clientID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := make([]executionResponse, 0, len(executions))
	for i := range executions {
		result = append(result, newExecutionResponse(&executions[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"executions": result,
		"total":      len(result),
	})
}

func (h *Handler) APIListRows(c *gin.Context) {
	clientID := c.Param("client")

	rows, err := h.repos.Rows.GetRows(clientID, limitParam(c, maxCalendarRows))
	if err != nil {
		slog.Error("Database error", "operation", "get_rows", "client", clientID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":  newRowResponses(rows),
		"total": len(rows),
	})
}

func (h *Handler) APIAddRows(c *gin.Context) {
	clientID := c.Param("client")

	var req addRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	inserted, err := h.repos.Rows.InsertRows(clientID, "", tasks.RecordRows(req.Rows))
	if err != nil {
		slog.Error("Database error", "operation", "insert_rows", "client", clientID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	h.invalidateCalendar(c, clientID)

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"inserted": inserted,
	})
}

func (h *Handler) APIDeleteRow(c *gin.Context) {
	clientID := c.Param("client")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid row id"})
		return
	}

	deleted, err := h.repos.Rows.DeleteRow(clientID, id)
	if err != nil {
		slog.Error("Database error", "operation", "delete_row", "client", clientID, "row", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Row not found"})
		return
	}

	h.invalidateCalendar(c, clientID)

	c.Status(http.StatusNoContent)
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body", "details": err.Error()})
		return nil, false
	}
	return body, true
}

func limitParam(c *gin.Context, max int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > max {
		return max
	}
	return limit
}
