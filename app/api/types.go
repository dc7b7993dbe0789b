package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lysyi3m/content-comb/app/cache"
	"github.com/lysyi3m/content-comb/app/content"
	"github.com/lysyi3m/content-comb/app/database"
	"github.com/lysyi3m/content-comb/app/tasks"
	"github.com/lysyi3m/content-comb/app/webhook"
)

type GeneratorInterface interface {
	Run(calendar content.Calendar, rows []database.ContentRow) (string, error)
}

type RendererInterface interface {
	Run(markdown string) (string, error)
}

// CalendarCacheInterface stores rendered calendar feeds. A nil cache
// disables caching.
type CalendarCacheInterface interface {
	GetCalendar(ctx context.Context, clientID string) (*cache.Calendar, error)
	SetCalendar(ctx context.Context, clientID, content string, rows int) error
	InvalidateCalendar(ctx context.Context, clientID string) error
	Health(ctx context.Context) map[string]interface{}
}

var (
	_ GeneratorInterface     = (*content.Generator)(nil)
	_ RendererInterface      = (*content.Renderer)(nil)
	_ CalendarCacheInterface = (*cache.Cache)(nil)
)

type Handler struct {
	configCache *webhook.ConfigCache
	repos       tasks.Repositories
	parsers     *tasks.Parsers
	generator   GeneratorInterface
	renderer    RendererInterface
	cache       CalendarCacheInterface
	scheduler   tasks.TaskSchedulerInterface
}

// Calendars list at most this many rows unless a smaller limit is asked for.
const maxCalendarRows = 500

type outlineRequest struct {
	Content string `json:"content"`
	Title   string `json:"title"`
}

type renderRequest struct {
	Markdown string `json:"markdown"`
}

type runWorkflowRequest struct {
	ClientID string            `json:"client_id"`
	Params   map[string]string `json:"params"`
}

type addRowsRequest struct {
	Rows []content.Record `json:"rows" binding:"required"`
}

type executionResponse struct {
	ID         string            `json:"id"`
	Workflow   string            `json:"workflow"`
	ClientID   string            `json:"client_id"`
	Status     string            `json:"status"`
	Params     map[string]string `json:"params"`
	Result     json.RawMessage   `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
	Attempts   int               `json:"attempts"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

type rowResponse struct {
	ID          int64           `json:"id"`
	ClientID    string          `json:"client_id"`
	ExecutionID string          `json:"execution_id,omitempty"`
	Date        string          `json:"date"`
	Channel     string          `json:"channel"`
	Type        string          `json:"type"`
	Format      string          `json:"format"`
	Title       string          `json:"title"`
	Copy        string          `json:"copy"`
	CTA         string          `json:"cta"`
	Hashtags    string          `json:"hashtags"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newExecutionResponse(e *database.Execution) executionResponse {
	resp := executionResponse{
		ID:         e.ID,
		Workflow:   e.Workflow,
		ClientID:   e.ClientID,
		Status:     e.Status,
		Params:     e.Params,
		Error:      e.Error,
		Attempts:   e.Attempts,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
		FinishedAt: e.FinishedAt,
	}
	if len(e.Result) > 0 && string(e.Result) != "null" {
		resp.Result = e.Result
	}
	if resp.Params == nil {
		resp.Params = map[string]string{}
	}
	return resp
}

func newRowResponses(rows []database.ContentRow) []rowResponse {
	result := make([]rowResponse, 0, len(rows))
	for _, row := range rows {
		r := rowResponse{
			ID:          row.ID,
			ClientID:    row.ClientID,
			ExecutionID: row.ExecutionID,
			Date:        row.Date,
			Channel:     row.Channel,
			Type:        row.Type,
			Format:      row.Format,
			Title:       row.Title,
			Copy:        row.Copy,
			CTA:         row.CTA,
			Hashtags:    row.Hashtags,
			CreatedAt:   row.CreatedAt,
		}
		if json.Valid([]byte(row.Payload)) {
			r.Payload = json.RawMessage(row.Payload)
		}
		result = append(result, r)
	}
	return result
}
