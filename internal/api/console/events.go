package console

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-ingest/internal/humastar"
	"github.com/joeblew999/plat-ingest/internal/service"
	"github.com/joeblew999/plat-ingest/internal/templates"
	"github.com/joeblew999/plat-ingest/internal/ui"
)

// FeedSize is how many activity rows the live feed shows.
const FeedSize = 20

// ActivityHandler streams the activity feed shown under both forms.
type ActivityHandler struct {
	humastar.Handler
	activity *service.ActivityService
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(activity *service.ActivityService, renderer *templates.Renderer) *ActivityHandler {
	return &ActivityHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		activity: activity,
	}
}

func (h *ActivityHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, ui.ActivityRoute, h.Events, huma.OperationTags("console"))
}

// Events patches the current feed, then re-patches it on every new row
// until the client goes away.
func (h *ActivityHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		ch := h.activity.Bus().Subscribe()
		defer h.activity.Bus().Unsubscribe(ch)

		sse.Patch(h.renderFeed(ctx), ui.Selector(ui.ActivityListID))
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				sse.Patch(h.renderFeed(ctx), ui.Selector(ui.ActivityListID))
			}
		}
	}), nil
}

func (h *ActivityHandler) renderFeed(ctx context.Context) string {
	rows, err := h.activity.Recent(ctx, FeedSize)
	if err != nil {
		slog.Error("load activity", "err", err)
	}

	var buf bytes.Buffer
	if len(rows) == 0 {
		if err := h.Renderer.RenderToBuffer(&buf, "empty-state", map[string]string{
			"Title": "No activity yet", "Message": "Uploads and WMS requests show up here",
		}); err != nil {
			slog.Error("render empty state", "err", err)
		}
		return buf.String()
	}
	for _, a := range rows {
		if err := h.Renderer.RenderToBuffer(&buf, "activity-item", a); err != nil {
			slog.Error("render activity item", "id", a.ID, "err", err)
		}
	}
	return buf.String()
}
