package console

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-ingest/internal/humastar"
	"github.com/joeblew999/plat-ingest/internal/service"
	"github.com/joeblew999/plat-ingest/internal/templates"
	"github.com/joeblew999/plat-ingest/internal/ui"
)

// WMSHandler handles the WMS URL form and the per-layer save buttons.
type WMSHandler struct {
	humastar.Handler
	wms *service.WMSService
}

// NewWMSHandler creates a new WMS handler.
func NewWMSHandler(wms *service.WMSService, renderer *templates.Renderer) *WMSHandler {
	return &WMSHandler{
		Handler: humastar.Handler{Renderer: renderer},
		wms:     wms,
	}
}

func (h *WMSHandler) RegisterRoutes(api huma.API) {
	huma.Post(api, ui.CapabilitiesRoute, h.Capabilities, huma.OperationTags("console"))
	huma.Post(api, ui.SaveRoute("{id}"), h.Save, huma.OperationTags("console"))
}

// Capabilities fetches the layers of the submitted WMS URL and replaces the
// rendered cards with one card per layer.
func (h *WMSHandler) Capabilities(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	boardID := signals.String(ui.SignalBoardID)
	wmsURL := signals.String(ui.SignalWMSURL)

	return h.Stream(func(sse humastar.SSE) {
		cards, removed, err := h.wms.Fetch(ctx, boardID, wmsURL)
		if err != nil {
			slog.Error("load wms layers", "url", wmsURL, "err", err)
			sse.ConsoleError(err)
			sse.Alert(ui.CapabilitiesFailedAlert)
			return
		}

		states := make(map[string]any, len(cards)+len(removed))
		for _, id := range removed {
			states[id] = nil
		}
		for _, c := range cards {
			states[c.ID] = ui.CardState{}
		}

		// Signals first so the new cards bind to existing state.
		sse.Signals(map[string]any{
			ui.SignalLayersVisible: true,
			ui.SignalCards:         states,
		})
		sse.Patch(h.renderCards(cards), ui.Selector(ui.LayersListID))
	}), nil
}

type SaveInput struct {
	ID      string `path:"id" doc:"Layer card ID"`
	RawBody []byte
}

// Save sends one card's description to the backend. The card shows the
// in-progress text until the outcome arrives; outcomes of superseded saves
// are dropped.
func (h *WMSHandler) Save(ctx context.Context, input *SaveInput) (*huma.StreamResponse, error) {
	signals, err := humastar.ParseSignals(input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid request data: " + err.Error())
	}

	board, card, err := h.wms.Lookup(signals.String(ui.SignalBoardID), input.ID)
	if err != nil {
		// The board is gone after a restart or idle pruning, or the card was
		// replaced. The clicked card is still on the page and gets the error.
		return h.Stream(func(sse humastar.SSE) {
			slog.Warn("save for unknown layer card", "card", input.ID, "err", err)
			sse.ConsoleError(err)
			sse.Signals(ui.CardPatch(input.ID, false, ui.CardsExpired, ui.OutcomeError))
		}), nil
	}
	description := signals.Object(ui.SignalCards).Object(card.ID).String("description")

	return h.Stream(func(sse humastar.SSE) {
		sse.Signals(ui.CardPatch(card.ID, true, ui.SaveInProgress, ""))

		out := h.wms.Save(ctx, board, card, description)
		if !out.Current {
			slog.Debug("dropping stale save outcome", "card", card.ID, "layer", card.Layer.Name)
			return
		}
		if out.Err != nil {
			slog.Error("save layer", "layer", card.Layer.Name, "err", out.Err)
			sse.ConsoleError(out.Err)
		} else {
			sse.ConsoleLog("WMS info:", out.Result.WMSInfo)
		}
		sse.Signals(ui.CardPatch(card.ID, false, out.Status, out.Outcome()))
	}), nil
}

func (h *WMSHandler) renderCards(cards []*service.Card) string {
	var buf bytes.Buffer
	if len(cards) == 0 {
		if err := h.Renderer.RenderToBuffer(&buf, "empty-state", map[string]string{
			"Title": "No layers found", "Message": "The WMS service did not list any layers",
		}); err != nil {
			slog.Error("render empty state", "err", err)
		}
		return buf.String()
	}
	for _, c := range cards {
		if err := h.Renderer.RenderToBuffer(&buf, "layer-card", cardView(c)); err != nil {
			slog.Error("render layer card", "layer", c.Layer.Name, "err", err)
		}
	}
	return buf.String()
}

func cardView(c *service.Card) ui.CardView {
	v := ui.CardView{
		ID:       c.ID,
		Name:     c.Layer.Name,
		Title:    c.Layer.Title,
		Abstract: c.Layer.Abstract,
	}
	if b, ok := c.Layer.Bound(); ok {
		center := b.Center()
		v.Extent = fmt.Sprintf("%.4f, %.4f to %.4f, %.4f (centre %.4f, %.4f)",
			b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y(), center.X(), center.Y())
	}
	return v
}
