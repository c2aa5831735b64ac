package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/joeblew999/plat-ingest/internal/backend"
	"github.com/joeblew999/plat-ingest/internal/ui"
)

var (
	// ErrNoBoard is returned when a request does not name its page's board.
	ErrNoBoard = errors.New("missing board id")
	// ErrCardNotFound is returned for cards that are not on the board, most
	// often because a newer capabilities fetch replaced them.
	ErrCardNotFound = errors.New("layer card not found")
)

// WMSService fetches layer lists into boards and saves layer descriptions.
type WMSService struct {
	backend  WMSBackend
	boards   *BoardStore
	activity *ActivityService
}

// NewWMSService creates a WMS service.
func NewWMSService(b WMSBackend, boards *BoardStore, activity *ActivityService) *WMSService {
	return &WMSService{backend: b, boards: boards, activity: activity}
}

// Fetch loads the layers offered at wmsURL and replaces the board's cards
// with one card per layer. On error the board is left untouched.
func (s *WMSService) Fetch(ctx context.Context, boardID, wmsURL string) (cards []*Card, removed []string, err error) {
	if boardID == "" {
		return nil, nil, ErrNoBoard
	}

	layers, err := s.backend.Capabilities(ctx, wmsURL)
	if err != nil {
		s.activity.Record(ctx, KindCapabilities, wmsURL, "", err)
		return nil, nil, fmt.Errorf("capabilities %s: %w", wmsURL, err)
	}

	cards, removed = s.boards.Open(boardID).Replace(wmsURL, layers)
	s.activity.Record(ctx, KindCapabilities, wmsURL, fmt.Sprintf("%d layers", len(layers)), nil)
	return cards, removed, nil
}

// Lookup finds a current card.
func (s *WMSService) Lookup(boardID, cardID string) (*Board, *Card, error) {
	if boardID == "" {
		return nil, nil, ErrNoBoard
	}
	b, ok := s.boards.Get(boardID)
	if !ok {
		return nil, nil, ErrCardNotFound
	}
	c, ok := b.Card(cardID)
	if !ok {
		return nil, nil, ErrCardNotFound
	}
	return b, c, nil
}

// SaveOutcome is the result of one save as the card should show it.
type SaveOutcome struct {
	CardID string
	Result backend.SaveResult
	Err    error

	// Status is the card's status text.
	Status string

	// Current is false when a newer save was issued for the card, or the
	// card left its board, while this one was in flight. Stale outcomes
	// must not touch the UI.
	Current bool
}

// Outcome is the card outcome for styling.
func (o SaveOutcome) Outcome() string {
	if o.Err != nil {
		return ui.OutcomeError
	}
	return ui.OutcomeSuccess
}

// Save posts the description for the card's layer, using the WMS URL the
// card was created with. Every call issues a new token on the card; only
// the outcome holding the latest token is Current.
func (s *WMSService) Save(ctx context.Context, board *Board, card *Card, description string) SaveOutcome {
	tok := card.Begin()

	res, err := s.backend.SaveLayer(ctx, backend.SaveRequest{
		LayerName:   card.Layer.Name,
		Description: description,
		WMSURL:      card.WMSURL,
	})

	out := SaveOutcome{
		CardID:  card.ID,
		Result:  res,
		Err:     err,
		Status:  ui.SaveSucceeded,
		Current: board.Holds(card) && card.IsLatest(tok),
	}
	if err != nil {
		out.Status = saveErrorText(err)
		s.activity.Record(ctx, KindSave, card.Layer.Name, "", err)
	} else {
		s.activity.Record(ctx, KindSave, card.Layer.Name, res.Message, nil)
	}
	return out
}

// saveErrorText is the status text shown for a failed save: the backend's
// message when it sent one, the HTTP status for non-2xx responses, and the
// generic text otherwise.
func saveErrorText(err error) string {
	var app *backend.AppError
	if errors.As(err, &app) {
		if app.Message != "" {
			return app.Message
		}
		return ui.SaveFailed
	}
	var se *backend.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	return ui.SaveFailed
}
