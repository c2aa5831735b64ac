package service

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joeblew999/plat-ingest/internal/backend"
)

// Card is the context of one rendered layer card. The WMS URL is captured
// when the card is created and never re-read at save time.
type Card struct {
	ID     string
	Layer  backend.Layer
	WMSURL string

	seq atomic.Uint64
}

// Begin issues the next save token for the card.
func (c *Card) Begin() uint64 {
	return c.seq.Add(1)
}

// IsLatest reports whether tok is the most recently issued save token.
func (c *Card) IsLatest(tok uint64) bool {
	return c.seq.Load() == tok
}

// newCardID returns an id usable both as a DOM id suffix and a signal key.
func newCardID() string {
	return "c" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Board is the set of cards rendered on one WMS page.
type Board struct {
	ID string

	mu      sync.RWMutex
	cards   []*Card
	byID    map[string]*Card
	touched time.Time
}

func newBoard(id string, now time.Time) *Board {
	return &Board{ID: id, byID: map[string]*Card{}, touched: now}
}

// Replace swaps the board's cards for one card per layer, in order. It
// returns the new cards and the ids of the cards that were dropped.
func (b *Board) Replace(wmsURL string, layers []backend.Layer) (cards []*Card, removed []string) {
	cards = make([]*Card, len(layers))
	byID := make(map[string]*Card, len(layers))
	for i, l := range layers {
		c := &Card{ID: newCardID(), Layer: l, WMSURL: wmsURL}
		cards[i] = c
		byID[c.ID] = c
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, old := range b.cards {
		removed = append(removed, old.ID)
	}
	b.cards = cards
	b.byID = byID
	return cards, removed
}

// Card returns the current card with the given id.
func (b *Board) Card(id string) (*Card, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.byID[id]
	return c, ok
}

// Holds reports whether c is still one of the board's current cards.
func (b *Board) Holds(c *Card) bool {
	cur, ok := b.Card(c.ID)
	return ok && cur == c
}

// Cards returns the current cards in display order.
func (b *Board) Cards() []*Card {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Card, len(b.cards))
	copy(out, b.cards)
	return out
}

func (b *Board) touch(now time.Time) {
	b.mu.Lock()
	b.touched = now
	b.mu.Unlock()
}

func (b *Board) idleSince(now time.Time) time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return now.Sub(b.touched)
}

// BoardStore keeps the boards of open WMS pages. Boards idle for longer
// than the configured duration are dropped.
type BoardStore struct {
	mu     sync.Mutex
	boards map[string]*Board
	idle   time.Duration
	now    func() time.Time
}

// NewBoardStore creates a store evicting boards idle for longer than idle.
func NewBoardStore(idle time.Duration) *BoardStore {
	return &BoardStore{
		boards: map[string]*Board{},
		idle:   idle,
		now:    time.Now,
	}
}

// NewBoardID returns a fresh board id for a page render.
func NewBoardID() string {
	return uuid.NewString()
}

// Open returns the board with id, creating it if needed.
func (s *BoardStore) Open(id string) *Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)

	b, ok := s.boards[id]
	if !ok {
		b = newBoard(id, now)
		s.boards[id] = b
	}
	b.touch(now)
	return b
}

// Get returns an existing board.
func (s *BoardStore) Get(id string) (*Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[id]
	if ok {
		b.touch(s.now())
	}
	return b, ok
}

// Len returns the number of open boards.
func (s *BoardStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.boards)
}

func (s *BoardStore) prune(now time.Time) {
	if s.idle <= 0 {
		return
	}
	for id, b := range s.boards {
		if b.idleSince(now) > s.idle {
			delete(s.boards, id)
		}
	}
}
