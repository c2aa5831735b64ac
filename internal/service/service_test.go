package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joeblew999/plat-ingest/internal/backend"
)

type fakeBackend struct {
	mu       sync.Mutex
	layers   []backend.Layer
	capErr   error
	saves    []backend.SaveRequest
	saveFunc func(backend.SaveRequest) (backend.SaveResult, error)
	uploads  []string
	upErr    error
}

func (f *fakeBackend) Upload(_ context.Context, file backend.File) (backend.UploadResult, error) {
	data, _ := io.ReadAll(file.Body)
	f.mu.Lock()
	f.uploads = append(f.uploads, file.Name+":"+string(data))
	f.mu.Unlock()
	if f.upErr != nil {
		return backend.UploadResult{}, f.upErr
	}
	return backend.UploadResult{Filename: file.Name, ContentType: "bim", Command: "ingest " + file.Name}, nil
}

func (f *fakeBackend) Capabilities(_ context.Context, _ string) ([]backend.Layer, error) {
	return f.layers, f.capErr
}

func (f *fakeBackend) SaveLayer(_ context.Context, in backend.SaveRequest) (backend.SaveResult, error) {
	f.mu.Lock()
	f.saves = append(f.saves, in)
	fn := f.saveFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(in)
	}
	return backend.SaveResult{Status: backend.StatusSuccess}, nil
}

func newTestServices(fb *fakeBackend) (*WMSService, *UploadService, *MemoryLedger) {
	ledger := NewMemoryLedger(100)
	activity := NewActivityService(ledger, NewActivityBus())
	return NewWMSService(fb, NewBoardStore(time.Hour), activity), NewUploadService(fb, activity), ledger
}

func TestFetchReplacesBoard(t *testing.T) {
	fb := &fakeBackend{layers: []backend.Layer{{Name: "roads", Title: "Roads"}, {Name: "rivers", Title: "Rivers"}}}
	wms, _, _ := newTestServices(fb)
	ctx := context.Background()

	first, removed, err := wms.Fetch(ctx, "b1", "http://x")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || len(removed) != 0 {
		t.Fatalf("cards=%d removed=%d, want 2/0", len(first), len(removed))
	}
	if first[0].Layer.Name != "roads" || first[1].Layer.Name != "rivers" {
		t.Errorf("order not preserved: %s, %s", first[0].Layer.Name, first[1].Layer.Name)
	}

	fb.layers = []backend.Layer{{Name: "parcels", Title: "Parcels"}}
	second, removed, err := wms.Fetch(ctx, "b1", "http://y")
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 1 || len(removed) != 2 {
		t.Fatalf("cards=%d removed=%d, want 1/2", len(second), len(removed))
	}
	for _, old := range first {
		if _, _, err := wms.Lookup("b1", old.ID); !errors.Is(err, ErrCardNotFound) {
			t.Errorf("stale card %s still found", old.ID)
		}
	}
	if second[0].WMSURL != "http://y" {
		t.Errorf("card url=%q, want http://y", second[0].WMSURL)
	}
}

func TestFetchErrorKeepsBoard(t *testing.T) {
	fb := &fakeBackend{layers: []backend.Layer{{Name: "roads"}}}
	wms, _, ledger := newTestServices(fb)
	ctx := context.Background()

	cards, _, _ := wms.Fetch(ctx, "b1", "http://x")
	fb.capErr = &backend.StatusError{StatusCode: 400}
	if _, _, err := wms.Fetch(ctx, "b1", "http://bad"); err == nil {
		t.Fatal("expected error")
	}
	if _, _, err := wms.Lookup("b1", cards[0].ID); err != nil {
		t.Errorf("card dropped after failed fetch: %v", err)
	}
	rows, _ := ledger.Recent(ctx, 10)
	if len(rows) != 2 || rows[0].Outcome != OutcomeError || rows[0].Subject != "http://bad" {
		t.Errorf("ledger rows=%+v", rows)
	}
}

func TestFetchRequiresBoard(t *testing.T) {
	wms, _, _ := newTestServices(&fakeBackend{})
	if _, _, err := wms.Fetch(context.Background(), "", "http://x"); !errors.Is(err, ErrNoBoard) {
		t.Fatalf("err=%v, want ErrNoBoard", err)
	}
}

func TestSaveUsesCapturedURL(t *testing.T) {
	fb := &fakeBackend{layers: []backend.Layer{{Name: "roads", Title: "Roads"}}}
	wms, _, _ := newTestServices(fb)
	ctx := context.Background()

	cards, _, _ := wms.Fetch(ctx, "b1", "http://x")
	board, card, err := wms.Lookup("b1", cards[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	out := wms.Save(ctx, board, card, "main roads")

	want := backend.SaveRequest{LayerName: "roads", Description: "main roads", WMSURL: "http://x"}
	if len(fb.saves) != 1 || fb.saves[0] != want {
		t.Fatalf("saves=%+v, want %+v", fb.saves, want)
	}
	if !out.Current || out.Err != nil || out.Status != "Layer saved successfully!" || out.Outcome() != "success" {
		t.Errorf("outcome=%+v", out)
	}
}

func TestSaveErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"app message", &backend.AppError{Status: "error", Message: "bad layer"}, "bad layer"},
		{"app without message", &backend.AppError{Status: "error"}, "Failed to save layer"},
		{"http status", &backend.StatusError{StatusCode: 500}, "HTTP error! status: 500"},
		{"transport", &backend.TransportError{Op: "wms save", Err: io.ErrUnexpectedEOF}, "Failed to save layer"},
		{"decode", &backend.DecodeError{Op: "wms save", Err: io.ErrUnexpectedEOF}, "Failed to save layer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{
				layers: []backend.Layer{{Name: "roads"}},
				saveFunc: func(backend.SaveRequest) (backend.SaveResult, error) {
					return backend.SaveResult{}, tt.err
				},
			}
			wms, _, _ := newTestServices(fb)
			ctx := context.Background()
			cards, _, _ := wms.Fetch(ctx, "b1", "http://x")
			board, card, _ := wms.Lookup("b1", cards[0].ID)

			out := wms.Save(ctx, board, card, "")
			if out.Status != tt.want || out.Outcome() != "error" {
				t.Errorf("status=%q outcome=%q, want %q/error", out.Status, out.Outcome(), tt.want)
			}
		})
	}
}

func TestSaveOnlyLatestIsCurrent(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	fb := &fakeBackend{
		layers: []backend.Layer{{Name: "roads"}},
		saveFunc: func(in backend.SaveRequest) (backend.SaveResult, error) {
			started <- struct{}{}
			if in.Description == "first" {
				<-release
			}
			return backend.SaveResult{Status: backend.StatusSuccess}, nil
		},
	}
	wms, _, _ := newTestServices(fb)
	ctx := context.Background()
	cards, _, _ := wms.Fetch(ctx, "b1", "http://x")
	board, card, _ := wms.Lookup("b1", cards[0].ID)

	firstDone := make(chan SaveOutcome)
	go func() { firstDone <- wms.Save(ctx, board, card, "first") }()
	<-started

	second := wms.Save(ctx, board, card, "second")
	close(release)
	first := <-firstDone

	if first.Current {
		t.Error("first save resolved after the second but is still current")
	}
	if !second.Current {
		t.Error("second save is not current")
	}
}

func TestSaveAfterReplaceIsStale(t *testing.T) {
	fb := &fakeBackend{layers: []backend.Layer{{Name: "roads"}}}
	wms, _, _ := newTestServices(fb)
	ctx := context.Background()
	cards, _, _ := wms.Fetch(ctx, "b1", "http://x")
	board, card, _ := wms.Lookup("b1", cards[0].ID)

	fb.saveFunc = func(backend.SaveRequest) (backend.SaveResult, error) {
		fb.saveFunc = nil
		board.Replace("http://y", []backend.Layer{{Name: "roads"}})
		return backend.SaveResult{Status: backend.StatusSuccess}, nil
	}
	if out := wms.Save(ctx, board, card, "x"); out.Current {
		t.Error("save for a replaced card is current")
	}
}

func TestUploadRecordsActivity(t *testing.T) {
	fb := &fakeBackend{}
	_, uploads, ledger := newTestServices(fb)
	ctx := context.Background()

	res, err := uploads.Upload(ctx, backend.File{Name: "a.zip", Body: strings.NewReader("PK")})
	if err != nil {
		t.Fatal(err)
	}
	if res.Command != "ingest a.zip" || len(fb.uploads) != 1 || fb.uploads[0] != "a.zip:PK" {
		t.Errorf("res=%+v uploads=%v", res, fb.uploads)
	}

	fb.upErr = &backend.StatusError{StatusCode: 413}
	if _, err := uploads.Upload(ctx, backend.File{Name: "b.zip", Body: strings.NewReader("PK")}); err == nil {
		t.Fatal("expected error")
	}
	rows, _ := ledger.Recent(ctx, 10)
	if len(rows) != 2 || rows[0].Subject != "b.zip" || rows[0].Outcome != OutcomeError || rows[1].Outcome != OutcomeSuccess {
		t.Errorf("rows=%+v", rows)
	}
}

func TestBoardStorePrunesIdleBoards(t *testing.T) {
	now := time.Unix(0, 0)
	s := NewBoardStore(time.Minute)
	s.now = func() time.Time { return now }

	s.Open("old")
	now = now.Add(2 * time.Minute)
	s.Open("new")

	if _, ok := s.Get("old"); ok {
		t.Error("idle board not pruned")
	}
	if s.Len() != 1 {
		t.Errorf("len=%d, want 1", s.Len())
	}
}

func TestActivityBusFanOut(t *testing.T) {
	bus := NewActivityBus()
	a, b := bus.Subscribe(), bus.Subscribe()
	defer bus.Unsubscribe(b)

	svc := NewActivityService(NewMemoryLedger(10), bus)
	svc.Record(context.Background(), KindUpload, "a.zip", "ok", nil)

	for _, ch := range []chan Activity{a, b} {
		select {
		case got := <-ch:
			if got.Subject != "a.zip" || got.Outcome != OutcomeSuccess {
				t.Errorf("got %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("no activity received")
		}
	}

	bus.Unsubscribe(a)
	if _, ok := <-a; ok {
		t.Error("channel open after unsubscribe")
	}
}

func TestMemoryLedgerBounded(t *testing.T) {
	l := NewMemoryLedger(2)
	ctx := context.Background()
	for _, s := range []string{"a", "b", "c"} {
		l.Record(ctx, Activity{Subject: s})
	}
	rows, _ := l.Recent(ctx, 5)
	if len(rows) != 2 || rows[0].Subject != "c" || rows[1].Subject != "b" {
		t.Errorf("rows=%+v", rows)
	}
}
