package scan

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/philipparndt/meshscan/pkg/geometry"
)

func newTestEngine() *Engine {
	// RecomputeEvery 1 makes every notification visible immediately
	return NewEngine(Config{RecomputeEvery: 1, MinCaptureArea: 0.5})
}

func TestEngineLiveReading(t *testing.T) {
	e := newTestEngine()

	e.FragmentAdded(floorSquare("a", 10, geometry.Identity()))
	if r := e.Reading(); math.Abs(r.Area-100) > 1e-9 {
		t.Fatalf("expected 100, got %v", r.Area)
	}

	e.FragmentAdded(floorSquare("b", 10, geometry.NewTranslation(20, 0, 0)))
	if r := e.Reading(); math.Abs(r.Area-200) > 1e-9 {
		t.Fatalf("expected 200, got %v", r.Area)
	}

	e.FragmentRemoved("a")
	if r := e.Reading(); math.Abs(r.Area-100) > 1e-9 {
		t.Fatalf("after remove: expected 100, got %v", r.Area)
	}
}

func TestEngineThrottling(t *testing.T) {
	e := NewEngine(Config{RecomputeEvery: 4})

	// Mesh mutations apply immediately; the reading lags until the 4th
	// notification.
	for i := 0; i < 3; i++ {
		e.FragmentAdded(floorSquare(string(rune('a'+i)), 10, geometry.NewTranslation(float64(i*20), 0, 0)))
	}
	if len(e.FragmentIDs()) != 3 {
		t.Fatalf("mutations must not be throttled, got %v", e.FragmentIDs())
	}
	if r := e.Reading(); r.Area != 0 || r.Sequence != 0 {
		t.Fatalf("reading recomputed too early: %+v", r)
	}

	e.FragmentAdded(floorSquare("d", 10, geometry.NewTranslation(60, 0, 0)))
	r := e.Reading()
	if math.Abs(r.Area-400) > 1e-9 {
		t.Errorf("expected 400 after 4th notification, got %v", r.Area)
	}
	if r.Sequence != 1 {
		t.Errorf("expected sequence 1, got %d", r.Sequence)
	}
}

func TestEngineReadingSequenceMonotonic(t *testing.T) {
	e := newTestEngine()

	var last uint64
	for i := 0; i < 10; i++ {
		e.FragmentAdded(floorSquare("a", 10, geometry.Identity()))
		r := e.Reading()
		if r.Sequence <= last {
			t.Fatalf("sequence not increasing: %d after %d", r.Sequence, last)
		}
		last = r.Sequence
	}
}

func TestEngineUpsertIdempotent(t *testing.T) {
	e := newTestEngine()

	e.FragmentAdded(floorSquare("a", 10, geometry.Identity()))
	e.FragmentUpdated(floorSquare("a", 10, geometry.Identity()))
	e.FragmentUpdated(floorSquare("a", 10, geometry.Identity()))

	if r := e.Reading(); math.Abs(r.Area-100) > 1e-9 {
		t.Errorf("repeated updates must not double-count: %v", r.Area)
	}
}

func TestEngineCaptureFlow(t *testing.T) {
	e := newTestEngine()
	e.FragmentAdded(floorSquare("a", 10, geometry.Identity()))

	if err := e.StartScanning(); err != nil {
		t.Fatalf("start: %v", err)
	}

	area, err := e.CaptureArea("")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if area.Label != "Area 1" {
		t.Errorf("expected default label, got %q", area.Label)
	}
	if math.Abs(area.Area-100) > 1e-9 {
		t.Errorf("expected captured area 100, got %v", area.Area)
	}
	if len(area.Boundary) != 4 {
		t.Errorf("expected 4 boundary corners, got %v", area.Boundary)
	}

	if err := e.FinishScanning(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	store := &fakeAreaStore{}
	if err := e.Save(context.Background(), store); err != nil {
		t.Fatalf("save: %v", err)
	}
	if e.SessionState() != StateSaved {
		t.Errorf("expected saved, got %v", e.SessionState())
	}
	if len(store.saved) != 1 || len(store.saved[0]) != 1 {
		t.Errorf("store did not receive the batch: %+v", store.saved)
	}
}

func TestEngineCaptureBeforeFloorDetected(t *testing.T) {
	e := newTestEngine()
	if err := e.StartScanning(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := e.CaptureArea("x"); !errors.Is(err, ErrNothingDetected) {
		t.Errorf("expected ErrNothingDetected, got %v", err)
	}
}

func TestEngineSaveFailureRetry(t *testing.T) {
	e := newTestEngine()
	e.FragmentAdded(floorSquare("a", 10, geometry.Identity()))
	e.StartScanning()
	e.CaptureArea("room")
	e.FinishScanning()

	store := &fakeAreaStore{failWith: errors.New("store offline")}
	if err := e.Save(context.Background(), store); err == nil {
		t.Fatal("expected save failure")
	}
	if e.SessionState() != StateReviewing {
		t.Fatalf("expected reviewing after failed save, got %v", e.SessionState())
	}

	store.failWith = nil
	if err := e.Save(context.Background(), store); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if e.SessionState() != StateSaved {
		t.Errorf("expected saved, got %v", e.SessionState())
	}
}

// blockingAreaStore holds SaveSession until released, to exercise saves
// issued while one is already pending
type blockingAreaStore struct {
	entered chan struct{}
	release chan struct{}
	calls   int
}

func (b *blockingAreaStore) SaveSession(context.Context, []CapturedArea, SessionSummary) error {
	b.entered <- struct{}{}
	<-b.release
	b.calls++
	return nil
}

func TestEngineSaveWhilePendingRejected(t *testing.T) {
	e := newTestEngine()
	e.FragmentAdded(floorSquare("a", 10, geometry.Identity()))
	e.StartScanning()
	e.CaptureArea("room")
	e.FinishScanning()

	store := &blockingAreaStore{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	done := make(chan error, 1)
	go func() {
		done <- e.Save(context.Background(), store)
	}()
	<-store.entered

	// The first save is still inside the store; a second must be rejected
	// without reaching the store again.
	if err := e.Save(context.Background(), store); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for save while pending, got %v", err)
	}

	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("pending save failed: %v", err)
	}
	if e.SessionState() != StateSaved {
		t.Errorf("expected saved, got %v", e.SessionState())
	}
	if store.calls != 1 {
		t.Errorf("store must receive the batch exactly once, got %d", store.calls)
	}
}

func TestEngineSensorErrorFreezes(t *testing.T) {
	e := newTestEngine()
	e.FragmentAdded(floorSquare("a", 10, geometry.Identity()))
	e.StartScanning()
	e.CaptureArea("room")

	e.SessionError("tracking lost")

	if !e.Frozen() {
		t.Fatal("expected frozen engine")
	}
	if e.LastError() == nil {
		t.Fatal("expected surfaced sensor error")
	}

	// Further mesh events are ignored; reading and captures are preserved
	before := e.Reading()
	e.FragmentAdded(floorSquare("b", 10, geometry.NewTranslation(20, 0, 0)))
	if got := e.Reading(); got != before {
		t.Errorf("reading changed while frozen: %+v vs %+v", got, before)
	}
	if snap := e.Snapshot(); snap.Count != 1 {
		t.Errorf("captured areas lost on sensor error: %+v", snap)
	}

	e.ResumeSensing()
	if e.Frozen() || e.LastError() != nil {
		t.Error("resume did not clear the failure")
	}
	e.FragmentAdded(floorSquare("b", 10, geometry.NewTranslation(20, 0, 0)))
	if r := e.Reading(); math.Abs(r.Area-200) > 1e-9 {
		t.Errorf("ingestion did not resume: %v", r.Area)
	}
}

func TestEngineSnapshot(t *testing.T) {
	e := newTestEngine()
	e.FragmentAdded(floorSquare("a", 10, geometry.Identity()))
	e.StartScanning()
	e.CaptureArea("kitchen")
	e.CaptureArea("hall")

	snap := e.Snapshot()
	if snap.State != StateScanning {
		t.Errorf("expected scanning, got %v", snap.State)
	}
	if snap.Count != 2 || len(snap.Areas) != 2 {
		t.Errorf("expected 2 areas, got %+v", snap)
	}
	if math.Abs(snap.TotalArea-200) > 1e-9 {
		t.Errorf("expected total 200, got %v", snap.TotalArea)
	}
	if snap.Areas[0].Label != "kitchen" || snap.Areas[1].Label != "hall" {
		t.Errorf("capture order not preserved: %+v", snap.Areas)
	}
}

func TestEngineConcurrentIngestAndCapture(t *testing.T) {
	e := newTestEngine()
	e.FragmentAdded(floorSquare("seed", 10, geometry.Identity()))
	e.StartScanning()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := string(rune('a' + w))
				e.FragmentUpdated(floorSquare(id, 10, geometry.NewTranslation(float64(w*20+20), 0, 0)))
				if i%10 == 0 {
					e.FragmentRemoved(id)
				}
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			e.CaptureArea("")
			e.Reading()
			e.Snapshot()
		}
	}()
	wg.Wait()

	// The seed square alone guarantees at least 100 sq units
	if r := e.Reading(); r.Area < 100-1e-9 {
		t.Errorf("reading lost the seed fragment: %v", r.Area)
	}
}
