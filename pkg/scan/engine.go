package scan

import (
	"context"
	"fmt"
	"sync"

	"github.com/philipparndt/meshscan/pkg/geometry"
	"github.com/philipparndt/meshscan/pkg/mesh"
)

// DefaultRecomputeEvery is the default notification throttle: a full area
// recompute runs once per this many sensor notifications. Mesh mutations
// are always applied immediately; only the derived reading lags, by at most
// one throttle window.
const DefaultRecomputeEvery = 4

// Config carries the engine tunables. The zero value selects defaults for
// every field except Target, which defaults to floor surfaces.
type Config struct {
	// Target is the surface classification that counts toward the area
	Target mesh.Classification
	// UnitScale converts native to reporting units; <= 0 means native units
	UnitScale float64
	// RecomputeEvery throttles recomputation to every Nth notification.
	// Tests set 1 for determinism.
	RecomputeEvery int
	// MinCaptureArea gates captures; <= 0 uses DefaultMinCaptureArea
	MinCaptureArea float64
	// MaxBoundaryPoints caps boundary collection; <= 0 uses MaxBoundaryPoints
	MaxBoundaryPoints int
}

func (c Config) withDefaults() Config {
	if c.Target == mesh.ClassNone {
		c.Target = mesh.ClassFloor
	}
	if c.UnitScale <= 0 {
		c.UnitScale = 1.0
	}
	if c.RecomputeEvery <= 0 {
		c.RecomputeEvery = DefaultRecomputeEvery
	}
	if c.MaxBoundaryPoints <= 0 {
		c.MaxBoundaryPoints = MaxBoundaryPoints
	}
	return c
}

// Snapshot is a read-only projection of the session and the live reading
// for pull-based presentation.
type Snapshot struct {
	State     State
	Areas     []CapturedArea
	TotalArea float64
	Count     int
	Reading   Reading
	Frozen    bool
}

// Engine is the single serialized owner of the mesh store and the scan
// session. Sensor notifications and operator actions may arrive from
// different goroutines; every mutation and every read goes through one
// mutex, so a capture always sees an internally consistent mesh snapshot.
type Engine struct {
	mu            sync.Mutex
	cfg           Config
	store         *mesh.Store
	aggregator    *Aggregator
	session       *Session
	reading       Reading
	notifications uint64
	frozen        bool
	sensorErr     error
	saving        bool
}

// NewEngine creates an engine with an empty mesh store and an idle session
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:        cfg,
		store:      mesh.NewStore(),
		aggregator: NewAggregator(cfg.Target, cfg.UnitScale),
		session:    NewSession(cfg.MinCaptureArea),
	}
}

// FragmentAdded ingests a new mesh fragment from the sensor session
func (e *Engine) FragmentAdded(f *mesh.Fragment) {
	e.ingest(f)
}

// FragmentUpdated replaces the geometry of a known fragment
func (e *Engine) FragmentUpdated(f *mesh.Fragment) {
	e.ingest(f)
}

func (e *Engine) ingest(f *mesh.Fragment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frozen {
		return
	}
	e.store.Upsert(f)
	e.noteNotification()
}

// FragmentRemoved drops a fragment the sensor merged away or lost
func (e *Engine) FragmentRemoved(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frozen {
		return
	}
	e.store.Remove(id)
	e.noteNotification()
}

// noteNotification counts a sensor event and recomputes the reading on
// every Nth one. Callers hold the mutex.
func (e *Engine) noteNotification() {
	e.notifications++
	if e.notifications%uint64(e.cfg.RecomputeEvery) != 0 {
		return
	}
	reading := e.aggregator.Recompute(e.store)
	reading.Sequence = e.reading.Sequence + 1
	e.reading = reading
}

// SessionError freezes the engine after an out-of-band sensor failure. The
// current reading and all captured areas are preserved; further mesh
// notifications are ignored until the session controller resumes sensing.
func (e *Engine) SessionError(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frozen = true
	e.sensorErr = fmt.Errorf("sensor session: %s", message)
}

// ResumeSensing clears a sensor failure after the session controller has
// restarted the sensing device.
func (e *Engine) ResumeSensing() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frozen = false
	e.sensorErr = nil
}

// Frozen reports whether mesh ingestion is halted by a sensor failure
func (e *Engine) Frozen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frozen
}

// LastError returns the most recent sensor failure, or nil
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sensorErr
}

// Reading returns the current throttled area readout
func (e *Engine) Reading() Reading {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reading
}

// FragmentIDs returns the ids currently held in the mesh store, for
// diagnostics
func (e *Engine) FragmentIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.SnapshotIDs()
}

// MeshBounds returns the world-space extent of the current mesh
func (e *Engine) MeshBounds() geometry.BoundingBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Bounds()
}

// StartScanning begins a scan pass
func (e *Engine) StartScanning() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Start()
}

// CaptureArea freezes the current reading and boundary into a named area
// and reports it back for operator feedback. The boundary is extracted from
// the same locked mesh snapshot the reading was computed from.
func (e *Engine) CaptureArea(label string) (CapturedArea, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	boundary := ExtractBoundary(e.store, e.cfg.Target, e.cfg.MaxBoundaryPoints)
	return e.session.Capture(label, e.reading, boundary)
}

// RenameArea changes the label of a captured area
func (e *Engine) RenameArea(id, newLabel string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Rename(id, newLabel)
}

// RemoveArea discards a captured area by id
func (e *Engine) RemoveArea(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Remove(id)
}

// RemoveAreasAt discards captured areas by position
func (e *Engine) RemoveAreasAt(indices ...int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.RemoveAt(indices...)
}

// FinishScanning moves the session to reviewing
func (e *Engine) FinishScanning() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Finish()
}

// Save persists the captured batch through the external area store. On
// failure the session stays in reviewing and the operator can retry. The
// store call runs outside the engine lock so sensor ingestion and other
// session operations stay responsive while persistence is pending.
// Only one save may be in flight at a time: a second Save issued while the
// store call is pending is rejected instead of persisting the batch twice.
func (e *Engine) Save(ctx context.Context, store AreaStore) error {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return fmt.Errorf("%w: save already in progress", ErrInvalidState)
	}
	if e.session.State() != StateReviewing {
		state := e.session.State()
		e.mu.Unlock()
		return fmt.Errorf("%w: cannot save while %s", ErrInvalidState, state)
	}
	e.saving = true
	areas := e.session.Areas()
	summary := SessionSummary{TotalArea: e.session.TotalArea(), Count: e.session.Count()}
	e.mu.Unlock()

	err := store.SaveSession(ctx, areas, summary)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return e.session.markSaved()
}

// CancelSession discards the session and its captured areas
func (e *Engine) CancelSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Cancel()
}

// SessionState returns the current session lifecycle state
func (e *Engine) SessionState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.State()
}

// Snapshot returns a consistent read-only projection of the session and the
// live reading
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		State:     e.session.State(),
		Areas:     e.session.Areas(),
		TotalArea: e.session.TotalArea(),
		Count:     e.session.Count(),
		Reading:   e.reading,
		Frozen:    e.frozen,
	}
}
