package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/philipparndt/meshscan/pkg/geometry"
)

// State identifies where a scan session is in its lifecycle
type State int

const (
	StateIdle State = iota
	StateScanning
	StateReviewing
	StateSaved
	StateCancelled
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateScanning:  "scanning",
	StateReviewing: "reviewing",
	StateSaved:     "saved",
	StateCancelled: "cancelled",
}

// String returns the lowercase name of the state
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Reason-coded errors for operator-ordering mistakes. All are recoverable by
// retrying the correct sequence.
var (
	// ErrNothingDetected rejects a capture before enough floor is visible
	ErrNothingDetected = errors.New("nothing detected yet")
	// ErrNoCapturedAreas rejects finishing a session with no captures
	ErrNoCapturedAreas = errors.New("no captured areas")
	// ErrInvalidState rejects an operation in the wrong session state
	ErrInvalidState = errors.New("invalid session state")
)

// DefaultMinCaptureArea is the minimum live reading required before a
// capture is accepted, guarding against empty or noise readings.
const DefaultMinCaptureArea = 0.1

// CapturedArea is the operator-facing unit of output: a named snapshot of
// the live reading plus a compact boundary polygon. Immutable once created
// except for its label.
type CapturedArea struct {
	ID         string
	Label      string
	Area       float64
	Boundary   []geometry.Point2
	CapturedAt time.Time
}

// SessionSummary carries the session-level totals handed to the area store
type SessionSummary struct {
	TotalArea float64
	Count     int
}

// AreaStore persists a finished batch of captured areas. Implementations
// live outside the engine; a failed save must leave the batch reusable for
// a retry.
type AreaStore interface {
	SaveSession(ctx context.Context, areas []CapturedArea, summary SessionSummary) error
}

// Session is the aggregate root for one scanning pass. It owns the session
// state and the list of captured areas, and is the single point of mutation
// for session data. It is not safe for concurrent use on its own; the
// Engine serializes access.
type Session struct {
	state          State
	areas          []CapturedArea
	minCaptureArea float64
}

// NewSession creates an idle session. minCaptureArea <= 0 uses
// DefaultMinCaptureArea.
func NewSession(minCaptureArea float64) *Session {
	if minCaptureArea <= 0 {
		minCaptureArea = DefaultMinCaptureArea
	}
	return &Session{
		state:          StateIdle,
		minCaptureArea: minCaptureArea,
	}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return s.state
}

// Areas returns a copy of the captured areas in capture order
func (s *Session) Areas() []CapturedArea {
	out := make([]CapturedArea, len(s.areas))
	copy(out, s.areas)
	for i := range out {
		out[i].Boundary = append([]geometry.Point2(nil), s.areas[i].Boundary...)
	}
	return out
}

// TotalArea returns the sum over all captured areas
func (s *Session) TotalArea() float64 {
	total := 0.0
	for _, a := range s.areas {
		total += a.Area
	}
	return total
}

// Count returns the number of captured areas
func (s *Session) Count() int {
	return len(s.areas)
}

// Start begins scanning. Valid only from idle; resets the captured areas.
func (s *Session) Start() error {
	if s.state != StateIdle {
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidState, s.state)
	}
	s.state = StateScanning
	s.areas = nil
	return nil
}

// Capture snapshots the given reading and boundary into a new named area.
// Valid only while scanning; a reading below the minimum threshold is
// rejected with ErrNothingDetected. An empty label defaults to "Area {n}"
// with n the 1-based capture position.
func (s *Session) Capture(label string, reading Reading, boundary []geometry.Point2) (CapturedArea, error) {
	if s.state != StateScanning {
		return CapturedArea{}, fmt.Errorf("%w: cannot capture while %s", ErrInvalidState, s.state)
	}
	if reading.Area < s.minCaptureArea {
		return CapturedArea{}, ErrNothingDetected
	}

	if label == "" {
		label = fmt.Sprintf("Area %d", len(s.areas)+1)
	}
	area := CapturedArea{
		ID:         uuid.NewString(),
		Label:      label,
		Area:       reading.Area,
		Boundary:   append([]geometry.Point2(nil), boundary...),
		CapturedAt: time.Now(),
	}
	s.areas = append(s.areas, area)
	return area, nil
}

// Rename changes the label of a captured area. Valid while scanning or
// reviewing; unknown ids are ignored.
func (s *Session) Rename(id, newLabel string) error {
	if s.state != StateScanning && s.state != StateReviewing {
		return fmt.Errorf("%w: cannot rename while %s", ErrInvalidState, s.state)
	}
	for i := range s.areas {
		if s.areas[i].ID == id {
			s.areas[i].Label = newLabel
			break
		}
	}
	return nil
}

// Remove discards a captured area by id. Valid while scanning or reviewing;
// unknown ids are ignored.
func (s *Session) Remove(id string) error {
	if s.state != StateScanning && s.state != StateReviewing {
		return fmt.Errorf("%w: cannot remove while %s", ErrInvalidState, s.state)
	}
	for i := range s.areas {
		if s.areas[i].ID == id {
			s.areas = append(s.areas[:i], s.areas[i+1:]...)
			break
		}
	}
	return nil
}

// RemoveAt discards captured areas by position. Out-of-range indices are
// ignored.
func (s *Session) RemoveAt(indices ...int) error {
	if s.state != StateScanning && s.state != StateReviewing {
		return fmt.Errorf("%w: cannot remove while %s", ErrInvalidState, s.state)
	}

	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		drop[i] = true
	}
	kept := s.areas[:0]
	for i, a := range s.areas {
		if !drop[i] {
			kept = append(kept, a)
		}
	}
	s.areas = kept
	return nil
}

// Finish moves the session to reviewing. Rejected until at least one area
// has been captured.
func (s *Session) Finish() error {
	if s.state != StateScanning {
		return fmt.Errorf("%w: cannot finish while %s", ErrInvalidState, s.state)
	}
	if len(s.areas) == 0 {
		return ErrNoCapturedAreas
	}
	s.state = StateReviewing
	return nil
}

// Save hands the captured batch to the external store. On success the
// session moves to saved; on failure it stays in reviewing with the batch
// untouched so the operator can retry.
func (s *Session) Save(ctx context.Context, store AreaStore) error {
	if s.state != StateReviewing {
		return fmt.Errorf("%w: cannot save while %s", ErrInvalidState, s.state)
	}

	summary := SessionSummary{TotalArea: s.TotalArea(), Count: len(s.areas)}
	if err := store.SaveSession(ctx, s.Areas(), summary); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.state = StateSaved
	return nil
}

// markSaved completes a save that ran outside the session's own lock
// discipline. The session may have been cancelled while persistence was in
// flight, in which case the transition is rejected.
func (s *Session) markSaved() error {
	if s.state != StateReviewing {
		return fmt.Errorf("%w: cannot complete save while %s", ErrInvalidState, s.state)
	}
	s.state = StateSaved
	return nil
}

// Cancel discards the session and its captured areas from any state
func (s *Session) Cancel() {
	s.state = StateCancelled
	s.areas = nil
}
