// Package replay feeds recorded or file-based mesh fragment streams into the
// scanning engine. It stands in for the sensing device during development
// and testing.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/philipparndt/meshscan/pkg/geometry"
	"github.com/philipparndt/meshscan/pkg/mesh"
)

// Sink receives sensor-session notifications. *scan.Engine satisfies it.
type Sink interface {
	FragmentAdded(*mesh.Fragment)
	FragmentUpdated(*mesh.Fragment)
	FragmentRemoved(id string)
	SessionError(message string)
}

// Event is one recorded sensor notification, one JSON object per line
type Event struct {
	Op       string        `json:"op"` // add, update, remove, error
	Fragment *FragmentJSON `json:"fragment,omitempty"`
	ID       string        `json:"id,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// FragmentJSON is the wire shape of a mesh fragment
type FragmentJSON struct {
	ID              string                `json:"id"`
	Vertices        [][3]float64          `json:"vertices"`
	Faces           [][3]int              `json:"faces"`
	Classifications []mesh.Classification `json:"classifications"`
	// Transform is a row-major 3x4 matrix; omitted means identity
	Transform *[12]float64 `json:"transform,omitempty"`
}

// ToFragment converts the wire shape into a mesh fragment
func (fj *FragmentJSON) ToFragment() *mesh.Fragment {
	f := &mesh.Fragment{
		ID:        fj.ID,
		Transform: geometry.Identity(),
	}
	for _, v := range fj.Vertices {
		f.Vertices = append(f.Vertices, geometry.NewVector3(v[0], v[1], v[2]))
	}
	for _, face := range fj.Faces {
		f.Faces = append(f.Faces, mesh.Face{face[0], face[1], face[2]})
	}
	f.Classifications = append(f.Classifications, fj.Classifications...)
	if fj.Transform != nil {
		for i := 0; i < 3; i++ {
			for j := 0; j < 4; j++ {
				f.Transform.M[i][j] = fj.Transform[i*4+j]
			}
		}
	}
	return f
}

// Stats summarizes a replay run
type Stats struct {
	Events  int // events delivered to the sink
	Skipped int // malformed lines tolerated and dropped
}

// Play reads a JSONL event stream and delivers each event to the sink,
// sleeping delay between events when delay is positive. Blank lines and
// lines starting with # are ignored; malformed lines are counted and
// skipped, since a noisy stream is expected rather than exceptional.
func Play(ctx context.Context, r io.Reader, sink Sink, delay time.Duration) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			stats.Skipped++
			continue
		}
		if !deliver(event, sink) {
			stats.Skipped++
			continue
		}
		stats.Events++

		if delay > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(delay):
			}
		} else if err := ctx.Err(); err != nil {
			return stats, err
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read stream: %w", err)
	}
	return stats, nil
}

// deliver routes one event to the sink; false means the event was unusable
func deliver(event Event, sink Sink) bool {
	switch event.Op {
	case "add":
		if event.Fragment == nil || event.Fragment.ID == "" {
			return false
		}
		sink.FragmentAdded(event.Fragment.ToFragment())
	case "update":
		if event.Fragment == nil || event.Fragment.ID == "" {
			return false
		}
		sink.FragmentUpdated(event.Fragment.ToFragment())
	case "remove":
		if event.ID == "" {
			return false
		}
		sink.FragmentRemoved(event.ID)
	case "error":
		sink.SessionError(event.Message)
	default:
		return false
	}
	return true
}
