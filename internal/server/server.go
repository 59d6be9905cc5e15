// Package server exposes a pull-based, read-only HTTP projection of the
// scanning engine: the live area reading and the session state. The engine
// stays UI-agnostic; presentation layers poll these endpoints.
package server

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/philipparndt/meshscan/pkg/scan"
)

// Server wraps a fiber app serving engine projections
type Server struct {
	app    *fiber.App
	engine *scan.Engine
}

// New creates the HTTP projection for the given engine
func New(engine *scan.Engine) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "meshscan",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
	}))

	s := &Server{app: app, engine: engine}

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	app.Get("/api/reading", s.getReading)
	app.Get("/api/session", s.getSession)

	return s
}

// App returns the underlying fiber app, used by tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the given address and blocks
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

type readingResponse struct {
	Area     float64 `json:"area"`
	Sequence uint64  `json:"sequence"`
	Frozen   bool    `json:"frozen"`
}

type areaResponse struct {
	ID         string       `json:"id"`
	Label      string       `json:"label"`
	Area       float64      `json:"area"`
	Boundary   [][2]float64 `json:"boundary"`
	CapturedAt time.Time    `json:"capturedAt"`
}

type sessionResponse struct {
	State     string         `json:"state"`
	TotalArea float64        `json:"totalArea"`
	Count     int            `json:"count"`
	Areas     []areaResponse `json:"areas"`
}

func (s *Server) getReading(c fiber.Ctx) error {
	reading := s.engine.Reading()
	return c.JSON(readingResponse{
		Area:     reading.Area,
		Sequence: reading.Sequence,
		Frozen:   s.engine.Frozen(),
	})
}

func (s *Server) getSession(c fiber.Ctx) error {
	snap := s.engine.Snapshot()

	resp := sessionResponse{
		State:     snap.State.String(),
		TotalArea: snap.TotalArea,
		Count:     snap.Count,
		Areas:     make([]areaResponse, 0, len(snap.Areas)),
	}
	for _, area := range snap.Areas {
		boundary := make([][2]float64, len(area.Boundary))
		for i, p := range area.Boundary {
			boundary[i] = [2]float64{p.X, p.Y}
		}
		resp.Areas = append(resp.Areas, areaResponse{
			ID:         area.ID,
			Label:      area.Label,
			Area:       area.Area,
			Boundary:   boundary,
			CapturedAt: area.CapturedAt,
		})
	}
	return c.JSON(resp)
}
