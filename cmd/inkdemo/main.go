// Command inkdemo draws a few synthetic calligraphy strokes and exports them.
package main

import (
	"context"
	"flag"
	"image/color"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/export"
	"github.com/gogpu/ink/session"
)

// stroke is a curve drawn from p0 to p1 with Hermite tangents v0 and v1.
type stroke struct {
	p0, p1, v0, v1 ink.Point
	steps          int
	pressure       bool
}

func main() {
	var (
		configPath = flag.String("config", "", "brush model TOML file")
		width      = flag.Int("width", 800, "canvas width")
		height     = flag.Int("height", 600, "canvas height")
		output     = flag.String("output", ".", "output directory")
		brushPath  = flag.String("brush", "", "brush sprite image (default soft round brush)")
		verbose    = flag.Bool("v", false, "log engine diagnostics")
	)
	flag.Parse()

	if *verbose {
		ink.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := ink.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = ink.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	brush := ink.SoftBrush(64, color.Black)
	if *brushPath != "" {
		var err error
		if brush, err = ink.LoadBrush(*brushPath); err != nil {
			log.Fatalf("Failed to load brush: %v", err)
		}
	}

	e, err := ink.NewEngine(ink.NewCanvas(*width, *height), ink.WithConfig(cfg), ink.WithBrush(brush))
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	clock := &stepClock{now: time.Now()}
	s, err := session.New(e, session.WithClock(clock.Now))
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	w, h := float64(*width), float64(*height)
	strokes := []stroke{
		// A slow, heavy downstroke.
		{p0: ink.Pt(w*0.2, h*0.15), p1: ink.Pt(w*0.25, h*0.85), v0: ink.Pt(80, 0), v1: ink.Pt(-60, 0), steps: 90},
		// A fast horizontal flick that lifts off while accelerating.
		{p0: ink.Pt(w*0.35, h*0.5), p1: ink.Pt(w*0.75, h*0.45), v0: ink.Pt(20, 0), v1: ink.Pt(900, -60), steps: 30},
		// A pressure stroke fading out.
		{p0: ink.Pt(w*0.6, h*0.2), p1: ink.Pt(w*0.8, h*0.8), v0: ink.Pt(200, 100), v1: ink.Pt(0, 200), steps: 60, pressure: true},
	}
	for _, st := range strokes {
		if err := draw(s, clock, st); err != nil {
			log.Fatalf("Failed to draw: %v", err)
		}
	}

	path, err := (&export.FileExporter{Dir: *output}).Export(context.Background(), s.Snapshot())
	if err != nil {
		log.Fatalf("Failed to export: %v", err)
	}

	st := e.Stats()
	log.Printf("Ink saved to %s (%dx%d, %d/%d stamps)\n", path, *width, *height, st.Drawn, st.Attempts)
}

func draw(s *session.Session, clock *stepClock, st stroke) error {
	if err := s.BeginStroke(); err != nil {
		return err
	}
	for i := 0; i <= st.steps; i++ {
		t := float64(i) / float64(st.steps)
		p := ink.HermitePoint(st.p0, st.p1, st.v0, st.v1, t)
		pressure := ink.NoPressure
		if st.pressure {
			pressure = ink.PressureOf(math.Sin(math.Pi * (0.1 + 0.8*t)))
		}
		clock.Advance(16 * time.Millisecond)
		if err := s.AddPosition(p.X, p.Y, pressure); err != nil {
			return err
		}
	}
	return s.EndStroke()
}

// stepClock is a clock advanced explicitly, one frame per sample.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
