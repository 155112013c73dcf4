// Command inkserve hosts an interactive ink canvas over a websocket.
//
// Clients send pointer events to /ink (see package pointer). Every finished
// stroke is exported: to a local directory with -export-dir, and to an S3
// bucket when S3_BUCKET is set. Bucket credentials come from S3_ACCESS_KEY,
// S3_SECRET_KEY, S3_ENDPOINT and S3_REGION.
package main

import (
	"context"
	"errors"
	"flag"
	"image/color"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/export"
	"github.com/gogpu/ink/pointer"
	"github.com/gogpu/ink/session"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "listen address")
		configPath = flag.String("config", "", "brush model TOML file")
		width      = flag.Int("width", 1024, "canvas width")
		height     = flag.Int("height", 1024, "canvas height")
		clientW    = flag.Float64("client-width", 512, "on-screen canvas width")
		clientH    = flag.Float64("client-height", 512, "on-screen canvas height")
		brushPath  = flag.String("brush", "", "brush sprite image, reloaded on change")
		exportDir  = flag.String("export-dir", "", "directory receiving exported ink")
		anyOrigin  = flag.Bool("any-origin", false, "accept websocket clients from any origin")
	)
	flag.Parse()

	ink.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg := ink.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = ink.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	e, err := ink.NewEngine(ink.NewCanvas(*width, *height),
		ink.WithConfig(cfg),
		ink.WithBrush(ink.SoftBrush(64, color.Black)),
	)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	s, err := session.New(e, session.WithViewport(session.Viewport{ClientWidth: *clientW, ClientHeight: *clientH}))
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *brushPath != "" {
		go func() {
			if err := s.WatchBrush(ctx, *brushPath); err != nil {
				log.Printf("Brush watcher stopped: %v", err)
			}
		}()
	}

	exporters := buildExporters(*exportDir)
	if len(exporters) > 0 {
		s.OnStrokeEnd(func() {
			snap := s.Snapshot()
			go exportAll(ctx, exporters, snap)
		})
	}

	var opts []pointer.HandlerOption
	if *anyOrigin {
		opts = append(opts, pointer.WithCheckOrigin(func(*http.Request) bool { return true }))
	}
	mux := http.NewServeMux()
	mux.Handle("/ink", pointer.NewHandler(s, opts...))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Serving ink canvas on %s (%dx%d)\n", *addr, *width, *height)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

func buildExporters(dir string) []export.Exporter {
	var out []export.Exporter
	if dir != "" {
		out = append(out, &export.FileExporter{Dir: dir})
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		s3exp, err := export.NewS3Exporter(export.S3Config{
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    envOr("S3_REGION", "us-east-1"),
			Bucket:    bucket,
			Prefix:    os.Getenv("S3_PREFIX"),
		})
		if err != nil {
			log.Fatalf("Failed to configure S3: %v", err)
		}
		out = append(out, s3exp)
	}
	return out
}

func exportAll(ctx context.Context, exporters []export.Exporter, snap *session.Snapshot) {
	for _, x := range exporters {
		where, err := x.Export(ctx, snap)
		switch {
		case errors.Is(err, export.ErrNothingToExport):
			return
		case err != nil:
			log.Printf("Export failed: %v", err)
		default:
			log.Printf("Exported %s", where)
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
