package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/session"
)

// FileExporter writes artifacts into a local directory.
type FileExporter struct {
	// Dir is created on first export if missing.
	Dir string
	// Padding is the crop margin; zero means DefaultPadding.
	Padding float64
}

var _ Exporter = (*FileExporter)(nil)

// Export implements Exporter. It returns the path of the PNG file.
func (f *FileExporter) Export(ctx context.Context, snap *session.Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	art, err := Encode(snap, padding(f.Padding))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	base := filepath.Join(f.Dir, Name(snap))
	if err := os.WriteFile(base+".png", art.PNG, 0o644); err != nil { //nolint:gosec // exported images are public
		return "", fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(base+".json", art.JSON, 0o644); err != nil { //nolint:gosec // exported images are public
		return "", fmt.Errorf("export: %w", err)
	}
	ink.Logger().Info("export: wrote ink", "path", base+".png", "bytes", len(art.PNG))
	return base + ".png", nil
}

func padding(p float64) float64 {
	if p == 0 {
		return DefaultPadding
	}
	return p
}
