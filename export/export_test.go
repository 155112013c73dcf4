package export

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/session"
)

func newSnapshot(t *testing.T, draw bool) *session.Snapshot {
	t.Helper()
	cfg := ink.DefaultConfig()
	cfg.SkipProbability = 0
	cfg.JitterAmplitude = 0
	e, err := ink.NewEngine(ink.NewCanvas(300, 200),
		ink.WithConfig(cfg),
		ink.WithBrush(ink.SoftBrush(16, color.Black)),
		ink.WithRand(rand.New(rand.NewPCG(9, 9))),
	)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s, err := session.New(e, session.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	if draw {
		_ = s.AddPosition(100, 100, ink.NoPressure)
		_ = s.AddPosition(150, 110, ink.NoPressure)
		_ = s.EndStroke()
	}
	return s.Snapshot()
}

func TestEncode(t *testing.T) {
	snap := newSnapshot(t, true)
	art, err := Encode(snap, 4)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(art.PNG))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	want := snap.Bounds.Inflate(4).Rect(snap.Flattened.Rect)
	if img.Bounds().Dx() != want.Dx() || img.Bounds().Dy() != want.Dy() {
		t.Errorf("cropped size = %v, want %dx%d", img.Bounds(), want.Dx(), want.Dy())
	}

	h, err := session.ParseHistory(art.JSON)
	if err != nil {
		t.Fatalf("ParseHistory() error = %v", err)
	}
	if len(h) != 1 || len(h[0].Points) != 2 {
		t.Errorf("exported history = %+v, want one stroke of two points", h)
	}
}

func TestEncodeEmpty(t *testing.T) {
	if _, err := Encode(newSnapshot(t, false), 4); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Encode(empty) error = %v, want ErrNothingToExport", err)
	}
	if _, err := Encode(nil, 4); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Encode(nil) error = %v, want ErrNothingToExport", err)
	}
}

func TestName(t *testing.T) {
	snap := newSnapshot(t, false)
	if got, want := Name(snap), "ink-20240506T070809.000Z"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestFileExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	fe := &FileExporter{Dir: dir}

	got, err := fe.Export(context.Background(), newSnapshot(t, true))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if filepath.Dir(got) != dir || !strings.HasSuffix(got, ".png") {
		t.Errorf("Export() = %q, want a png in %s", got, dir)
	}
	for _, p := range []string{got, strings.TrimSuffix(got, ".png") + ".json"} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("artifact %s: %v", p, err)
		}
	}
}

func TestFileExporterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fe := &FileExporter{Dir: t.TempDir()}
	if _, err := fe.Export(ctx, newSnapshot(t, true)); !errors.Is(err, context.Canceled) {
		t.Errorf("Export() error = %v, want context.Canceled", err)
	}
}

type fakeS3 struct {
	s3iface.S3API

	mu      sync.Mutex
	objects map[string]*s3.PutObjectInput
	bodies  map[string][]byte
	err     error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("upload without deadline")
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(in.Body); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string]*s3.PutObjectInput)
		f.bodies = make(map[string][]byte)
	}
	f.objects[aws.StringValue(in.Key)] = in
	f.bodies[aws.StringValue(in.Key)] = buf.Bytes()
	return &s3.PutObjectOutput{}, nil
}

func TestS3Exporter(t *testing.T) {
	client := &fakeS3{}
	e := NewS3ExporterWithClient(client, S3Config{Bucket: "ink", Prefix: "strokes", ACL: "public-read"})

	key, err := e.Export(context.Background(), newSnapshot(t, true))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if key != "strokes/ink-20240506T070809.000Z.png" {
		t.Errorf("Export() key = %q", key)
	}

	pngIn, ok := client.objects[key]
	if !ok {
		t.Fatalf("png object %q not uploaded", key)
	}
	if aws.StringValue(pngIn.Bucket) != "ink" || aws.StringValue(pngIn.ContentType) != "image/png" {
		t.Errorf("png upload = bucket %q type %q", aws.StringValue(pngIn.Bucket), aws.StringValue(pngIn.ContentType))
	}
	if aws.StringValue(pngIn.ACL) != "public-read" {
		t.Errorf("ACL = %q, want public-read", aws.StringValue(pngIn.ACL))
	}
	if got := aws.Int64Value(pngIn.ContentLength); got != int64(len(client.bodies[key])) {
		t.Errorf("ContentLength = %d, body is %d bytes", got, len(client.bodies[key]))
	}

	jsonKey := strings.TrimSuffix(key, ".png") + ".json"
	if in, ok := client.objects[jsonKey]; !ok || aws.StringValue(in.ContentType) != "application/json" {
		t.Errorf("history object %q missing or mistyped", jsonKey)
	}
}

func TestS3ExporterUploadError(t *testing.T) {
	boom := errors.New("boom")
	e := NewS3ExporterWithClient(&fakeS3{err: boom}, S3Config{Bucket: "ink"})
	if _, err := e.Export(context.Background(), newSnapshot(t, true)); !errors.Is(err, boom) {
		t.Errorf("Export() error = %v, want wrapped upload error", err)
	}
}

func TestNewS3ExporterRequiresBucket(t *testing.T) {
	if _, err := NewS3Exporter(S3Config{Region: "us-east-1"}); err == nil {
		t.Error("NewS3Exporter() without bucket error = nil")
	}
	e, err := NewS3Exporter(S3Config{Bucket: "ink", Region: "us-east-1", Endpoint: "http://127.0.0.1:9000"})
	if err != nil {
		t.Fatalf("NewS3Exporter() error = %v", err)
	}
	if e.Timeout != DefaultUploadTimeout {
		t.Errorf("Timeout = %v, want %v", e.Timeout, DefaultUploadTimeout)
	}
}
