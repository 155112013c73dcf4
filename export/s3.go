package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/session"
)

// DefaultUploadTimeout bounds a single object upload.
const DefaultUploadTimeout = 10 * time.Second

// S3Config describes an S3-compatible bucket.
type S3Config struct {
	AccessKey string
	SecretKey string
	Endpoint  string
	Region    string
	Bucket    string
	// Prefix is prepended to every object key.
	Prefix string
	// ACL is applied to uploaded objects when set, e.g. "public-read".
	ACL string
}

// S3Exporter uploads artifacts to an S3-compatible bucket.
type S3Exporter struct {
	client  s3iface.S3API
	cfg     S3Config
	Timeout time.Duration
	Padding float64
}

var _ Exporter = (*S3Exporter)(nil)

// NewS3Exporter creates an exporter with static credentials and path-style
// addressing, which S3-compatible stores such as MinIO expect.
func NewS3Exporter(cfg S3Config) (*S3Exporter, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("export: s3 bucket is required")
	}
	awsCfg := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	sess, err := awssession.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("export: create s3 session: %w", err)
	}
	return NewS3ExporterWithClient(s3.New(sess), cfg), nil
}

// NewS3ExporterWithClient creates an exporter around an existing client.
func NewS3ExporterWithClient(client s3iface.S3API, cfg S3Config) *S3Exporter {
	return &S3Exporter{client: client, cfg: cfg, Timeout: DefaultUploadTimeout}
}

// Export implements Exporter. It returns the key of the PNG object.
func (e *S3Exporter) Export(ctx context.Context, snap *session.Snapshot) (string, error) {
	art, err := Encode(snap, padding(e.Padding))
	if err != nil {
		return "", err
	}
	key := path.Join(e.cfg.Prefix, Name(snap))
	if err := e.upload(ctx, key+".png", "image/png", art.PNG); err != nil {
		return "", err
	}
	if err := e.upload(ctx, key+".json", "application/json", art.JSON); err != nil {
		return "", err
	}
	return key + ".png", nil
}

func (e *S3Exporter) upload(ctx context.Context, key, contentType string, data []byte) error {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	in := &s3.PutObjectInput{
		Bucket:        aws.String(e.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if e.cfg.ACL != "" {
		in.ACL = aws.String(e.cfg.ACL)
	}
	if _, err := e.client.PutObjectWithContext(ctx, in); err != nil {
		return fmt.Errorf("export: upload %s: %w", key, err)
	}
	ink.Logger().Info("export: uploaded", "bucket", e.cfg.Bucket, "key", key, "bytes", len(data))
	return nil
}
