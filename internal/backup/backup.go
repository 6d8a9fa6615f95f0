// Package backup exports the whole storage namespace as an encrypted
// archive and optionally keeps archives in an S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const archiveVersion = 1

var ErrNotConfigured = errors.New("backup not configured: S3 bucket or credentials missing")

// Namespace is the storage a backup reads from and restores into.
type Namespace interface {
	Snapshot() (map[string]string, error)
	Restore(pairs map[string]string) error
}

type archive struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Keys      map[string]string `json:"keys"`
}

// Export writes an encrypted archive of ns to w.
func Export(ns Namespace, w io.Writer, passphrase string) error {
	pairs, err := ns.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	plain, err := json.Marshal(archive{Version: archiveVersion, CreatedAt: time.Now().UTC(), Keys: pairs})
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}

	sealed, err := Seal(plain, passphrase)
	if err != nil {
		return fmt.Errorf("encrypt archive: %w", err)
	}

	if _, err := w.Write(sealed); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// Import decrypts an archive from r, checks it and replaces ns with it.
// Nothing is written unless every stored value is well-formed JSON.
func Import(ns Namespace, r io.Reader, passphrase string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	plain, err := Open(data, passphrase)
	if err != nil {
		return fmt.Errorf("decrypt archive: %w", err)
	}

	var a archive
	if err := json.Unmarshal(plain, &a); err != nil {
		return fmt.Errorf("decode archive: %w", err)
	}
	if a.Version != archiveVersion {
		return fmt.Errorf("unsupported archive version %d", a.Version)
	}
	for key, value := range a.Keys {
		if !json.Valid([]byte(value)) {
			return fmt.Errorf("archive key %q holds malformed data", key)
		}
	}

	if err := ns.Restore(a.Keys); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Manager pushes archives to and pulls them from a bucket.
type Manager struct {
	cfg    S3Config
	ns     Namespace
	client s3Client
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(cfg S3Config, ns Namespace, logger *slog.Logger) *Manager {
	m := &Manager{cfg: cfg, ns: ns, logger: logger, now: time.Now}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		m.client = newS3Client(cfg)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func (m *Manager) Enabled() bool {
	return m.client != nil
}

// Push uploads a fresh archive and returns its object key.
func (m *Manager) Push(ctx context.Context, passphrase string) (string, error) {
	if !m.Enabled() {
		return "", ErrNotConfigured
	}

	var buf bytes.Buffer
	if err := Export(m.ns, &buf, passphrase); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/backup-%s.enc", m.cfg.Prefix, m.now().UTC().Format("2006-01-02T150405Z"))
	size := int64(buf.Len())
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	m.logger.Info("backup uploaded", "key", key, "bytes", size)
	return key, nil
}

// Pull downloads the archive stored under key and restores it.
func (m *Manager) Pull(ctx context.Context, key, passphrase string) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	if err := Import(m.ns, result.Body, passphrase); err != nil {
		return err
	}
	m.logger.Info("backup restored", "key", key)
	return nil
}
