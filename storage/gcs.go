package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Object describes an uploaded blob.
type Object struct {
	Name      string `json:"name"`
	URI       string `json:"gcs_uri"`
	PublicURL string `json:"public_url"`
}

// Store persists binary artefacts.
type Store interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (Object, error)
	Delete(ctx context.Context, name string) error
}

// GCS stores objects in a single Cloud Storage bucket.
type GCS struct {
	client *gcs.Client
	bucket string
}

// NewGCS opens a client with application default credentials.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New("storage: bucket name is required")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Close releases the client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// Upload writes data to name and returns its addresses.
func (g *GCS) Upload(ctx context.Context, name, contentType string, data []byte) (Object, error) {
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return Object{}, fmt.Errorf("write gs://%s/%s: %w", g.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("finalize gs://%s/%s: %w", g.bucket, name, err)
	}
	obj := Describe(g.bucket, name)
	slog.Info("uploaded object", "uri", obj.URI, "bytes", len(data))
	return obj, nil
}

// Delete removes name. A missing object is not an error.
func (g *GCS) Delete(ctx context.Context, name string) error {
	err := g.client.Bucket(g.bucket).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete gs://%s/%s: %w", g.bucket, name, err)
	}
	return nil
}

// Describe builds the gs:// and public addresses of an object.
func Describe(bucket, name string) Object {
	parts := strings.Split(name, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return Object{
		Name:      name,
		URI:       fmt.Sprintf("gs://%s/%s", bucket, name),
		PublicURL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, strings.Join(parts, "/")),
	}
}

// VoiceoverName returns a fresh object name for voiceover audio under prefix.
func VoiceoverName(prefix string) string {
	return ObjectName(prefix, "vo", ".mp3")
}

// ObjectName returns prefix/kind_<uuid>ext.
func ObjectName(prefix, kind, ext string) string {
	file := kind + "_" + uuid.NewString() + ext
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return file
	}
	return path.Join(prefix, file)
}
