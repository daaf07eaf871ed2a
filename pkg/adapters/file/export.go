// Package file provides filesystem adapters: the durable snapshot
// exporter behind the SAVE_ACK effect, and a directory-backed
// SnapshotStore for replaying exports through LOAD_REQ.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/ports"
)

// Exporter writes acknowledged snapshots to durable files named
// <prefix>_<epoch-millis>.json, pretty-printed for human inspection.
type Exporter struct {
	Dir    string
	Prefix string

	// now is swappable for deterministic filenames in tests.
	now func() time.Time
}

// ExporterOption configures the Exporter.
type ExporterOption func(*Exporter)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) {
		e.now = now
	}
}

// NewExporter creates an exporter rooted at dir. An empty prefix
// defaults to "snapshot".
func NewExporter(dir, prefix string, opts ...ExporterOption) *Exporter {
	if prefix == "" {
		prefix = "snapshot"
	}
	e := &Exporter{
		Dir:    dir,
		Prefix: prefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes the serialized snapshot to a new file and returns its path.
func (e *Exporter) Export(blob []byte) (string, error) {
	if !json.Valid(blob) {
		return "", fmt.Errorf("%w: export payload is not valid JSON", domain.ErrDecode)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, blob, "", "  "); err != nil {
		return "", fmt.Errorf("failed to format snapshot: %w", err)
	}
	pretty.WriteByte('\n')

	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure export directory: %w", err)
	}

	name := e.Prefix + "_" + strconv.FormatInt(e.now().UnixMilli(), 10) + ".json"
	dest := filepath.Join(e.Dir, name)
	if err := writeAtomic(e.Dir, dest, pretty.Bytes()); err != nil {
		return "", err
	}
	return dest, nil
}

// Effect adapts the exporter to the SAVE_ACK effect route: the ack's
// payload is the serialized authoritative snapshot.
func (e *Exporter) Effect() ports.EffectFunc {
	return func(ctx context.Context, env domain.Envelope) error {
		if len(env.Raw) == 0 {
			return fmt.Errorf("%s carried no snapshot payload", env.Kind)
		}
		_, err := e.Export(env.Raw)
		return err
	}
}

// writeAtomic writes data via a temp file, fsync and rename, so a crash
// never leaves a partial export behind.
func writeAtomic(dir, dest string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}
