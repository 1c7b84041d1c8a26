// Package cache stores pipeline results between runs.
//
// The pipeline caches two things: the drawing computed for a history and
// canvas, and the rendered artifact for a drawing and output format. Both
// are addressed by content hash, so an edited history file never hits a
// stale entry.
//
// Three backends implement [Cache]:
//   - [FileCache] under the user's cache directory, for the CLI
//   - [RedisCache], for the HTTP server and shared setups
//   - [NullCache], when caching is disabled
//
// Key construction lives in [Keyer] so that callers sharing one backend can
// partition it with [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry type. Entries are content addressed, so
// the TTLs only bound disk and memory use.
const (
	TTLHistory  = 24 * time.Hour
	TTLDrawing  = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HistoryKey addresses records loaded from a remote source such as a
	// MongoDB collection.
	HistoryKey(source string) string

	// DrawingKey addresses a drawing computed from a history.
	DrawingKey(historyHash string, opts DrawingKeyOpts) string

	// ArtifactKey addresses one rendered output of a drawing.
	ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string
}

// DrawingKeyOpts are the inputs besides the history that shape a drawing.
type DrawingKeyOpts struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Inset          float64 `json:"inset"`
	SkipSeparators bool    `json:"skip_separators,omitempty"`
	SkipLineage    bool    `json:"skip_lineage,omitempty"`
}

// ArtifactKeyOpts are the inputs besides the drawing that shape an artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	ThemeHash string  `json:"theme,omitempty"`
	ShowNodes bool    `json:"show_nodes,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HistoryKey(source string) string {
	return hashKey("history", source)
}

func (DefaultKeyer) DrawingKey(historyHash string, opts DrawingKeyOpts) string {
	return hashKey("drawing", historyHash, opts)
}

func (DefaultKeyer) ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", drawingHash, opts)
}
