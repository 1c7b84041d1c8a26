package pipeline

import (
	"bytes"
	"context"
	"strings"

	"github.com/matzehuels/genealogy/pkg/cache"
	"github.com/matzehuels/genealogy/pkg/history"
	"github.com/matzehuels/genealogy/pkg/history/mongostore"
)

// Load reads the history named by opts without caching.
func Load(ctx context.Context, opts Options) (*history.Store, error) {
	switch {
	case opts.Mongo != nil:
		return mongostore.Load(ctx, *opts.Mongo)
	case opts.History != "":
		format := opts.HistoryFormat
		if format == "" {
			format = sniffFormat(opts.History)
		}
		return history.Read(strings.NewReader(opts.History), format)
	default:
		return history.Import(opts.Source, opts.HistoryFormat)
	}
}

// sniffFormat guesses the format of inline history text.
func sniffFormat(s string) string {
	t := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(t, "{"):
		return history.FormatJSON
	case strings.HasPrefix(t, "births:"), strings.HasPrefix(t, "---"):
		return history.FormatYAML
	}
	return history.FormatText
}

// HashHistory returns the content hash of s, independent of record order
// and input format.
func HashHistory(s *history.Store) string {
	var buf bytes.Buffer
	_ = history.WriteText(s, &buf)
	return cache.Hash(buf.Bytes())
}

func encodeHistory(s *history.Store) ([]byte, error) {
	var buf bytes.Buffer
	if err := history.WriteText(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeHistory(data []byte) (*history.Store, error) {
	return history.ReadText(bytes.NewReader(data))
}
