package corpus

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"personas/pkg/flight"
)

type request struct {
	location string
	limit    int
}

// Loader opens corpora and keeps them for ttl, so repeated generation requests do not
// re-read a large dataset. Concurrent loads of the same corpus share one read.
type Loader struct {
	client *http.Client
	cache  *flight.Cache[request, []Entry]
}

func NewLoader(client *http.Client, ttl time.Duration) *Loader {
	l := &Loader{client: client}
	l.cache = flight.NewCache(ttl, func(ctx context.Context, r request) ([]Entry, error) {
		start := time.Now()
		entries, err := Open(ctx, l.client, r.location, r.limit)
		if err != nil {
			return nil, err
		}
		log.Info("loaded reference corpus", "source", r.location, "entries", len(entries), "took", time.Since(start).Round(time.Millisecond))
		return entries, nil
	})
	return l
}

// Load returns the cached corpus at location. The slice is shared; do not modify it.
func (l *Loader) Load(ctx context.Context, location string, limit int) ([]Entry, error) {
	return l.cache.Get(ctx, request{location: location, limit: limit})
}

// Source binds the loader to one location.
func (l *Loader) Source(location string, limit int) Source {
	return SourceFunc(func(ctx context.Context) ([]Entry, error) {
		return l.Load(ctx, location, limit)
	})
}
