// Package sent tracks which notice links have already been delivered.
package sent

import (
	"context"
	"fmt"
	"log/slog"

	"NoticeBot/internal/ports"
)

// MaxEntries bounds the persisted history; the oldest appends are evicted first.
const MaxEntries = 500

// Registry is the in-memory view of delivered links for one run.
type Registry struct {
	links []string
	index map[string]struct{}
}

// Empty returns a registry with no history, as used by manual runs.
func Empty() *Registry {
	return New(nil)
}

// New builds a registry over an existing ordered history.
func New(links []string) *Registry {
	r := &Registry{
		links: append([]string(nil), links...),
		index: make(map[string]struct{}, len(links)),
	}
	for _, l := range links {
		r.index[l] = struct{}{}
	}
	return r
}

// Load reads history from the store. Missing or corrupt state is treated as no
// history and logged, never returned as an error.
func Load(ctx context.Context, store ports.SentStore, log *slog.Logger) *Registry {
	if store == nil {
		return Empty()
	}
	links, err := store.Read(ctx)
	if err != nil {
		if log != nil {
			log.Warn("sent history unreadable, starting empty", "error", err)
		}
		return Empty()
	}
	return New(links)
}

// Contains reports whether link was delivered by an earlier run.
func (r *Registry) Contains(link string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[link]
	return ok
}

// Links returns a copy of the ordered history.
func (r *Registry) Links() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.links...)
}

// Len returns the number of remembered links.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.links)
}

// Commit appends newlySent to the history, trims it to MaxEntries and persists it.
// Callers invoke it only after the digest has been delivered.
func (r *Registry) Commit(ctx context.Context, store ports.SentStore, newlySent []string) ([]string, error) {
	merged := Merge(r.Links(), newlySent)
	if err := store.Write(ctx, merged); err != nil {
		return nil, fmt.Errorf("persist sent history: %w", err)
	}

	r.links = merged
	r.index = make(map[string]struct{}, len(merged))
	for _, l := range merged {
		r.index[l] = struct{}{}
	}
	return merged, nil
}

// Merge concatenates previous and newlySent and keeps the last MaxEntries links.
func Merge(previous, newlySent []string) []string {
	merged := make([]string, 0, len(previous)+len(newlySent))
	merged = append(merged, previous...)
	merged = append(merged, newlySent...)
	if over := len(merged) - MaxEntries; over > 0 {
		merged = merged[over:]
	}
	return append([]string(nil), merged...)
}
