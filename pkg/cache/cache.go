package cache

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/walteh/gitlab-ls/pkg/candidate"
	"gitlab.com/tozd/go/errors"
)

// Cache holds the candidates loaded for each fetchable kind. Entries are
// written at most once and are read-only afterwards; the owner is expected
// to serialize the writes.
type Cache struct {
	sets map[candidate.Kind]candidate.Set
}

func New() *Cache {
	return &Cache{
		sets: map[candidate.Kind]candidate.Set{},
	}
}

// Store records the set for kind. It returns false and leaves the cache
// untouched if kind is not fetchable or was already stored.
func (me *Cache) Store(kind candidate.Kind, set candidate.Set) bool {
	if !kind.IsFetchable() {
		return false
	}
	if _, ok := me.sets[kind]; ok {
		return false
	}
	if set == nil {
		set = candidate.NewSet()
	}
	me.sets[kind] = set
	return true
}

// Get returns the candidates for kind. Quick actions are always available;
// a kind that was never stored yields an empty set.
func (me *Cache) Get(kind candidate.Kind) candidate.Set {
	if kind == candidate.QuickAction {
		return candidate.QuickActions()
	}
	if set, ok := me.sets[kind]; ok {
		return set
	}
	return candidate.NewSet()
}

// Populated reports whether kind has been stored.
func (me *Cache) Populated(kind candidate.Kind) bool {
	_, ok := me.sets[kind]
	return ok
}

// Fetcher loads the candidates of one kind for a project.
type Fetcher interface {
	Fetch(ctx context.Context, project string, kind candidate.Kind) (candidate.Set, error)
}

type result struct {
	kind candidate.Kind
	set  candidate.Set
	err  error
}

// FetchAll runs one fetch per kind concurrently and waits for all of them.
// Every successful kind is present in the returned map; the failures are
// joined into the returned error.
func FetchAll(ctx context.Context, fetcher Fetcher, project string, kinds ...candidate.Kind) (map[candidate.Kind]candidate.Set, error) {
	results := make([]result, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind candidate.Kind) {
			defer wg.Done()
			set, err := fetcher.Fetch(ctx, project, kind)
			results[i] = result{kind: kind, set: set, err: err}
		}(i, kind)
	}
	wg.Wait()

	var merr *multierror.Error
	out := make(map[candidate.Kind]candidate.Set, len(kinds))
	for _, r := range results {
		if r.err != nil {
			zerolog.Ctx(ctx).Error().Err(r.err).Str("kind", r.kind.String()).Msg("failed to fetch resource")
			merr = multierror.Append(merr, errors.Errorf("fetching %s: %w", r.kind, r.err))
			continue
		}
		out[r.kind] = r.set
	}

	return out, merr.ErrorOrNil()
}

// Populate fetches every fetchable kind and stores the successful ones. The
// returned error describes the kinds that stay empty; it is never fatal.
func (me *Cache) Populate(ctx context.Context, fetcher Fetcher, project string) error {
	sets, err := FetchAll(ctx, fetcher, project, candidate.Fetchable...)
	for kind, set := range sets {
		me.Store(kind, set)
	}
	return err
}
