package state

import (
	"context"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/securestore"

	"golang.org/x/sync/singleflight"
)

const (
	maxRecentSearches = 10
	minFilterLen      = 3
	searchLimit       = 20
	popularLimit      = 10
)

type SearchAPI interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchItem, error)
	PopularStores(ctx context.Context, limit int) ([]domain.Store, error)
}

type SearchResults struct {
	Query   string
	Items   []domain.SearchItem
	Loading bool
	Err     error
}

// Search owns the search box: debounced remote search, recent searches and
// the popular-stores suggestion list.
type Search struct {
	mu       sync.Mutex
	api      SearchAPI
	store    securestore.Store
	debounce *Debouncer

	gen      uint64
	cancel   context.CancelFunc
	results  SearchResults
	listener func(SearchResults)

	recentMu sync.Mutex // serializes recent-search writes
	recent   []domain.SearchItem

	sf            singleflight.Group
	popular       []domain.Store
	popularLoaded bool
}

func NewSearch(client SearchAPI, store securestore.Store, debounce time.Duration) *Search {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Search{api: client, store: store, debounce: NewDebouncer(debounce)}
}

// OnResults registers fn to receive every applied result set.
func (s *Search) OnResults(fn func(SearchResults)) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

func (s *Search) Results() SearchResults {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.results
	r.Items = append([]domain.SearchItem(nil), r.Items...)
	return r
}

// PerformSearch schedules a remote search for query after the debounce
// interval. A blank query clears the results at once. Any request that a
// newer query supersedes is cancelled and its response dropped.
func (s *Search) PerformSearch(query string) {
	q := strings.TrimSpace(query)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if q == "" {
		s.debounce.Cancel()
		s.results = SearchResults{}
		res, fn := s.results, s.listener
		s.mu.Unlock()
		if fn != nil {
			fn(res)
		}
		return
	}
	s.results = SearchResults{Query: q, Items: s.results.Items, Loading: true}
	// triggered under mu so the pending func always carries the newest gen
	s.debounce.Trigger(func() { s.run(gen, q) })
	s.mu.Unlock()
}

func (s *Search) run(gen uint64, q string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	items, err := s.api.Search(ctx, q, searchLimit)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		applog.Debug(nil, "search.response.stale", map[string]any{"q": q})
		return
	}
	s.cancel = nil
	s.results = SearchResults{Query: q, Items: items, Err: err}
	res, fn := s.results, s.listener
	s.mu.Unlock()

	if err != nil {
		applog.Error(nil, "search.fail", err, map[string]any{"q": q})
	}
	if fn != nil {
		fn(res)
	}
}

// Load restores the persisted recent searches.
func (s *Search) Load(ctx context.Context) error {
	var recent []domain.SearchItem
	if _, err := loadJSON(ctx, s.store, securestore.KeyRecentSearches, &recent); err != nil {
		return err
	}
	s.mu.Lock()
	s.recent = recent
	s.mu.Unlock()
	return nil
}

func (s *Search) RecentSearches() []domain.SearchItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SearchItem(nil), s.recent...)
}

// AddToRecentSearches moves item to the front, dropping any entry with the
// same id, and keeps at most ten.
func (s *Search) AddToRecentSearches(ctx context.Context, item domain.SearchItem) error {
	if item.ID == "" {
		return nil
	}
	return s.updateRecent(ctx, func(cur []domain.SearchItem) []domain.SearchItem {
		next := make([]domain.SearchItem, 0, maxRecentSearches)
		next = append(next, item)
		for _, it := range cur {
			if it.ID != item.ID && len(next) < maxRecentSearches {
				next = append(next, it)
			}
		}
		return next
	})
}

func (s *Search) RemoveRecentSearch(ctx context.Context, id string) error {
	return s.updateRecent(ctx, func(cur []domain.SearchItem) []domain.SearchItem {
		next := make([]domain.SearchItem, 0, len(cur))
		for _, it := range cur {
			if it.ID != id {
				next = append(next, it)
			}
		}
		return next
	})
}

func (s *Search) ClearRecentSearches(ctx context.Context) error {
	return s.updateRecent(ctx, func([]domain.SearchItem) []domain.SearchItem { return nil })
}

// updateRecent persists edit(current) and only then swaps it in.
func (s *Search) updateRecent(ctx context.Context, edit func([]domain.SearchItem) []domain.SearchItem) error {
	s.recentMu.Lock()
	defer s.recentMu.Unlock()

	s.mu.Lock()
	next := edit(s.recent)
	s.mu.Unlock()

	var err error
	if len(next) == 0 {
		err = s.store.Delete(ctx, securestore.KeyRecentSearches)
	} else {
		err = saveJSON(ctx, s.store, securestore.KeyRecentSearches, next)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.recent = next
	s.mu.Unlock()
	return nil
}

// LoadPopularStores fills the popular-stores cache once. Concurrent callers
// share a single request; after a successful load it is a no-op.
func (s *Search) LoadPopularStores(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.popularLoaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	_, err, _ := s.sf.Do("popular", func() (any, error) {
		s.mu.Lock()
		if s.popularLoaded {
			s.mu.Unlock()
			return nil, nil
		}
		s.mu.Unlock()

		stores, err := s.api.PopularStores(ctx, popularLimit)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.popular = stores
		s.popularLoaded = true
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

func (s *Search) PopularStores() []domain.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Store(nil), s.popular...)
}

// Suggestions lists recents then popular stores. Queries of three or more
// characters filter both by a case-insensitive name match; shorter ones
// return the full set.
func (s *Search) Suggestions(query string) []domain.SearchItem {
	s.mu.Lock()
	all := make([]domain.SearchItem, 0, len(s.recent)+len(s.popular))
	all = append(all, s.recent...)
	seen := make(map[string]bool, len(s.recent))
	for _, it := range s.recent {
		seen[it.ID] = true
	}
	for _, st := range s.popular {
		if !seen[st.ID] {
			all = append(all, storeItem(st))
		}
	}
	s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < minFilterLen {
		return all
	}
	out := all[:0]
	for _, it := range all {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

func storeItem(st domain.Store) domain.SearchItem {
	rating := st.Rating
	return domain.SearchItem{
		ID: st.ID, Kind: domain.SearchKindStore, Name: st.Name, Category: st.Category,
		ImageURL: st.ImageURL, Rating: &rating, StoreID: st.ID, StoreName: st.Name,
	}
}

// Close stops any pending search.
func (s *Search) Close() {
	s.debounce.Cancel()
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}
