package ingest

import (
	"errors"
	"fmt"
	"time"

	"minestat/logging"
	"minestat/table"

	"github.com/dgraph-io/ristretto"
)

var ErrUnknownSource = errors.New("unknown source")

// Dataset is what a source yields in one fetch.
type Dataset struct {
	Table     *table.Table
	Events    []Event
	FetchedAt time.Time
}

type Source interface {
	// ID identifies the source in cache keys.
	ID() string
	Fetch() (*Dataset, error)
}

// FileSource reads a data CSV and an optional events CSV from disk.
type FileSource struct {
	DataPath   string
	EventsPath string
	Options    *Options
}

func (s *FileSource) ID() string {
	return "file:" + s.DataPath + "|" + s.EventsPath
}

func (s *FileSource) Fetch() (*Dataset, error) {
	if s.DataPath == "" {
		return nil, fmt.Errorf("%w: no data path", ErrUnknownSource)
	}
	t, err := LoadTableFile(s.DataPath, s.Options)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.DataPath, err)
	}

	events := make([]Event, 0)
	if s.EventsPath != "" {
		events, err = LoadEventsFile(s.EventsPath)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.EventsPath, err)
		}
	}
	return &Dataset{Table: t, Events: events, FetchedAt: time.Now()}, nil
}

// Store caches datasets keyed by source ID and fetch time, the time being
// truncated to the store granularity. A later fetch time past the
// granularity reloads the source.
type Store struct {
	cache       *ristretto.Cache
	granularity time.Duration
}

func NewStore(maxEntries int64, granularity time.Duration) (*Store, error) {
	if maxEntries < 1 {
		maxEntries = 1
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,

		// Every dataset costs one entry.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache, granularity: granularity}, nil
}

func (store *Store) Key(id string, at time.Time) string {
	if store.granularity > 0 {
		at = at.Truncate(store.granularity)
	}
	return id + "@" + at.UTC().Format(time.RFC3339Nano)
}

func (store *Store) Get(src Source, at time.Time) (*Dataset, error) {
	if src == nil {
		return nil, ErrUnknownSource
	}
	key := store.Key(src.ID(), at)
	if value, found := store.cache.Get(key); found {
		logging.Log.WriteDebugf("dataset cache hit: %s", key)
		return value.(*Dataset), nil
	}

	dataset, err := src.Fetch()
	if err != nil {
		return nil, err
	}
	store.cache.Set(key, dataset, 1)
	store.cache.Wait()
	logging.Log.WriteDebugf("dataset cached: %s", key)
	return dataset, nil
}

func (store *Store) Invalidate(src Source, at time.Time) {
	store.cache.Del(store.Key(src.ID(), at))
	store.cache.Wait()
}

func (store *Store) Close() {
	store.cache.Close()
}
