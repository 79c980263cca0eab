package ingest

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"minestat/table"
	"minestat/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date,Mine A,Mine B,Randomizer Seed
2024-01-03,12,20,7
2024-01-01,10,"22",7
not a date,99,99,7
2024-01-02,NA,21.5,7
2024-01-04,"13,5",,7
`

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadTable(t *testing.T) {
	opts := DefaultOptions()
	opts.Exclude = []string{"Randomizer"}

	tab, err := LoadTable(strings.NewReader(sampleCSV), opts)
	require.NoError(t, err)

	assert.Equal(t, "Date", tab.Key())
	assert.Equal(t, []string{"Mine A", "Mine B"}, tab.Names())
	assert.Equal(t, []time.Time{day(1), day(2), day(3), day(4)}, tab.Index())

	a, ok := tab.Column("Mine A")
	require.True(t, ok)
	assert.Equal(t, 10.0, a.Values[0])
	assert.True(t, math.IsNaN(a.Values[1]))
	assert.Equal(t, 12.0, a.Values[2])
	assert.Equal(t, 13.5, a.Values[3])

	b, _ := tab.Column("Mine B")
	assert.Equal(t, 22.0, b.Values[0])
	assert.True(t, math.IsNaN(b.Values[3]))
}

func TestLoadTable_AddTotal(t *testing.T) {
	opts := DefaultOptions()
	opts.Exclude = []string{"Randomizer"}
	opts.AddTotal = true

	tab, err := LoadTable(strings.NewReader(sampleCSV), opts)
	require.NoError(t, err)

	total, ok := tab.Column(table.TotalName)
	require.True(t, ok)
	utils.AssertClose(t, 32.0, total.Values[0], 1e-12)
	utils.AssertClose(t, 21.5, total.Values[1], 1e-12)
	utils.AssertClose(t, 13.5, total.Values[3], 1e-12)
}

func TestLoadTable_Errors(t *testing.T) {
	_, err := LoadTable(strings.NewReader(""), nil)
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = LoadTable(strings.NewReader("Date,A\nnope,1\n"), nil)
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = LoadTable(strings.NewReader("Day,A\n2024-01-01,1\n"), nil)
	assert.True(t, errors.Is(err, ErrNoDateColumn))

	opts := DefaultOptions()
	opts.DateColumn = "Day"
	tab, err := LoadTable(strings.NewReader("Day,A\n2024-01-01,1\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, "Day", tab.Key())
}

func TestLoadTable_ShortRowsAndDelimiter(t *testing.T) {
	opts := DefaultOptions()
	opts.Delimiter = ';'

	tab, err := LoadTable(strings.NewReader("Date;A;B\n2024-01-01;1\n2024-01-02;2;3\n"), opts)
	require.NoError(t, err)

	b, _ := tab.Column("B")
	assert.True(t, math.IsNaN(b.Values[0]))
	assert.Equal(t, 3.0, b.Values[1])
}

const sampleEvents = `date,duration,factor,probability
2024-01-05,3,1.5,0.8

2024-02-10T08:30:00,1,0.4,1
2024-03-01,two,1.2,0.5
2024-03-02,2,1.2
2024-03-03,1,"0,7",0.5
`

func TestLoadEvents(t *testing.T) {
	events, err := LoadEvents(strings.NewReader(sampleEvents))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, Event{Date: day(5), Duration: 3, Factor: 1.5, Probability: 0.8}, events[0])
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), events[1].Date)
	assert.Equal(t, 0.7, events[2].Factor)

	events, err = LoadEvents(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, events)
}

type countingSource struct {
	id      string
	fetches int
	err     error
}

func (s *countingSource) ID() string { return s.id }

func (s *countingSource) Fetch() (*Dataset, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	tab, err := table.New(table.DefaultKey, []time.Time{day(1)}, table.NewSeries("A", []float64{1}))
	if err != nil {
		return nil, err
	}
	return &Dataset{Table: tab, FetchedAt: day(1)}, nil
}

func getStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(16, time.Hour)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestStore_CachesWithinGranularity(t *testing.T) {
	store := getStore(t)
	src := &countingSource{id: "mem"}
	at := time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC)

	first, err := store.Get(src, at)
	require.NoError(t, err)
	second, err := store.Get(src, at.Add(20*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 1, src.fetches)
	assert.Same(t, first, second)

	_, err = store.Get(src, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, src.fetches)
}

func TestStore_Invalidate(t *testing.T) {
	store := getStore(t)
	src := &countingSource{id: "mem"}
	at := day(2)

	_, err := store.Get(src, at)
	require.NoError(t, err)
	store.Invalidate(src, at)
	_, err = store.Get(src, at)
	require.NoError(t, err)

	assert.Equal(t, 2, src.fetches)
}

func TestStore_Errors(t *testing.T) {
	store := getStore(t)

	_, err := store.Get(nil, day(1))
	assert.True(t, errors.Is(err, ErrUnknownSource))

	boom := errors.New("boom")
	src := &countingSource{id: "bad", err: boom}
	_, err = store.Get(src, day(1))
	assert.True(t, errors.Is(err, boom))
	_, err = store.Get(src, day(1))
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 2, src.fetches)
}

func TestStore_Key(t *testing.T) {
	store := getStore(t)
	at := time.Date(2024, 1, 1, 10, 59, 0, 0, time.UTC)

	assert.Equal(t, "x@2024-01-01T10:00:00Z", store.Key("x", at))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")
	events := filepath.Join(dir, "events.csv")
	require.NoError(t, os.WriteFile(data, []byte(sampleCSV), 0o600))
	require.NoError(t, os.WriteFile(events, []byte(sampleEvents), 0o600))

	src := &FileSource{DataPath: data, EventsPath: events, Options: &Options{
		DateColumn: "Date",
		Exclude:    []string{"Randomizer"},
		AddTotal:   true,
	}}
	ds, err := getStore(t).Get(src, time.Now())
	require.NoError(t, err)

	assert.Equal(t, []string{"Mine A", "Mine B", table.TotalName}, ds.Table.Names())
	assert.Len(t, ds.Events, 3)

	_, err = (&FileSource{}).Fetch()
	assert.True(t, errors.Is(err, ErrUnknownSource))

	_, err = (&FileSource{DataPath: filepath.Join(dir, "missing.csv")}).Fetch()
	assert.Error(t, err)
}

func TestLoadTable_NonFiniteIsMissing(t *testing.T) {
	tab, err := LoadTable(strings.NewReader("Date,A\n2024-01-01,inf\n2024-01-02,-Infinity\n2024-01-03,1e400\n2024-01-04,2\n"), nil)
	require.NoError(t, err)

	a, _ := tab.Column("A")
	for i := 0; i < 3; i++ {
		assert.True(t, math.IsNaN(a.Values[i]), "row %d", i)
	}
	assert.Equal(t, 2.0, a.Values[3])
}
