// Package ingest loads tables and events from CSV and keeps fetched
// datasets in an explicit keyed cache.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"minestat/logging"
	"minestat/table"
)

var (
	ErrNoData       = errors.New("no valid data found")
	ErrNoDateColumn = errors.New("date column not found")
)

// Options controls how a table is read from CSV.
type Options struct {
	DateColumn string   // Column name of the ordering key (default: "Date")
	DateFormat string   // Preferred date layout (default: "2006-01-02")
	Exclude    []string // Drop columns whose name contains any of these
	AddTotal   bool     // Append the Total aggregate
	Delimiter  rune     // Field delimiter (default: ',')
}

func DefaultOptions() *Options {
	return &Options{
		DateColumn: table.DefaultKey,
		DateFormat: "2006-01-02",
		Delimiter:  ',',
	}
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"02-Jan-2006",
}

func parseDate(s, preferred string) (time.Time, error) {
	s = cleanCell(s)
	var err error
	for _, layout := range append([]string{preferred}, dateFormats...) {
		if layout == "" {
			continue
		}
		var ts time.Time
		if ts, err = time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "\""))
}

// parseNumber accepts a decimal comma as spreadsheets export it.
func parseNumber(s string) (float64, error) {
	s = cleanCell(s)
	v, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return v, nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	}
	return 0, err
}

// parseValue maps empty and NA-like cells, anything unparsable and
// non-finite numbers to a missing value.
func parseValue(s string) float64 {
	switch strings.ToLower(cleanCell(s)) {
	case "", "na", "n/a", "nan", "null", "none":
		return table.Missing
	}
	v, err := parseNumber(s)
	if err != nil || math.IsInf(v, 0) {
		return table.Missing
	}
	return v
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(name, p) {
			return true
		}
	}
	return false
}

type csvRow struct {
	date   time.Time
	values []float64
}

// LoadTable reads a table from CSV with a header row. Rows with an
// unparsable date are dropped and rows are sorted by date.
func LoadTable(r io.Reader, opts *Options) (*table.Table, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	key := opts.DateColumn
	if key == "" {
		key = table.DefaultKey
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, err
	}

	dateIdx := -1
	var names []string
	var columns []int
	for i, h := range header {
		h = cleanCell(h)
		switch {
		case h == key:
			dateIdx = i
		case h == "" || excluded(h, opts.Exclude):
			continue
		default:
			names = append(names, h)
			columns = append(columns, i)
		}
	}
	if dateIdx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrNoDateColumn, key)
	}

	var rows []csvRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if dateIdx >= len(record) {
			logging.Log.WriteDebugf("line %d: no date cell, skipping", line)
			continue
		}
		date, err := parseDate(record[dateIdx], opts.DateFormat)
		if err != nil {
			logging.Log.WriteDebugf("line %d: bad date %q, skipping", line, record[dateIdx])
			continue
		}

		values := make([]float64, len(columns))
		for c, idx := range columns {
			if idx >= len(record) {
				values[c] = table.Missing
				continue
			}
			values[c] = parseValue(record[idx])
		}
		rows = append(rows, csvRow{date: date, values: values})
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].date.Before(rows[j].date)
	})

	index := make([]time.Time, len(rows))
	series := make([]*table.Series, len(names))
	for c, name := range names {
		series[c] = table.NewSeries(name, make([]float64, len(rows)))
	}
	for i, row := range rows {
		index[i] = row.date
		for c := range series {
			series[c].Values[i] = row.values[c]
		}
	}

	t, err := table.New(key, index, series...)
	if err != nil {
		return nil, err
	}
	if opts.AddTotal {
		t = t.WithTotal()
	}
	logging.Log.WriteDebugf("loaded %d rows, %d series", t.Len(), len(t.Series()))
	return t, nil
}

func LoadTableFile(path string, opts *Options) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadTable(file, opts)
}
