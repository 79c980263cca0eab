package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"minestat/logging"
)

// Event is a configured spike or drop applied to the generated data. Only
// the report reads events.
type Event struct {
	Date        time.Time `yaml:"date"`
	Duration    int       `yaml:"duration"`
	Factor      float64   `yaml:"factor"`
	Probability float64   `yaml:"probability"`
}

const eventFields = 4

// LoadEvents reads rows of date, duration (days), factor and probability.
// Blank rows, rows of the wrong width and rows with a bad cell are skipped,
// which also drops a header row.
func LoadEvents(r io.Reader) ([]Event, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	events := make([]Event, 0)
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if blank(record) {
			continue
		}
		event, ok := parseEvent(record)
		if !ok {
			logging.Log.WriteDebugf("event line %d malformed, skipping: %v", line, record)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func LoadEventsFile(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadEvents(file)
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseEvent(record []string) (Event, bool) {
	if len(record) != eventFields {
		return Event{}, false
	}
	date, err := parseDate(record[0], "")
	if err != nil {
		return Event{}, false
	}
	duration, err := strconv.Atoi(cleanCell(record[1]))
	if err != nil {
		return Event{}, false
	}
	factor, err := parseNumber(record[2])
	if err != nil {
		return Event{}, false
	}
	prob, err := parseNumber(record[3])
	if err != nil {
		return Event{}, false
	}
	return Event{
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Duration:    duration,
		Factor:      factor,
		Probability: prob,
	}, true
}
