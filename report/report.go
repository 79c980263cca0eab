// Package report assembles the statistics, anomaly and trend results of
// one analysis run and renders them as text or YAML.
package report

import (
	"time"

	"minestat/anomaly"
	"minestat/ingest"
	"minestat/stats"
	"minestat/table"
	"minestat/trend"
)

const DateFormat = "2006-01-02"

// Input is one analysis run. Mask must cover the rows of Table.
type Input struct {
	Table *table.Table
	Mask  *anomaly.Mask
	// Summary of the whole dataset. Nil summarizes Table.
	Summary *stats.Summary
	// Series selected for the report. Empty selects every series but Total.
	Series      []string
	Events      []ingest.Event
	TrendDegree int
}

type Period struct {
	From             string  `yaml:"from,omitempty"`
	To               string  `yaml:"to,omitempty"`
	Rows             int     `yaml:"rows"`
	MeanIntervalDays float64 `yaml:"meanIntervalDays"`
}

type SeriesStats struct {
	Series    string `yaml:"series"`
	stats.Row `yaml:",inline"`
}

type SeriesAnomalies struct {
	Series string   `yaml:"series"`
	Count  int      `yaml:"count"`
	Dates  []string `yaml:"dates"`
}

type Anomalies struct {
	Series     []SeriesAnomalies `yaml:"series"`
	Total      int               `yaml:"total"`
	UniqueRows int               `yaml:"uniqueRows"`
}

type Trend struct {
	Series       string    `yaml:"series"`
	Coefficients []float64 `yaml:"coefficients,omitempty"`
	Error        string    `yaml:"error,omitempty"`
}

type Report struct {
	Period    Period         `yaml:"period"`
	Stats     []SeriesStats  `yaml:"stats"`
	Anomalies Anomalies      `yaml:"anomalies"`
	Trends    []Trend        `yaml:"trends,omitempty"`
	Events    []ingest.Event `yaml:"events"`
}

// Build computes the report. Statistics cover the selected series plus
// Total and come from Summary when given, so a narrowed Table leaves them
// unchanged. Anomaly counts and trends follow Table and cover the selected
// series only.
func Build(in Input) *Report {
	r := &Report{Events: in.Events}
	if r.Events == nil {
		r.Events = make([]ingest.Event, 0)
	}
	if in.Table == nil {
		return r
	}

	selected := selection(in.Table, in.Series)

	index := stats.IndexStatistics(in.Table.Index())
	r.Period.Rows = int(index.NumValues)
	r.Period.MeanIntervalDays = index.MeanIntervalDays()
	if index.NumValues > 0 {
		r.Period.From = index.FirstTimestamp.Format(DateFormat)
		r.Period.To = index.LastTimestamp.Format(DateFormat)
	}

	withTotal := selected
	if _, ok := in.Table.Column(table.TotalName); ok && !contains(selected, table.TotalName) {
		withTotal = append(append([]string{}, selected...), table.TotalName)
	}
	summary := in.Summary
	if summary == nil {
		summary = stats.Summarize(in.Table)
	}
	summary = summary.Select(withTotal...)
	for _, name := range summary.Names() {
		row, _ := summary.Row(name)
		r.Stats = append(r.Stats, SeriesStats{Series: name, Row: row})
	}

	r.Anomalies.Series = make([]SeriesAnomalies, 0, len(selected))
	if in.Mask != nil && len(selected) > 0 {
		for _, name := range selected {
			r.Anomalies.Series = append(r.Anomalies.Series, SeriesAnomalies{
				Series: name,
				Count:  in.Mask.Count(name),
				Dates:  formatDates(in.Mask.Flagged(name)),
			})
		}
		r.Anomalies.Total = in.Mask.Total(selected...)
		r.Anomalies.UniqueRows = in.Mask.UniqueRows(selected...)
	}

	if in.TrendDegree > 0 {
		for _, name := range selected {
			s, _ := in.Table.Column(name)
			entry := Trend{Series: name}
			p, err := trend.Fit(s.Values, in.TrendDegree)
			if err != nil {
				entry.Error = err.Error()
			} else {
				entry.Coefficients = p.Coefficients()
			}
			r.Trends = append(r.Trends, entry)
		}
	}
	return r
}

// selection keeps the requested names that exist, in order and without
// duplicates.
func selection(t *table.Table, names []string) []string {
	if len(names) == 0 {
		out := make([]string, 0, len(t.Names()))
		for _, name := range t.Names() {
			if name != table.TotalName {
				out = append(out, name)
			}
		}
		return out
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := t.Column(name); ok && !contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(DateFormat)
	}
	return out
}
