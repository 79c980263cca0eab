package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

func number(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

func header(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// WriteText renders the report for a terminal. NaN statistics print as NaN.
func WriteText(w io.Writer, r *Report) error {
	if r.Period.Rows == 0 {
		fmt.Fprintln(w, "Period: no data")
	} else {
		fmt.Fprintf(w, "Period: %s to %s (%d rows)\n", r.Period.From, r.Period.To, r.Period.Rows)
	}

	header(w, "Basic Statistics")
	if err := WriteStats(w, r); err != nil {
		return err
	}

	header(w, "Anomaly Detection Summary")
	rows := make([][]string, 0, len(r.Anomalies.Series))
	for _, a := range r.Anomalies.Series {
		dates := "-"
		if len(a.Dates) > 0 {
			dates = strings.Join(a.Dates, ", ")
		}
		rows = append(rows, []string{a.Series, fmt.Sprint(a.Count), dates})
	}
	if err := writeTable(w, []string{"Series", "Anomalies", "Dates"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "Total anomalies: %d\n", r.Anomalies.Total)
	fmt.Fprintf(w, "Unique anomaly days: %d\n", r.Anomalies.UniqueRows)

	if len(r.Trends) > 0 {
		header(w, "Trend")
		rows = rows[:0]
		for _, t := range r.Trends {
			if t.Error != "" {
				rows = append(rows, []string{t.Series, t.Error})
				continue
			}
			coeffs := make([]string, len(t.Coefficients))
			for i, c := range t.Coefficients {
				coeffs[i] = number(c)
			}
			rows = append(rows, []string{t.Series, strings.Join(coeffs, " ")})
		}
		if err := writeTable(w, []string{"Series", "Coefficients (ascending powers)"}, rows); err != nil {
			return err
		}
	}

	header(w, "Spike / Drop Events")
	if len(r.Events) == 0 {
		_, err := fmt.Fprintln(w, "No events configured.")
		return err
	}
	rows = rows[:0]
	for _, e := range r.Events {
		rows = append(rows, []string{
			e.Date.Format(DateFormat),
			fmt.Sprint(e.Duration),
			number(e.Factor),
			number(e.Probability),
		})
	}
	return writeTable(w, []string{"Date", "Duration", "Factor", "Probability"}, rows)
}

// WriteStats renders only the statistics table.
func WriteStats(w io.Writer, r *Report) error {
	rows := make([][]string, 0, len(r.Stats))
	for _, s := range r.Stats {
		rows = append(rows, []string{s.Series, number(s.Mean), number(s.Std), number(s.Median), number(s.IQR)})
	}
	return writeTable(w, []string{"Series", "Mean", "Std", "Median", "IQR"}, rows)
}

func WriteYAML(w io.Writer, r *Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return err
	}
	return encoder.Close()
}
