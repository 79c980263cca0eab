package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"minestat/anomaly"
	"minestat/config"
	"minestat/ingest"
	"minestat/logging"
	"minestat/report"
	"minestat/stats"

	"github.com/akamensky/argparse"
)

// flags holds the command-line values. A nil pointer is a flag the
// command does not define; an empty or negative value is a flag not given.
type flags struct {
	config    *string
	data      *string
	events    *string
	methods   *[]string
	zThresh   *float64
	maWindow  *int
	iqrFactor *float64
	maPct     *float64
	series    *[]string
	from      *string
	to        *string
	format    *string
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil && *src >= 0 {
		*dst = *src
	}
}

// configuration reads the configuration file when given and applies the
// command-line overrides on top of it.
func configuration(f flags) (*config.Configuration, error) {
	conf := config.Default()
	if f.config != nil && *f.config != "" {
		var err error
		if conf, err = config.Parse(*f.config); err != nil {
			return nil, err
		}
	}

	setString(&conf.Data.Path, f.data)
	setString(&conf.Events.Path, f.events)
	setString(&conf.Report.From, f.from)
	setString(&conf.Report.To, f.to)
	setString(&conf.Report.Format, f.format)
	setFloat(&conf.Detection.ZThresh, f.zThresh)
	setFloat(&conf.Detection.IQRFactor, f.iqrFactor)
	setFloat(&conf.Detection.MAPct, f.maPct)
	if f.maWindow != nil && *f.maWindow > 0 {
		conf.Detection.MAWindow = *f.maWindow
	}
	if f.methods != nil && len(*f.methods) > 0 {
		conf.Detection.Methods = conf.Detection.Methods[:0]
		for _, m := range *f.methods {
			conf.Detection.Methods = append(conf.Detection.Methods, anomaly.Method(m))
		}
	}
	if f.series != nil && len(*f.series) > 0 {
		conf.Report.Series = *f.series
	}

	if err := config.Validate(conf); err != nil {
		return nil, err
	}
	logging.SetLogger(logging.NewLogrusLogger(conf.LogLevel, os.Stderr))

	known := make(map[anomaly.Method]bool)
	for _, m := range anomaly.Methods() {
		known[m] = true
	}
	for _, m := range conf.Detection.Methods {
		if !known[m] {
			logging.Log.WriteWarnf("unknown detection method %q ignored", m)
		}
	}
	return conf, nil
}

func loadDataset(conf *config.Configuration) (*ingest.Dataset, error) {
	store, err := ingest.NewStore(conf.Cache.MaxEntries, conf.Cache.Granularity)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	src := &ingest.FileSource{
		DataPath:   conf.Data.Path,
		EventsPath: conf.Events.Path,
		Options: &ingest.Options{
			DateColumn: conf.Data.DateColumn,
			DateFormat: conf.Data.DateFormat,
			Exclude:    conf.Data.Exclude,
			AddTotal:   conf.Data.AddTotal,
		},
	}
	return store.Get(src, time.Now())
}

func analyze(w io.Writer, conf *config.Configuration) error {
	dataset, err := loadDataset(conf)
	if err != nil {
		return err
	}
	for _, name := range conf.Report.Series {
		if _, ok := dataset.Table.Column(name); !ok {
			logging.Log.WithField("series", name).WriteWarnf("series not in data, skipped")
		}
	}

	mask, err := anomaly.Detect(dataset.Table, conf.Detection)
	if err != nil {
		return err
	}

	from, to, err := conf.Report.Range()
	if err != nil {
		return err
	}
	view := dataset.Table.Between(from, to)
	if view.Len() == 0 {
		logging.Log.WriteWarnf("no rows between %q and %q", conf.Report.From, conf.Report.To)
	}

	r := report.Build(report.Input{
		Table:       view,
		Mask:        mask.Between(from, to),
		Summary:     stats.Summarize(dataset.Table),
		Series:      conf.Report.Series,
		Events:      dataset.Events,
		TrendDegree: conf.Report.TrendDegree,
	})
	logging.Log.WriteInfof("%d anomalies on %d days", r.Anomalies.Total, r.Anomalies.UniqueRows)

	if conf.Report.Format == "yaml" {
		return report.WriteYAML(w, r)
	}
	return report.WriteText(w, r)
}

func summarize(w io.Writer, conf *config.Configuration) error {
	dataset, err := loadDataset(conf)
	if err != nil {
		return err
	}

	from, to, err := conf.Report.Range()
	if err != nil {
		return err
	}
	r := report.Build(report.Input{
		Table:   dataset.Table.Between(from, to),
		Summary: stats.Summarize(dataset.Table),
		Series:  conf.Report.Series,
	})
	logging.Log.WriteDebugf("%d series summarized", len(r.Stats))

	if conf.Report.Format == "yaml" {
		return report.WriteYAML(w, r)
	}
	return report.WriteStats(w, r)
}

var errNoCommand = errors.New("no command given")

func main() {
	parser := argparse.NewParser("minestat",
		"minestat Summarize daily production tables and flag anomalous days")

	analyzeCmd := parser.NewCommand("analyze", "Run anomaly detection and print the report")
	statsCmd := parser.NewCommand("stats", "Print descriptive statistics only")

	var analyzeFlags flags
	analyzeFlags.config = analyzeCmd.String("c", "config", &argparse.Options{
		Help: "Path of the YAML configuration file",
	})
	analyzeFlags.data = analyzeCmd.String("d", "data", &argparse.Options{
		Help: "CSV table to analyze, overrides data.path",
	})
	analyzeFlags.events = analyzeCmd.String("e", "events", &argparse.Options{
		Help: "CSV of configured spike and drop events, overrides events.path",
	})
	analyzeFlags.methods = analyzeCmd.StringList("m", "method", &argparse.Options{
		Help: "Detection method (IQR, z-score, moving_avg, grubbs). Repeat to combine",
	})
	analyzeFlags.zThresh = analyzeCmd.Float("", "z-thresh", &argparse.Options{
		Default: -1.0,
		Help:    "Absolute z-score above which a value is flagged",
	})
	analyzeFlags.maWindow = analyzeCmd.Int("", "ma-window", &argparse.Options{
		Default: 0,
		Help:    "Size of the centered moving-average window",
	})
	analyzeFlags.iqrFactor = analyzeCmd.Float("", "iqr-factor", &argparse.Options{
		Default: -1.0,
		Help:    "IQR multiplier placing the fences",
	})
	analyzeFlags.maPct = analyzeCmd.Float("", "ma-pct", &argparse.Options{
		Default: -1.0,
		Help:    "Relative deviation from the moving average above which a value is flagged",
	})
	analyzeFlags.series = analyzeCmd.StringList("s", "series", &argparse.Options{
		Help: "Series to report on. Repeat for several; default is every series",
	})
	analyzeFlags.from = analyzeCmd.String("", "from", &argparse.Options{
		Help: "First reported date, YYYY-MM-DD",
	})
	analyzeFlags.to = analyzeCmd.String("", "to", &argparse.Options{
		Help: "Last reported date, YYYY-MM-DD",
	})
	analyzeFlags.format = analyzeCmd.Selector("f", "format", []string{"text", "yaml"}, &argparse.Options{
		Help: "Output format",
	})

	var statsFlags flags
	statsFlags.config = statsCmd.String("c", "config", &argparse.Options{
		Help: "Path of the YAML configuration file",
	})
	statsFlags.data = statsCmd.String("d", "data", &argparse.Options{
		Help: "CSV table to summarize, overrides data.path",
	})
	statsFlags.series = statsCmd.StringList("s", "series", &argparse.Options{
		Help: "Series to summarize. Repeat for several; default is every series",
	})
	statsFlags.format = statsCmd.Selector("f", "format", []string{"text", "yaml"}, &argparse.Options{
		Help: "Output format",
	})

	err := parser.Parse(os.Args)

	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	switch {
	case analyzeCmd.Happened():
		err = run(os.Stdout, analyzeFlags, analyze)
	case statsCmd.Happened():
		err = run(os.Stdout, statsFlags, summarize)
	default:
		err = errNoCommand
	}

	if err != nil {
		logError(err)
		os.Exit(1)
	}
}

func logError(err error) {
	logging.Log.WriteErrorf("%v", err)
}

func run(w io.Writer, f flags, command func(io.Writer, *config.Configuration) error) error {
	conf, err := configuration(f)
	if err != nil {
		return err
	}
	return command(w, conf)
}
