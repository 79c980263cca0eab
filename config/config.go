// Package config parses the YAML configuration of the minestat command.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"minestat/anomaly"
	"minestat/logging"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DateFormat = "2006-01-02"

var ErrConfig = errors.New("invalid configuration")

type DataConfiguration struct {
	// Path of the CSV file holding the table
	Path string `yaml:"path" validate:"required"`
	// DateColumn names the ordering key column
	DateColumn string `yaml:"dateColumn"`
	// DateFormat is the Go layout of the date column
	DateFormat string `yaml:"dateFormat"`
	// Exclude drops every column whose name contains one of these substrings
	Exclude []string `yaml:"exclude"`
	// AddTotal appends the Total aggregate when the file has none
	AddTotal bool `yaml:"addTotal"`
}

type EventsConfiguration struct {
	Path string `yaml:"path"`
}

type CacheConfiguration struct {
	// MaxEntries bounds the number of datasets kept in memory
	MaxEntries int64 `yaml:"maxEntries" validate:"gte=1"`
	// Granularity truncates fetch times when building cache keys
	Granularity time.Duration `yaml:"granularity" validate:"gte=0"`
}

type ReportConfiguration struct {
	// Series to report on. Empty reports every series.
	Series []string `yaml:"series"`
	// From and To bound the reported date range, inclusive. Empty is open.
	From   string `yaml:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `yaml:"to" validate:"omitempty,datetime=2006-01-02"`
	Format string `yaml:"format" validate:"oneof=text yaml"`
	// TrendDegree of the polynomial trendline, 0 disables it
	TrendDegree int `yaml:"trendDegree" validate:"gte=0,lte=4"`
}

type Configuration struct {
	LogLevel  logging.Level       `yaml:"logLevel" validate:"oneof=debug info warning error"`
	Data      DataConfiguration   `yaml:"data"`
	Events    EventsConfiguration `yaml:"events"`
	Cache     CacheConfiguration  `yaml:"cache"`
	Detection anomaly.Config      `yaml:"detection" validate:"-"`
	Report    ReportConfiguration `yaml:"report"`
}

// Default returns a configuration without a data path; everything else is
// usable as is.
func Default() *Configuration {
	return &Configuration{
		LogLevel: logging.INFO,
		Data: DataConfiguration{
			DateColumn: "Date",
			DateFormat: DateFormat,
			Exclude:    []string{"Randomizer"},
			AddTotal:   true,
		},
		Cache: CacheConfiguration{
			MaxEntries:  64,
			Granularity: time.Hour,
		},
		Detection: anomaly.DefaultConfig(),
		Report: ReportConfiguration{
			Format:      "text",
			TrendDegree: 1,
		},
	}
}

// Validate checks the configuration, including the detection thresholds.
func Validate(c *Configuration) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrConfig, err.Error())
	}
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if _, _, err := c.Report.Range(); err != nil {
		return err
	}
	return nil
}

// Range parses From and To. A missing bound is the zero time.
func (r ReportConfiguration) Range() (from, to time.Time, err error) {
	if r.From != "" {
		if from, err = time.Parse(DateFormat, r.From); err != nil {
			return from, to, fmt.Errorf("%w: from: %s", ErrConfig, err.Error())
		}
	}
	if r.To != "" {
		if to, err = time.Parse(DateFormat, r.To); err != nil {
			return from, to, fmt.Errorf("%w: to: %s", ErrConfig, err.Error())
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("%w: range ends before it starts", ErrConfig)
	}
	return from, to, nil
}

// ParseBytes decodes YAML over the defaults. The result is not validated.
func ParseBytes(buf []byte) (*Configuration, error) {
	conf := Default()
	if err := yaml.Unmarshal(buf, conf); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfig, err.Error())
	}
	return conf, nil
}

// Parse reads and decodes a configuration file. The result is not
// validated, so command-line overrides can be applied first.
func Parse(path string) (*Configuration, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBytes(buf)
}
