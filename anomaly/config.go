package anomaly

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Method names one of the detection tests.
type Method string

const (
	IQR           Method = "IQR"
	ZScore        Method = "z-score"
	MovingAverage Method = "moving_avg"
	Grubbs        Method = "grubbs"
)

// Methods lists every recognised method in evaluation order.
func Methods() []Method {
	return []Method{IQR, ZScore, MovingAverage, Grubbs}
}

var ErrInvalidConfig = errors.New("invalid detection config")

// Config selects the methods to combine and their thresholds. Start from
// DefaultConfig; the zero value does not validate.
type Config struct {
	// Methods is the set of tests OR-ed together. Unknown names are ignored
	// and an empty set yields an all-false mask.
	Methods []Method `yaml:"methods"`
	// ZThresh is the absolute z-score above which a value is flagged.
	ZThresh float64 `yaml:"z_thresh" validate:"gte=0"`
	// MAWindow is the size of the centered moving-average window.
	MAWindow int `yaml:"ma_window" validate:"gte=1"`
	// IQRFactor scales the IQR to place the fences.
	IQRFactor float64 `yaml:"iqr_factor" validate:"gte=0"`
	// MAPct is the relative deviation from the moving average above which a
	// value is flagged.
	MAPct float64 `yaml:"ma_pct" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		Methods:   Methods(),
		ZThresh:   2.0,
		MAWindow:  7,
		IQRFactor: 1.5,
		MAPct:     0.2,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the numeric preconditions. Method names are not checked.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	for name, v := range map[string]float64{
		"z_thresh":   c.ZThresh,
		"iqr_factor": c.IQRFactor,
		"ma_pct":     c.MAPct,
	} {
		if math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidConfig, name)
		}
	}
	return nil
}

// Has reports whether m is selected.
func (c Config) Has(m Method) bool {
	for _, selected := range c.Methods {
		if selected == m {
			return true
		}
	}
	return false
}
