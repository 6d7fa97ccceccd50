package types

import (
	"fmt"
	"time"
)

// Bar is one OHLCV observation.
type Bar struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// Advisory returns a description of every OHLC invariant the bar violates.
// Violations are informational only; the engine computes over the bar regardless.
func (b Bar) Advisory() []string {
	var notes []string

	if b.High < b.Open || b.High < b.Close {
		notes = append(notes, fmt.Sprintf("high %.4f below max(open, close) at %s", b.High, b.Time.Format(time.RFC3339)))
	}

	if b.Low > b.Open || b.Low > b.Close {
		notes = append(notes, fmt.Sprintf("low %.4f above min(open, close) at %s", b.Low, b.Time.Format(time.RFC3339)))
	}

	if b.Volume < 0 {
		notes = append(notes, fmt.Sprintf("negative volume %.0f at %s", b.Volume, b.Time.Format(time.RFC3339)))
	}

	return notes
}
