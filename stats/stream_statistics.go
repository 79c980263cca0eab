package stats

import "time"

// StreamStatistics describes the ordering key of a table: its first and
// last timestamps and the spacing between consecutive rows.
type StreamStatistics struct {
	FirstTimestamp time.Time
	LastTimestamp  time.Time
	NumValues      uint64
	IntervalStats  *Welford
}

func NewStreamStatistics() *StreamStatistics {
	return &StreamStatistics{
		NumValues:     0,
		IntervalStats: NewWelford(),
	}
}

// Append records the next timestamp. Timestamps are expected in order.
func (stream *StreamStatistics) Append(timestamp time.Time) {
	if stream.NumValues == 0 {
		stream.FirstTimestamp = timestamp
	} else {
		interval := timestamp.Sub(stream.LastTimestamp)
		stream.IntervalStats.Update(interval.Hours() / 24)
	}

	stream.NumValues++
	stream.LastTimestamp = timestamp
}

// MeanIntervalDays is NaN with fewer than two timestamps.
func (stream *StreamStatistics) MeanIntervalDays() float64 {
	return stream.IntervalStats.GetMean()
}

func IndexStatistics(index []time.Time) *StreamStatistics {
	stream := NewStreamStatistics()
	for _, ts := range index {
		stream.Append(ts)
	}
	return stream
}
