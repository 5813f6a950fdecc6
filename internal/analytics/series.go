package analytics

import (
	"bytes"
	"encoding/json"
)

// Bucket is one period of a Series.
type Bucket struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
}

// Series is an ordered period -> minutes mapping. Buckets are kept in
// chronological order and labels are unique.
type Series struct {
	buckets []Bucket
}

func newSeries(capacity int) Series {
	return Series{buckets: make([]Bucket, 0, capacity)}
}

func (s *Series) append(label string, minutes int) {
	s.buckets = append(s.buckets, Bucket{Label: label, Minutes: minutes})
}

// Len returns the number of periods.
func (s Series) Len() int { return len(s.buckets) }

// Buckets returns a copy of the periods in order.
func (s Series) Buckets() []Bucket {
	out := make([]Bucket, len(s.buckets))
	copy(out, s.buckets)
	return out
}

// Labels returns the period labels in order.
func (s Series) Labels() []string {
	out := make([]string, len(s.buckets))
	for i, b := range s.buckets {
		out[i] = b.Label
	}
	return out
}

// Get returns the minutes recorded for label.
func (s Series) Get(label string) (int, bool) {
	for _, b := range s.buckets {
		if b.Label == label {
			return b.Minutes, true
		}
	}
	return 0, false
}

// Total sums the minutes of every period.
func (s Series) Total() int {
	total := 0
	for _, b := range s.buckets {
		total += b.Minutes
	}
	return total
}

// MarshalJSON encodes the series as a JSON object whose keys keep the
// series order, e.g. {"2025-01-10":50,"2025-01-11":25}.
func (s Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range s.buckets {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(b.Minutes)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
