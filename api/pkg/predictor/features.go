package predictor

import (
	"sort"
	"time"
)

// featureRow is one training or inference example in the Predictor's fixed
// feature order: day-of-week, time_slot, room_type, historical occupancy
// frequency, rolling window occupancy average.
type featureRow struct {
	dayOfWeek  int
	slot       string
	roomType   string
	histFreq   float64
	rollingAvg float64
	label      int // only meaningful for training rows
}

// vocabulary is a one-hot encoding table built at training time, tolerant of
// unknown categories at inference time (an unknown category simply produces
// the all-zero one-hot vector for that feature).
type vocabulary struct {
	values []string
	index  map[string]int
}

func newVocabulary(seen map[string]struct{}) vocabulary {
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)

	index := make(map[string]int, len(values))
	for i, v := range values {
		index[v] = i
	}
	return vocabulary{values: values, index: index}
}

func (v vocabulary) encode(value string, out []float64) {
	if i, ok := v.index[value]; ok {
		out[i] = 1
	}
	// unknown categories are tolerated: the slice stays all zero.
}

func (v vocabulary) size() int { return len(v.values) }

func dayOfWeek(date string) (int, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// featureVector lays out one row as [dow one-hot(7)][slot one-hot][room_type one-hot][histFreq][rollingAvg].
func featureVector(row featureRow, slots, roomTypes vocabulary) []float64 {
	const numDOW = 7
	dim := numDOW + slots.size() + roomTypes.size() + 2
	vec := make([]float64, dim)

	if row.dayOfWeek >= 0 && row.dayOfWeek < numDOW {
		vec[row.dayOfWeek] = 1
	}
	slots.encode(row.slot, vec[numDOW:numDOW+slots.size()])
	roomTypes.encode(row.roomType, vec[numDOW+slots.size():numDOW+slots.size()+roomTypes.size()])
	vec[dim-2] = row.histFreq
	vec[dim-1] = row.rollingAvg
	return vec
}

func featureDim(slots, roomTypes vocabulary) int {
	return 7 + slots.size() + roomTypes.size() + 2
}
