package notation

import (
	"regexp"
	"strings"
)

// Series is a single planned set, the expanded form of a Prescription block.
type Series struct {
	OrderIndex     int
	Reps           *int // nil for AMRAP
	RepsMax        *int
	IsAmrap        bool
	IntensityType  IntensityType
	IntensityValue *float64
	IntensityUnit  IntensityUnit
	UnilateralUnit UnilateralUnit
	Tempo          string
}

var plusPattern = regexp.MustCompile(`\s*\+\s*`)

// ParseBlocks splits notation on "+" and parses every part.
// A skip marker yields an empty, non-nil slice and ok=true.
// Any unparseable part fails the whole input with ok=false.
func ParseBlocks(input string) ([]Prescription, bool) {
	trimmed := strings.TrimSpace(input)
	if isSkip(trimmed) {
		return []Prescription{}, true
	}

	parts := plusPattern.Split(trimmed, -1)
	blocks := make([]Prescription, 0, len(parts))
	for _, part := range parts {
		p := Parse(part)
		if p == nil {
			return nil, false
		}
		blocks = append(blocks, *p)
	}
	return blocks, true
}

// ExpandToSeries turns notation into one Series per set, numbered from 0
// across all "+" parts.
// PRE: none
// POST: ok=false if any part is unparseable; skip markers give an empty slice
func ExpandToSeries(input string) ([]Series, bool) {
	blocks, ok := ParseBlocks(input)
	if !ok {
		return nil, false
	}

	total := 0
	for _, b := range blocks {
		total += b.Sets
	}

	series := make([]Series, 0, total)
	for _, b := range blocks {
		for i := 0; i < b.Sets; i++ {
			series = append(series, seriesFromBlock(b, len(series)))
		}
	}
	return series, true
}

// CollapseFromSeries merges runs of identical consecutive series into
// blocks and joins them with " + ". An empty slice renders as Skip.
// Runs longer than MaxSets are split so every block stays within the set
// limit. Stored series are not bound by MaxReps, so a series above it renders
// as text that Parse rejects.
func CollapseFromSeries(series []Series) string {
	if len(series) == 0 {
		return Skip
	}

	var parts []string
	template := series[0]
	count := 1
	for _, s := range series[1:] {
		if count < MaxSets && sameSeries(template, s) {
			count++
			continue
		}
		parts = append(parts, Format(blockFromSeries(template, count)))
		template, count = s, 1
	}
	parts = append(parts, Format(blockFromSeries(template, count)))

	return strings.Join(parts, " + ")
}

func seriesFromBlock(b Prescription, orderIndex int) Series {
	s := Series{
		OrderIndex:     orderIndex,
		RepsMax:        copyInt(b.RepsMax),
		IsAmrap:        b.IsAmrap,
		IntensityType:  b.IntensityType,
		IntensityValue: copyFloat(b.IntensityValue),
		IntensityUnit:  b.IntensityUnit,
		Tempo:          b.Tempo,
	}
	if b.IsUnilateral {
		s.UnilateralUnit = b.UnilateralUnit
	}
	if !b.IsAmrap {
		reps := b.RepsMin
		s.Reps = &reps
	}
	return s
}

func blockFromSeries(s Series, count int) *Prescription {
	p := &Prescription{
		Sets:           count,
		RepsMax:        copyInt(s.RepsMax),
		IsAmrap:        s.IsAmrap,
		IsUnilateral:   s.UnilateralUnit != "",
		UnilateralUnit: s.UnilateralUnit,
		IntensityType:  s.IntensityType,
		IntensityValue: copyFloat(s.IntensityValue),
		IntensityUnit:  s.IntensityUnit,
		Tempo:          s.Tempo,
	}
	if s.Reps != nil && !s.IsAmrap {
		p.RepsMin = *s.Reps
	}
	return p
}

// sameSeries compares everything except OrderIndex. Reps are ignored for
// AMRAP sets, where storage may hold either nil or 0.
func sameSeries(a, b Series) bool {
	if a.IsAmrap != b.IsAmrap {
		return false
	}
	if !a.IsAmrap && !equalInt(a.Reps, b.Reps) {
		return false
	}
	return equalInt(a.RepsMax, b.RepsMax) &&
		a.IntensityType == b.IntensityType &&
		equalFloat(a.IntensityValue, b.IntensityValue) &&
		a.IntensityUnit == b.IntensityUnit &&
		a.UnilateralUnit == b.UnilateralUnit &&
		a.Tempo == b.Tempo
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
