package program

import (
	"regexp"
	"strings"
)

var tempoPattern = regexp.MustCompile(`^[0-9Xx]{4}$`)

// CreateSeries validates a single series outside of an aggregate.
// PRE: orderIndex is the series position within its row
// POST: Tempo is upper-cased; returns *ValidationError on failure
func CreateSeries(in SeriesInput, orderIndex int) (Series, error) {
	if orderIndex < 0 {
		return Series{}, root.inSeries(orderIndex).fail(TypeSeriesInvalidOrderIndex, "series order index cannot be negative")
	}
	s, verr := validateSeries(in, root.inSeries(orderIndex))
	if verr != nil {
		return Series{}, verr
	}
	return s, nil
}

func validateSeries(in SeriesInput, p position) (Series, *ValidationError) {
	if in.Reps != nil && *in.Reps < 0 {
		return Series{}, p.fail(TypeSeriesRepsInvalid, "reps cannot be negative")
	}
	if in.IsAmrap && in.Reps != nil && *in.Reps > 0 {
		return Series{}, p.fail(TypeSeriesAmrapWithReps, "AMRAP series should have reps of null or 0")
	}
	if in.RepsMax != nil {
		if *in.RepsMax < 0 {
			return Series{}, p.fail(TypeSeriesRepsInvalid, "maximum reps cannot be negative")
		}
		if in.Reps != nil && *in.RepsMax < *in.Reps {
			return Series{}, p.fail(TypeSeriesRepsRangeInvalid, "maximum reps must be greater than or equal to minimum reps")
		}
	}

	if in.IntensityType != "" {
		if !in.IntensityType.IsValid() {
			return Series{}, p.fail(TypeSeriesIntensityTypeInvalid, "unknown intensity type: "+string(in.IntensityType))
		}
		if in.IntensityValue == nil {
			return Series{}, p.fail(TypeSeriesIntensityValueRequired, "intensity value is required when intensity type is specified")
		}
		if verr := checkIntensity(in.IntensityType, *in.IntensityValue, p); verr != nil {
			return Series{}, verr
		}
	}

	tempo := strings.TrimSpace(in.Tempo)
	if tempo != "" {
		if !tempoPattern.MatchString(tempo) {
			return Series{}, p.fail(TypeSeriesTempoInvalid, "tempo must be 4 characters (digits or X)")
		}
		tempo = strings.ToUpper(tempo)
	}

	if in.RestSeconds != nil && *in.RestSeconds < 0 {
		return Series{}, p.fail(TypeSeriesRestInvalid, "rest seconds cannot be negative")
	}

	return Series{
		OrderIndex:     p.series,
		Reps:           cloneInt(in.Reps),
		RepsMax:        cloneInt(in.RepsMax),
		IsAmrap:        in.IsAmrap,
		IntensityType:  in.IntensityType,
		IntensityValue: cloneFloat(in.IntensityValue),
		IntensityUnit:  in.IntensityUnit,
		UnilateralUnit: in.UnilateralUnit,
		Tempo:          tempo,
		RestSeconds:    cloneInt(in.RestSeconds),
	}, nil
}

func checkIntensity(t IntensityType, v float64, p position) *ValidationError {
	switch t {
	case IntensityPercentage:
		if v < 0 || v > 100 {
			return p.fail(TypeSeriesPercentageInvalid, "percentage must be between 0 and 100")
		}
	case IntensityRPE:
		if v < 0 || v > 10 {
			return p.fail(TypeSeriesRPEInvalid, "RPE must be between 0 and 10")
		}
	case IntensityRIR:
		if v < 0 || v > 10 {
			return p.fail(TypeSeriesRIRInvalid, "RIR must be between 0 and 10")
		}
	case IntensityAbsolute:
		if v < 0 {
			return p.fail(TypeSeriesAbsoluteInvalid, "weight cannot be negative")
		}
	}
	return nil
}
