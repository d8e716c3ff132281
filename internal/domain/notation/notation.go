// Package notation parses and formats the prescription mini-language used in
// program grid cells, e.g. "3x8@120kg (31X0)" or "4x6-8@RPE8 + 1xAMRAP".
package notation

import (
	"regexp"
	"strconv"
	"strings"
)

// Skip is the canonical cell value for "no prescription this week".
const Skip = "—"

// IntensityType classifies how load is prescribed.
type IntensityType string

// Intensity types
const (
	IntensityAbsolute   IntensityType = "absolute"
	IntensityPercentage IntensityType = "percentage"
	IntensityRPE        IntensityType = "rpe"
	IntensityRIR        IntensityType = "rir"
)

// IntensityUnit is the unit attached to an intensity value.
type IntensityUnit string

// Intensity units
const (
	UnitKg      IntensityUnit = "kg"
	UnitLb      IntensityUnit = "lb"
	UnitPercent IntensityUnit = "%"
	UnitRPE     IntensityUnit = "rpe"
	UnitRIR     IntensityUnit = "rir"
)

// UnilateralUnit marks reps counted per limb or side.
type UnilateralUnit string

// Unilateral units
const (
	UnilateralLeg  UnilateralUnit = "leg"
	UnilateralArm  UnilateralUnit = "arm"
	UnilateralSide UnilateralUnit = "side"
)

// Accepted ranges for a single block. Anything outside parses as nil.
const (
	MinSets = 1
	MaxSets = 20
	MaxReps = 100
)

// Prescription is one uniform block of sets: same reps, intensity and tempo
// for every set.
type Prescription struct {
	Sets           int
	RepsMin        int  // 0 for AMRAP
	RepsMax        *int // nil unless a real range was written
	IsAmrap        bool
	IsUnilateral   bool
	UnilateralUnit UnilateralUnit
	IntensityType  IntensityType
	IntensityValue *float64
	IntensityUnit  IntensityUnit
	Tempo          string // four chars of [0-9X], empty when absent
}

var (
	tempoPattern = regexp.MustCompile(`\s*\(([0-9Xx]{4})\)\s*$`)

	// 1 sets, 2 amrap, 3 reps, 4 reps max, 5 unilateral unit,
	// 6 rpe value, 7 rir value, 8 load value, 9 load unit
	blockPattern = regexp.MustCompile(`(?i)^(\d+)\s*x\s*(?:(amrap)|(\d+)(?:\s*-\s*(\d+))?(?:\s*/\s*(leg|arm|side))?(?:\s*@\s*(?:rpe\s*(\d+(?:\.\d+)?)|rir\s*(\d+)|(\d+(?:\.\d+)?)\s*(%|kg|lb)?))?)$`)
)

// isSkip reports whether trimmed text is one of the "leave this cell empty" markers.
func isSkip(trimmed string) bool {
	return trimmed == "" || trimmed == "-" || trimmed == Skip
}

// Parse turns a single block of notation into a Prescription.
// Skip markers ("", "-", "—") and malformed text both yield nil; callers that
// need to tell them apart must inspect the input themselves.
func Parse(input string) *Prescription {
	trimmed := strings.TrimSpace(input)
	if isSkip(trimmed) {
		return nil
	}

	body := trimmed
	tempo := ""
	if loc := tempoPattern.FindStringSubmatchIndex(trimmed); loc != nil {
		tempo = strings.ToUpper(trimmed[loc[2]:loc[3]])
		body = trimmed[:loc[0]]
	}

	m := blockPattern.FindStringSubmatch(body)
	if m == nil {
		return nil
	}

	sets, ok := atoi(m[1])
	if !ok || sets < MinSets || sets > MaxSets {
		return nil
	}
	p := &Prescription{Sets: sets, Tempo: tempo}

	if m[2] != "" {
		p.IsAmrap = true
		return p
	}

	reps, ok := atoi(m[3])
	if !ok || reps > MaxReps {
		return nil
	}
	p.RepsMin = reps

	if m[4] != "" {
		repsMax, ok := atoi(m[4])
		if !ok || repsMax < reps || repsMax > MaxReps {
			return nil
		}
		// "8-8" is not a range; dropping it keeps format/parse symmetric.
		if repsMax != reps {
			p.RepsMax = &repsMax
		}
	}

	if m[5] != "" {
		p.IsUnilateral = true
		p.UnilateralUnit = UnilateralUnit(strings.ToLower(m[5]))
	}

	switch {
	case m[6] != "":
		v, err := strconv.ParseFloat(m[6], 64)
		if err != nil {
			return nil
		}
		p.IntensityType, p.IntensityValue, p.IntensityUnit = IntensityRPE, &v, UnitRPE
	case m[7] != "":
		n, ok := atoi(m[7])
		if !ok {
			return nil
		}
		v := float64(n)
		p.IntensityType, p.IntensityValue, p.IntensityUnit = IntensityRIR, &v, UnitRIR
	case m[8] != "":
		v, err := strconv.ParseFloat(m[8], 64)
		if err != nil {
			return nil
		}
		switch strings.ToLower(m[9]) {
		case "%":
			p.IntensityType, p.IntensityUnit = IntensityPercentage, UnitPercent
		case "lb":
			p.IntensityType, p.IntensityUnit = IntensityAbsolute, UnitLb
		default:
			p.IntensityType, p.IntensityUnit = IntensityAbsolute, UnitKg
		}
		p.IntensityValue = &v
	}

	return p
}

// Format renders a Prescription in canonical form. nil renders as Skip.
// POST: Parse(Format(p)) is structurally equal to p for any p produced by Parse
func Format(p *Prescription) string {
	if p == nil {
		return Skip
	}

	var b strings.Builder
	b.WriteString(strconv.Itoa(p.Sets))
	b.WriteString("x")

	if p.IsAmrap {
		b.WriteString("AMRAP")
		writeTempo(&b, p.Tempo)
		return b.String()
	}

	b.WriteString(strconv.Itoa(p.RepsMin))
	if p.RepsMax != nil && *p.RepsMax != p.RepsMin {
		b.WriteString("-")
		b.WriteString(strconv.Itoa(*p.RepsMax))
	}
	if p.IsUnilateral && p.UnilateralUnit != "" {
		b.WriteString("/")
		b.WriteString(string(p.UnilateralUnit))
	}
	writeIntensity(&b, p.IntensityType, p.IntensityValue, p.IntensityUnit)
	writeTempo(&b, p.Tempo)
	return b.String()
}

func writeIntensity(b *strings.Builder, t IntensityType, v *float64, unit IntensityUnit) {
	if t == "" || v == nil {
		return
	}
	value := strconv.FormatFloat(*v, 'f', -1, 64)
	switch t {
	case IntensityAbsolute:
		if unit != UnitLb {
			unit = UnitKg
		}
		b.WriteString("@" + value + string(unit))
	case IntensityPercentage:
		b.WriteString("@" + value + "%")
	case IntensityRIR:
		b.WriteString("@RIR" + value)
	case IntensityRPE:
		b.WriteString("@RPE" + value)
	}
}

func writeTempo(b *strings.Builder, tempo string) {
	if tempo == "" {
		return
	}
	b.WriteString(" (")
	b.WriteString(tempo)
	b.WriteString(")")
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
