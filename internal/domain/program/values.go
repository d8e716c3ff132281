package program

import (
	"strings"
	"unicode/utf8"
)

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// normalizeOptional trims s and maps blank values to nil.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
