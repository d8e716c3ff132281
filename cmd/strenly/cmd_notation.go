package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"strenly/internal/domain/notation"
)

var showSeries bool

var notationCmd = &cobra.Command{
	Use:   "notation <prescription>",
	Short: "Normalize prescription notation",
	Long: `Expand a prescription such as "3x5@80% + 1x3@RPE9" into sets and print its
canonical form. With --series every expanded set is listed.`,
	Example: `  strenly notation "3X8 @ rpe 8 (30x1)"
  strenly notation --series "2x5@100kg + 1x3@110kg"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.Join(args, " ")
		series, ok := notation.ExpandToSeries(input)
		if !ok {
			return fmt.Errorf("invalid prescription notation: %q", input)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, notation.CollapseFromSeries(series))
		if !showSeries {
			return nil
		}
		for _, s := range series {
			fmt.Fprintf(out, "  %d. %s\n", s.OrderIndex+1, describeSeries(s))
		}
		return nil
	},
}

func init() {
	notationCmd.Flags().BoolVar(&showSeries, "series", false, "List every expanded set")
}

func describeSeries(s notation.Series) string {
	var b strings.Builder
	switch {
	case s.IsAmrap:
		b.WriteString("AMRAP")
	case s.Reps != nil && s.RepsMax != nil:
		fmt.Fprintf(&b, "%d-%d reps", *s.Reps, *s.RepsMax)
	case s.Reps != nil:
		fmt.Fprintf(&b, "%d reps", *s.Reps)
	}
	if s.UnilateralUnit != "" {
		fmt.Fprintf(&b, " per %s", s.UnilateralUnit)
	}
	if s.IntensityType != "" && s.IntensityValue != nil {
		fmt.Fprintf(&b, ", %s %g", s.IntensityType, *s.IntensityValue)
		if s.IntensityUnit != "" {
			fmt.Fprintf(&b, " %s", s.IntensityUnit)
		}
	}
	if s.Tempo != "" {
		fmt.Fprintf(&b, ", tempo %s", s.Tempo)
	}
	return b.String()
}
