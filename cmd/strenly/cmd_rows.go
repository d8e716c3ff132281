package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	exerciseStore "strenly/internal/adapters/storage/exercise"
	programStore "strenly/internal/adapters/storage/program"
	"strenly/internal/application/orchestrators"
)

var (
	rowNotes      string
	rowSplitLabel string
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Edit the exercise rows of a session",
}

var rowsAddCmd = &cobra.Command{
	Use:   "add <session-id> <exercise-id>",
	Short: "Append an exercise row to a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		input := orchestrators.AddExerciseRowInput{Org: a.owner(), SessionID: args[0], ExerciseID: args[1]}
		if rowNotes != "" {
			input.Notes = &rowNotes
		}
		deps := orchestrators.AddExerciseRowDeps{
			RowStore:   programStore.NewSQLiteStore(a.db),
			Exercises:  exerciseStore.NewSQLiteStore(a.db),
			GenerateID: newID,
			Now:        time.Now,
		}
		row, err := orchestrators.ExecuteAddExerciseRow(cmd.Context(), input, deps)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", row.ID, row.OrderIndex, row.ExerciseName)
		return nil
	},
}

var rowsSplitCmd = &cobra.Command{
	Use:   "split <row-id>",
	Short: "Add a sub-row of the same exercise after a row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		input := orchestrators.AddSplitRowInput{Org: a.owner(), ParentRowID: args[0], SetTypeLabel: rowSplitLabel}
		deps := orchestrators.AddSplitRowDeps{
			RowStore:   programStore.NewSQLiteStore(a.db),
			GenerateID: newID,
			Now:        time.Now,
		}
		row, err := orchestrators.ExecuteAddSplitRow(cmd.Context(), input, deps)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", row.ID, row.OrderIndex)
		return nil
	},
}

var rowsPrescribeCmd = &cobra.Command{
	Use:   "prescribe <row-id> <notation>",
	Short: "Replace a row's sets with a notation string",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		input := orchestrators.UpdatePrescriptionInput{
			Org:      a.owner(),
			RowID:    args[0],
			Notation: strings.Join(args[1:], " "),
		}
		deps := orchestrators.UpdatePrescriptionDeps{RowStore: programStore.NewSQLiteStore(a.db)}
		result, err := orchestrators.ExecuteUpdatePrescription(cmd.Context(), input, deps)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d sets\n", result.RowID, result.Notation, len(result.Series))
		return nil
	},
}

var rowsDeleteCmd = &cobra.Command{
	Use:   "delete <row-id>",
	Short: "Delete a row with its sub-rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		input := orchestrators.DeleteExerciseRowInput{Org: a.owner(), RowID: args[0]}
		deps := orchestrators.DeleteExerciseRowDeps{RowStore: programStore.NewSQLiteStore(a.db)}
		return orchestrators.ExecuteDeleteExerciseRow(cmd.Context(), input, deps)
	},
}

var rowsReorderCmd = &cobra.Command{
	Use:   "reorder <session-id> <row-id>...",
	Short: "Reorder a session's rows; omitted rows keep their order at the end",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		input := orchestrators.ReorderExerciseRowsInput{Org: a.owner(), SessionID: args[0], RowIDs: args[1:]}
		deps := orchestrators.ReorderExerciseRowsDeps{RowStore: programStore.NewSQLiteStore(a.db)}
		order, err := orchestrators.ExecuteReorderExerciseRows(cmd.Context(), input, deps)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(order, " "))
		return nil
	},
}

var rowsGroupCmd = &cobra.Command{
	Use:   "group <row-id> [group-id]",
	Short: "Put a row and its sub-rows in a group; without a group id, take them out",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		input := orchestrators.ToggleSupersetInput{Org: a.owner(), RowID: args[0]}
		if len(args) == 2 {
			input.GroupID = args[1]
		}
		deps := orchestrators.ToggleSupersetDeps{RowStore: programStore.NewSQLiteStore(a.db)}
		row, err := orchestrators.ExecuteToggleSuperset(cmd.Context(), input, deps)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s	%d	%s\n", row.ID, row.OrderIndex, row.GroupID)
		return nil
	},
}

func init() {
	rowsAddCmd.Flags().StringVar(&rowNotes, "notes", "", "Coach notes for the row")
	rowsSplitCmd.Flags().StringVar(&rowSplitLabel, "label", "Back-off", "Set type label of the sub-row")

	rowsCmd.AddCommand(rowsAddCmd)
	rowsCmd.AddCommand(rowsSplitCmd)
	rowsCmd.AddCommand(rowsPrescribeCmd)
	rowsCmd.AddCommand(rowsDeleteCmd)
	rowsCmd.AddCommand(rowsReorderCmd)
	rowsCmd.AddCommand(rowsGroupCmd)
}

func newID() string {
	return uuid.New().String()
}
