package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"strenly/internal/domain/authz"
	"strenly/internal/domain/exercise"
	"strenly/internal/domain/program"

	"github.com/google/uuid"
)

// ProgramStoreForSeed defines the store interface needed by SeedTemplates.
type ProgramStoreForSeed interface {
	ProgramStoreForAggregate
	CountPrograms(ctx context.Context, org authz.OrgContext) (int, error)
}

// ExerciseStoreForSeed defines the store interface needed by SeedTemplates.
// List returns curated exercises plus the organization's own.
type ExerciseStoreForSeed interface {
	Save(ctx context.Context, ex exercise.Exercise) error
	List(ctx context.Context, org authz.OrgContext) ([]exercise.Exercise, error)
}

// SeedTemplatesInput carries input for the seed templates orchestrator.
type SeedTemplatesInput struct {
	Org authz.OrgContext
}

// SeedTemplatesDeps holds dependencies for SeedTemplates.
type SeedTemplatesDeps struct {
	ProgramStore  ProgramStoreForSeed
	ExerciseStore ExerciseStoreForSeed
	Now           func() time.Time
}

type templateRow struct {
	exercise string
	weeks    []string // notation per week
}

type templateGroup struct {
	name string
	rows []templateRow
}

type templateSession struct {
	name   string
	groups []templateGroup
}

type programTemplate struct {
	name        string
	description string
	weeks       int
	sessions    []templateSession
}

var curatedExercises = []string{
	"Back Squat",
	"Bench Press",
	"Deadlift",
	"Overhead Press",
	"Barbell Row",
	"Pull-Up",
	"Romanian Deadlift",
	"Split Squat",
}

var defaultTemplates = []programTemplate{
	{
		name:        "Strength Foundations",
		description: "Three week linear block for the main lifts.",
		weeks:       3,
		sessions: []templateSession{
			{
				name: "Day A",
				groups: []templateGroup{
					{rows: []templateRow{{exercise: "Back Squat", weeks: []string{"3x5@70%", "3x5@75%", "1x3@85% + 2x5@75%"}}}},
					{rows: []templateRow{{exercise: "Bench Press", weeks: []string{"3x5@70%", "3x5@75%", "1x3@85% + 2x5@75%"}}}},
					{name: "Pull superset", rows: []templateRow{
						{exercise: "Barbell Row", weeks: []string{"3x10@RPE7", "3x10@RPE7.5", "3x8@RPE8"}},
						{exercise: "Pull-Up", weeks: []string{"3xAMRAP", "3xAMRAP", "3xAMRAP"}},
					}},
				},
			},
			{
				name: "Day B",
				groups: []templateGroup{
					{rows: []templateRow{{exercise: "Deadlift", weeks: []string{"3x5@70%", "3x5@75%", "1x3@85%"}}}},
					{rows: []templateRow{{exercise: "Overhead Press", weeks: []string{"3x8-10@RIR2", "3x8-10@RIR2", "3x6-8@RIR1"}}}},
					{name: "Accessories", rows: []templateRow{
						{exercise: "Romanian Deadlift", weeks: []string{"3x10 (3010)", "3x10 (3010)", "3x8 (3010)"}},
						{exercise: "Split Squat", weeks: []string{"2x12/leg", "3x10/leg", "3x8/leg"}},
					}},
				},
			},
		},
	},
}

// ExecuteSeedTemplates creates the curated exercise catalog and default
// template programs if the organization has no programs yet.
// Templates go through SaveDraft, so every seeded aggregate is validated.
func ExecuteSeedTemplates(ctx context.Context, input SeedTemplatesInput, deps SeedTemplatesDeps) error {
	existing, err := deps.ProgramStore.CountPrograms(ctx, input.Org)
	if err != nil {
		return repositoryFailure("seed_templates", err)
	}
	if existing > 0 {
		return nil // Already seeded
	}

	exerciseIDs, created, err := seedExercises(ctx, input.Org, deps)
	if err != nil {
		return err
	}

	for _, t := range defaultTemplates {
		draft, err := t.draft(exerciseIDs)
		if err != nil {
			return err
		}
		if _, err := ExecuteSaveDraft(ctx, SaveDraftInput{
			Org:       input.Org,
			ProgramID: uuid.New().String(),
			Program:   draft,
		}, SaveDraftDeps{ProgramStore: deps.ProgramStore, Now: deps.Now}); err != nil {
			return err
		}
	}

	slog.Info("seed_event", "event", "templates_seeded", "organization_id", input.Org.OrganizationID,
		"programs", len(defaultTemplates), "exercises", created)
	return nil
}

// seedExercises returns exercise ids by name, creating curated entries that
// are missing.
func seedExercises(ctx context.Context, org authz.OrgContext, deps SeedTemplatesDeps) (map[string]string, int, error) {
	current, err := deps.ExerciseStore.List(ctx, org)
	if err != nil {
		return nil, 0, repositoryFailure("seed_templates", err)
	}
	ids := make(map[string]string, len(current))
	for _, ex := range current {
		ids[ex.Name] = ex.ID
	}

	created := 0
	for _, name := range curatedExercises {
		if _, ok := ids[name]; ok {
			continue
		}
		ex := exercise.Exercise{ID: uuid.New().String(), Name: name, CreatedAt: deps.Now()}
		if err := ex.Validate(); err != nil {
			return nil, 0, validationFailed(err)
		}
		if err := deps.ExerciseStore.Save(ctx, ex); err != nil {
			return nil, 0, repositoryFailure("seed_templates", err)
		}
		ids[name] = ex.ID
		created++
	}
	return ids, created, nil
}

func (t programTemplate) draft(exerciseIDs map[string]string) (DraftProgram, error) {
	description := t.description
	weeks := make([]program.WeekInput, 0, t.weeks)
	for w := range t.weeks {
		sessions := make([]program.SessionInput, 0, len(t.sessions))
		for s, ts := range t.sessions {
			sessionID := uuid.New().String()
			groups := make([]program.ExerciseGroupInput, 0, len(ts.groups))
			for g, tg := range ts.groups {
				items := make([]program.GroupItemInput, 0, len(tg.rows))
				for i, tr := range tg.rows {
					exerciseID, ok := exerciseIDs[tr.exercise]
					if !ok {
						return DraftProgram{}, fmt.Errorf("template %q: exercise %q not seeded", t.name, tr.exercise)
					}
					series, err := SeriesInputsFromNotation(tr.weeks[w])
					if err != nil {
						return DraftProgram{}, err
					}
					items = append(items, program.GroupItemInput{
						ID:         uuid.New().String(),
						ExerciseID: exerciseID,
						OrderIndex: i,
						Series:     series,
					})
				}
				group := program.ExerciseGroupInput{ID: uuid.New().String(), SessionID: sessionID, OrderIndex: g, Items: items}
				if tg.name != "" {
					name := tg.name
					group.Name = &name
				}
				groups = append(groups, group)
			}
			sessions = append(sessions, program.SessionInput{ID: sessionID, Name: ts.name, OrderIndex: s, ExerciseGroups: groups})
		}
		weeks = append(weeks, program.WeekInput{ID: uuid.New().String(), OrderIndex: w, Sessions: sessions})
	}

	return DraftProgram{
		Name:        t.name,
		Description: &description,
		IsTemplate:  true,
		Status:      program.StatusDraft,
		Weeks:       weeks,
	}, nil
}
