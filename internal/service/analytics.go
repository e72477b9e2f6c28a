package service

import (
	"context"
	"time"

	"workspace-service/internal/model"
	"workspace-service/internal/store"
	"workspace-service/internal/telemetry"
	"workspace-service/prometheus"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Clock supplies the current time to the analytics engine
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Scope selects the tasks an analytics snapshot covers
type Scope struct {
	Kind  string
	Field string
	ID    string
}

func WorkspaceScope(workspaceID string) Scope {
	return Scope{Kind: "workspace", Field: "workspace_id", ID: workspaceID}
}

func ProjectScope(projectID string) Scope {
	return Scope{Kind: "project", Field: "project_id", ID: projectID}
}

type Measure string

const (
	MeasureTasks      Measure = "tasks"
	MeasureAssignee   Measure = "assignee_tasks"
	MeasureCompleted  Measure = "completed_tasks"
	MeasureIncomplete Measure = "incomplete_tasks"
	MeasureOverdue    Measure = "overdue_tasks"
)

type measureDef struct {
	measure Measure
	filters func(now time.Time, memberID string) []store.Filter
}

// measures is evaluated once per period. Each entry adds its filters to the scope and
// the created_at range.
var measures = []measureDef{
	{MeasureTasks, func(time.Time, string) []store.Filter { return nil }},
	{MeasureAssignee, func(_ time.Time, memberID string) []store.Filter {
		return []store.Filter{store.Equal("assignee_id", memberID)}
	}},
	{MeasureCompleted, func(time.Time, string) []store.Filter {
		return []store.Filter{store.Equal("status", model.StatusDone)}
	}},
	{MeasureIncomplete, func(time.Time, string) []store.Filter {
		return []store.Filter{store.NotEqual("status", model.StatusDone)}
	}},
	{MeasureOverdue, func(now time.Time, _ string) []store.Filter {
		return []store.Filter{
			store.NotEqual("status", model.StatusDone),
			store.LessThan("due_date", now),
		}
	}},
}

// MeasureCount is one measure over the current and previous month
type MeasureCount struct {
	Measure  Measure
	Current  int
	Previous int
	Delta    int
}

// Snapshot is the result of one analytics computation
type Snapshot struct {
	Scope    Scope
	Now      time.Time
	Measures []MeasureCount
}

// Get returns the counts for a measure; the zero value if it was not computed
func (s Snapshot) Get(m Measure) MeasureCount {
	for _, mc := range s.Measures {
		if mc.Measure == m {
			return mc
		}
	}
	return MeasureCount{Measure: m}
}

func (s Snapshot) Analytics() model.Analytics {
	tasks := s.Get(MeasureTasks)
	assignee := s.Get(MeasureAssignee)
	completed := s.Get(MeasureCompleted)
	incomplete := s.Get(MeasureIncomplete)
	overdue := s.Get(MeasureOverdue)

	return model.Analytics{
		CurrentTasksCount:            tasks.Current,
		PreviousTasksCount:           tasks.Previous,
		TasksDifference:              tasks.Delta,
		CurrentAssigneeTasksCount:    assignee.Current,
		PreviousAssigneeTasksCount:   assignee.Previous,
		AssigneeTasksDifference:      assignee.Delta,
		CurrentCompletedTasksCount:   completed.Current,
		PreviousCompletedTasksCount:  completed.Previous,
		CompletedTasksDifference:     completed.Delta,
		CurrentIncompleteTasksCount:  incomplete.Current,
		PreviousIncompleteTasksCount: incomplete.Previous,
		IncompleteTasksDifference:    incomplete.Delta,
		CurrentOverdueTasksCount:     overdue.Current,
		PreviousOverdueTasksCount:    overdue.Previous,
		OverdueTasksDifference:       overdue.Delta,
	}
}

// MonthBounds returns the first and last instant of t's calendar month in t's location
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// PreviousMonthBounds returns the bounds of the month before t's month
func PreviousMonthBounds(t time.Time) (time.Time, time.Time) {
	currentStart, _ := MonthBounds(t)
	return MonthBounds(currentStart.AddDate(0, 0, -1))
}

// AnalyticsEngine computes month-over-month task metrics. Every call issues fresh
// counts against the store.
type AnalyticsEngine struct {
	tasks store.Collection[model.Task]
	clock Clock
}

func NewAnalyticsEngine(tasks store.Collection[model.Task], clock Clock) *AnalyticsEngine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AnalyticsEngine{tasks: tasks, clock: clock}
}

// Compute counts every measure for the current and previous month. memberID is the
// caller's membership id used by the assignee measure.
func (e *AnalyticsEngine) Compute(ctx context.Context, scope Scope, memberID string) (Snapshot, error) {
	defer prometheus.TrackAnalytics(scope.Kind)(time.Now())
	ctx, span := telemetry.Tracer().Start(ctx, "analytics.compute")
	defer span.End()
	span.SetAttributes(
		attribute.String("analytics.scope", scope.Kind),
		attribute.String("analytics.scope_id", scope.ID),
	)

	now := e.clock.Now()
	currentStart, currentEnd := MonthBounds(now)
	previousStart, previousEnd := PreviousMonthBounds(now)

	snapshot := Snapshot{Scope: scope, Now: now, Measures: make([]MeasureCount, 0, len(measures))}
	for _, def := range measures {
		extra := def.filters(now, memberID)

		current, err := e.count(ctx, scope, extra, currentStart, currentEnd)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "count failed")
			return Snapshot{}, storeError("tasks not found", err)
		}
		previous, err := e.count(ctx, scope, extra, previousStart, previousEnd)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "count failed")
			return Snapshot{}, storeError("tasks not found", err)
		}

		snapshot.Measures = append(snapshot.Measures, MeasureCount{
			Measure:  def.measure,
			Current:  current,
			Previous: previous,
			Delta:    current - previous,
		})
	}
	return snapshot, nil
}

func (e *AnalyticsEngine) count(ctx context.Context, scope Scope, extra []store.Filter, start, end time.Time) (int, error) {
	filters := make([]store.Filter, 0, len(extra)+3)
	filters = append(filters, store.Equal(scope.Field, scope.ID))
	filters = append(filters, extra...)
	filters = append(filters,
		store.GreaterOrEqual("created_at", start),
		store.LessOrEqual("created_at", end),
	)
	return e.tasks.Count(ctx, filters...)
}
