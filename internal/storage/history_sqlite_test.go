package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	history, err := OpenHistory(HistoryPath(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })
	return history
}

func TestHistoryRecordAndList(t *testing.T) {
	history := openTestHistory(t)
	ctx := context.Background()
	start := time.Date(2026, 5, 4, 7, 30, 0, 0, time.UTC)

	first, err := history.Record(ctx, SessionRecord{
		SchemaID:   "schema-1",
		SchemaName: "Tabata",
		StartedAt:  start,
		EndedAt:    start.Add(4 * time.Minute),
		Planned:    4 * time.Minute,
		Completed:  4 * time.Minute,
		Outcome:    OutcomeCompleted,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = history.Record(ctx, SessionRecord{
		SchemaID:   "schema-2",
		SchemaName: "Pyramid",
		StartedAt:  start.Add(24 * time.Hour),
		EndedAt:    start.Add(24*time.Hour + 90*time.Second),
		Planned:    10 * time.Minute,
		Completed:  90 * time.Second,
		Outcome:    OutcomeStopped,
	})
	require.NoError(t, err)

	records, err := history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Pyramid", records[0].SchemaName)
	assert.Equal(t, OutcomeStopped, records[0].Outcome)
	assert.Equal(t, 90*time.Second, records[0].Completed)

	assert.Equal(t, first.ID, records[1].ID)
	assert.True(t, start.Equal(records[1].StartedAt))
	assert.Equal(t, 4*time.Minute, records[1].Planned)

	limited, err := history.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestHistoryRejectsUnknownOutcome(t *testing.T) {
	history := openTestHistory(t)
	_, err := history.Record(context.Background(), SessionRecord{
		SchemaID:  "schema-1",
		StartedAt: time.Now(),
		EndedAt:   time.Now(),
		Outcome:   Outcome("abandoned"),
	})
	assert.Error(t, err)
}
