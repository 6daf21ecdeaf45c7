package service_test

import (
	"aloop3/flow/internal/service"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportService_ExportHistory(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sched := e.newSchedule(t, "2024-01-01", 1, 1)
	_, ex := e.trackedWorkout(t, sched.Weeks[0].Days[0], "Squat", 100)
	_, err := e.exerciseSvc.TrackSet(ctx, ex.ID, service.TrackSetInput{SetNumber: 1, Reps: 5, Weight: 100, Completed: true})
	require.NoError(t, err)

	res, err := e.exportSvc.ExportHistory(ctx, e.coach.ID, e.athlete.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Records)
	assert.True(t, strings.HasPrefix(res.ObjectKey, "exports/"+e.athlete.ID+"/"))
	assert.True(t, strings.HasSuffix(res.ObjectKey, ".json"))
	assert.Contains(t, res.DownloadURL, res.ObjectKey)
	assert.False(t, res.ExpiresAt.IsZero())

	body, ok := e.storage.objects[res.ObjectKey]
	require.True(t, ok)
	var doc service.HistoryExport
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, e.athlete.ID, doc.AthleteID)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "Squat", doc.Records[0].ExerciseType)
	assert.Equal(t, 500.0, doc.Records[0].Volume())
}

func TestExportService_Rejects(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.exportSvc.ExportHistory(ctx, e.coach.ID, "")
	assert.ErrorIs(t, err, service.ErrMissingParameter)

	_, err = e.exportSvc.ExportHistory(ctx, "stranger", e.athlete.ID)
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	boom := errors.New("bucket gone")
	e.storage.putErr = boom
	_, err = e.exportSvc.ExportHistory(ctx, e.athlete.ID, e.athlete.ID)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, e.storage.objects)
}
