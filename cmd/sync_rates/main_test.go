package main

import (
	"context"
	"testing"
	"time"

	portssvc "github.com/SscSPs/metasettings/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSync struct {
	single []*time.Time
	ranges [][2]time.Time
}

func (r *recordingSync) SyncRates(_ context.Context, date *time.Time) portssvc.SyncResult {
	r.single = append(r.single, date)
	return portssvc.SyncResult{Date: date}
}

func (r *recordingSync) SyncRange(_ context.Context, start, end time.Time) []portssvc.SyncResult {
	r.ranges = append(r.ranges, [2]time.Time{start, end})
	return nil
}

var today = time.Date(2024, time.March, 14, 9, 30, 0, 0, time.UTC)

func TestSyncSnapshots_LatestWithoutDates(t *testing.T) {
	rec := &recordingSync{}

	results, err := syncSnapshots(context.Background(), rec, syncArgs{AppID: "id"}, today)

	require.NoError(t, err)
	assert.Len(t, results, 1)
	require.Len(t, rec.single, 1)
	assert.Nil(t, rec.single[0])
	assert.Empty(t, rec.ranges)
}

func TestSyncSnapshots_MissingEndDefaultsToToday(t *testing.T) {
	rec := &recordingSync{}

	_, err := syncSnapshots(context.Background(), rec, syncArgs{AppID: "id", DateStart: "2024-01-10"}, today)

	require.NoError(t, err)
	require.Len(t, rec.ranges, 1)
	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), rec.ranges[0][0])
	assert.Equal(t, today, rec.ranges[0][1])
}

func TestSyncSnapshots_MissingStartDefaultsToToday(t *testing.T) {
	rec := &recordingSync{}

	_, err := syncSnapshots(context.Background(), rec, syncArgs{AppID: "id", DateEnd: "2024-05-01"}, today)

	require.NoError(t, err)
	require.Len(t, rec.ranges, 1)
	assert.Equal(t, today, rec.ranges[0][0])
}

func TestSyncArgsValidation(t *testing.T) {
	v := validator.New()

	assert.Error(t, v.Struct(syncArgs{}), "app id is required")
	assert.Error(t, v.Struct(syncArgs{AppID: "id", DateStart: "01/02/2024"}))
	assert.NoError(t, v.Struct(syncArgs{AppID: "id", DateStart: "2024-01-02", DateEnd: "2024-02-29"}))
}

func TestRun_MissingAppID(t *testing.T) {
	t.Setenv("OPENEXCHANGERATES_APP_ID", "")

	assert.Equal(t, 1, run([]string{"--date-start", "2024-01-01"}))
}
