package tracks

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/logging"
	"oxigo-server/internal/models"
	"oxigo-server/internal/testutil"
)

func TestTrackLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2025, 12, 23, 17, 0, 0, 0, time.UTC))
	s := NewService(db, logging.Discard())
	s.now = clock.Now
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "alice", "a@x.com")

	_, err := s.Create(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	created, err := s.Create(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Track created successfully", created.Message)

	_, err = s.AddPoint(ctx, created.ID+1, NewPoint(-0.37, 39.47))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.AddPoint(ctx, created.ID, Point{Type: "LineString"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	second, err := s.AddPoint(ctx, created.ID, NewPoint(-0.36, 39.48))
	require.NoError(t, err)
	assert.Equal(t, created.ID, second.TrackID)
	clock.Advance(time.Minute)
	_, err = s.AddPoint(ctx, created.ID, NewPoint(-0.35, 39.49))
	require.NoError(t, err)

	points, err := s.Points(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].RecordedAt.Before(points[1].RecordedAt))

	var first Point
	require.NoError(t, json.Unmarshal(points[0].Location, &first))
	assert.Equal(t, NewPoint(-0.36, 39.48), first)

	list, err := s.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	del, err := s.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, del.Deleted)

	var n int64
	require.NoError(t, db.Model(&models.TrackPoint{}).Count(&n).Error)
	assert.Zero(t, n)

	del, err = s.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, del.Deleted)
	assert.Equal(t, "Track not found", del.Message)

	_, err = s.Points(ctx, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
