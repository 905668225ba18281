package sensors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/logging"
	"oxigo-server/internal/models"
	"oxigo-server/internal/testutil"
)

func newService(t *testing.T) (*Service, *gorm.DB, *testutil.Clock) {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2025, 10, 29, 8, 15, 0, 0, time.UTC))
	s := NewService(db, logging.Discard())
	s.now = clock.Now
	return s, db, clock
}

func TestBind(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "alice", "a@x.com")

	sensor, err := s.Bind(ctx, u.ID, "s-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sensor.UserID)

	_, err = s.Bind(ctx, u.ID, "s-1")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.Bind(ctx, u.ID+10, "s-2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUnbind(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "alice", "a@x.com")
	other := testutil.CreateUser(t, db, "bob", "b@x.com")

	_, err := s.Unbind(ctx, u.ID, false, "s-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound, "no sensors yet")

	testutil.CreateSensor(t, db, u.ID, "s-1")
	testutil.CreateSensor(t, db, u.ID, "s-2")
	testutil.CreateSensor(t, db, other.ID, "s-3")

	_, err = s.Unbind(ctx, u.ID, false, "")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = s.Unbind(ctx, u.ID, false, "s-3")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	res, err := s.Unbind(ctx, u.ID, false, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", res.Target)

	res, err = s.Unbind(ctx, u.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, EraseAll, res.Target)

	left, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "s-3", left[0].UUID)

	_, err = s.Unbind(ctx, 999, true, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddReading_BumpsLastActive(t *testing.T) {
	s, db, clock := newService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "alice", "a@x.com")
	testutil.CreateSensor(t, db, u.ID, "s-1")
	clock.Advance(time.Minute)

	pos := "39.47,-0.37"
	r, err := s.AddReading(ctx, ReadingInput{UUID: "s-1", GasType: "O3", Gas: 41.5, Temperature: 19.2, Position: &pos})
	require.NoError(t, err)
	assert.NotZero(t, r.ID)

	var sensor models.Sensor
	require.NoError(t, db.First(&sensor, "uuid = ?", "s-1").Error)
	assert.True(t, sensor.LastActive.Equal(clock.Now()))

	_, err = s.AddReading(ctx, ReadingInput{UUID: "missing", Gas: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReadingsForDay(t *testing.T) {
	s, db, clock := newService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "alice", "a@x.com")
	testutil.CreateSensor(t, db, u.ID, "s-1")

	_, err := s.AddReading(ctx, ReadingInput{UUID: "s-1", GasType: "O3", Gas: 10})
	require.NoError(t, err)
	_, err = s.AddReading(ctx, ReadingInput{UUID: "s-1", GasType: "NO2", Gas: 20})
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	_, err = s.AddReading(ctx, ReadingInput{UUID: "s-1", GasType: "O3", Gas: 30})
	require.NoError(t, err)

	day := time.Date(2025, 10, 29, 0, 0, 0, 0, time.UTC)
	all, err := s.ReadingsForDay(ctx, day, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	o3, err := s.ReadingsForDay(ctx, day, "O3")
	require.NoError(t, err)
	require.Len(t, o3, 1)
	assert.Equal(t, 10.0, o3[0].GasValue)

	today, err := s.TodayForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, 30.0, today[0].GasValue)
}

func TestReadingsForUser_OnlyOwnedSensors(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "alice", "a@x.com")
	other := testutil.CreateUser(t, db, "bob", "b@x.com")
	testutil.CreateSensor(t, db, u.ID, "s-1")
	testutil.CreateSensor(t, db, other.ID, "s-2")

	_, err := s.AddReading(ctx, ReadingInput{UUID: "s-1", GasType: "O3", Gas: 1})
	require.NoError(t, err)
	_, err = s.AddReading(ctx, ReadingInput{UUID: "s-2", GasType: "O3", Gas: 2})
	require.NoError(t, err)

	got, err := s.TodayForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s-1", got[0].SensorUUID)

	_, err = s.TodayForUser(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHourlySummary(t *testing.T) {
	s, db, clock := newService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "alice", "a@x.com")
	testutil.CreateSensor(t, db, u.ID, "s-1")

	for _, in := range []ReadingInput{
		{UUID: "s-1", GasType: "O3", Gas: 10, Temperature: 18},
		{UUID: "s-1", GasType: "O3", Gas: 30, Temperature: 20},
		{UUID: "s-1", GasType: "NO2", Gas: 5, Temperature: 20},
	} {
		_, err := s.AddReading(ctx, in)
		require.NoError(t, err)
	}
	clock.Advance(2 * time.Hour)
	_, err := s.AddReading(ctx, ReadingInput{UUID: "s-1", GasType: "O3", Gas: 50, Temperature: 22})
	require.NoError(t, err)

	sum, err := s.HourlySummary(ctx, u.ID, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, "2025-10-29", sum.Date)
	assert.Equal(t, 4, sum.Readings)
	require.Len(t, sum.Hours, 3)

	assert.Equal(t, HourlyAverage{Hour: 8, GasType: "NO2", Gas: 5, MaxGas: 5, Temperature: 20, Count: 1}, sum.Hours[0])
	assert.Equal(t, HourlyAverage{Hour: 8, GasType: "O3", Gas: 20, MaxGas: 30, Temperature: 19, Count: 2}, sum.Hours[1])
	assert.Equal(t, 10, sum.Hours[2].Hour)
}
