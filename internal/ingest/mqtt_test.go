package ingest

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oxigo-server/internal/logging"
	"oxigo-server/internal/models"
	"oxigo-server/internal/sensors"
	"oxigo-server/internal/testutil"
)

type fakeMessage struct {
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return "oxigo/readings" }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type countingRecorder struct{ n atomic.Int32 }

func (r *countingRecorder) ReadingIngested(string) { r.n.Add(1) }

func newTestSubscriber(t *testing.T) (*Subscriber, *countingRecorder, *sensors.Service) {
	t.Helper()
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "alice", "a@x.com")
	testutil.CreateSensor(t, db, u.ID, "s-1")

	store := sensors.NewService(db, logging.Discard())
	rec := &countingRecorder{}
	s := &Subscriber{store: store, rec: rec, log: logging.Discard(), timeout: time.Second}
	return s, rec, store
}

func TestHandle_StoresReading(t *testing.T) {
	s, rec, store := newTestSubscriber(t)

	s.handle(nil, fakeMessage{payload: []byte(`{"associated_uuid":"s-1","gasType":"O3","gas":12.5,"temperature":21}`)})

	assert.EqualValues(t, 1, rec.n.Load())
	got, err := store.ReadingsForDay(context.Background(), time.Now(), "O3")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Reading{
		ID:          got[0].ID,
		SensorUUID:  "s-1",
		TakenAt:     got[0].TakenAt,
		GasType:     "O3",
		GasValue:    12.5,
		Temperature: 21,
	}, got[0])
}

func TestHandle_RejectsBadPayloads(t *testing.T) {
	s, rec, _ := newTestSubscriber(t)

	for _, payload := range []string{
		`not json`,
		`{"gas":1}`,
		`{"associated_uuid":"unknown","gas":1}`,
	} {
		s.handle(nil, fakeMessage{payload: []byte(payload)})
	}
	assert.Zero(t, rec.n.Load())
}

func TestIngest_MissingUUID(t *testing.T) {
	s, _, _ := newTestSubscriber(t)
	err := s.ingest(context.Background(), []byte(`{"gas":3}`))
	assert.ErrorIs(t, err, errMissingUUID)
}
