package rewards

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/logging"
	"oxigo-server/internal/models"
	"oxigo-server/internal/testutil"
)

func TestClaim(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewService(db, logging.Discard())
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", "a@x.com")
	bob := testutil.CreateUser(t, db, "bob", "b@x.com")
	r := testutil.CreateReward(t, db, alice.ID, "10% descuento")

	t.Run("not found", func(t *testing.T) {
		_, err := s.Claim(ctx, r.ID+100, alice.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("other owner", func(t *testing.T) {
		_, err := s.Claim(ctx, r.ID, bob.ID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("owner claims once", func(t *testing.T) {
		got, err := s.Claim(ctx, r.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, &Claimed{ID: r.ID, State: models.RewardClaimed}, got)

		_, err = s.Claim(ctx, r.ID, alice.ID)
		assert.ErrorIs(t, err, apperr.ErrBadRequest)
	})
}

// The test DB has a single connection, so these claims are serialized and
// exercise the state check rather than the lock.
func TestClaim_ConcurrentSingleWinner(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewService(db, logging.Discard())
	alice := testutil.CreateUser(t, db, "alice", "a@x.com")
	r := testutil.CreateReward(t, db, alice.ID, "badge")

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Claim(context.Background(), r.ID, alice.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	for _, err := range errs {
		assert.ErrorIs(t, err, apperr.ErrBadRequest)
	}
}

func TestClaim_LosesWhenStateChangesBeforeUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewService(db, logging.Discard())
	alice := testutil.CreateUser(t, db, "alice", "a@x.com")
	r := testutil.CreateReward(t, db, alice.ID, "badge")

	// another claimer commits between the read and the conditional UPDATE
	var stolen bool
	err := db.Callback().Update().Before("gorm:update").Register("test:steal_claim", func(d *gorm.DB) {
		if stolen || d.Statement.Table != "rewards" {
			return
		}
		stolen = true
		d.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE rewards SET state = ? WHERE id = ?", models.RewardClaimed, r.ID)
	})
	require.NoError(t, err)

	_, err = s.Claim(context.Background(), r.ID, alice.ID)
	assert.True(t, stolen)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
	assert.Equal(t, "La recompensa ya ha sido reclamada", apperr.Message(err))
}

func TestGrantAndList(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewService(db, logging.Discard())
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", "a@x.com")

	granted, err := s.Grant(ctx, alice.ID, "badge")
	require.NoError(t, err)
	assert.Equal(t, models.RewardUnclaimed, granted.State)

	_, err = s.Grant(ctx, alice.ID+1, "badge")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	list, err := s.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "badge", list[0].Description)

	empty, err := s.ListByUser(ctx, alice.ID+1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
