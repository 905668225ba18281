// Package testutil holds helpers shared by package tests: an in-memory
// store with the full schema, fixtures and a recording notifier.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"oxigo-server/internal/database"
	"oxigo-server/internal/models"
	"oxigo-server/internal/notify"
)

// NewDB opens a private in-memory sqlite database with every table migrated.
// A single connection is used, so code under test must not touch the root
// handle while it holds a transaction.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user whose password is "pw-"+username.
func CreateUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw-"+username), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	u := &models.User{Username: username, Email: email, PasswordHash: string(hash), RegisteredAt: now, LastLoginAt: now}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateSensor(t *testing.T, db *gorm.DB, userID uint, uuid string) *models.Sensor {
	t.Helper()
	s := &models.Sensor{UUID: uuid, UserID: userID, LastActive: time.Now()}
	require.NoError(t, db.Create(s).Error)
	return s
}

func CreateReward(t *testing.T, db *gorm.DB, userID uint, description string) *models.Reward {
	t.Helper()
	r := &models.Reward{UserID: userID, Description: description, State: models.RewardUnclaimed}
	require.NoError(t, db.Create(r).Error)
	return r
}

// Notifier records every enqueued message.
type Notifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *Notifier) Enqueue(msg notify.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return true
}

func (n *Notifier) Messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.msgs...)
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
