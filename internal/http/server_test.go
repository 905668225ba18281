package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"oxigo-server/internal/config"
	"oxigo-server/internal/incidents"
	applog "oxigo-server/internal/logging"
	"oxigo-server/internal/metrics"
	"oxigo-server/internal/registration"
	"oxigo-server/internal/rewards"
	"oxigo-server/internal/sensors"
	"oxigo-server/internal/testutil"
	"oxigo-server/internal/tracks"
	"oxigo-server/internal/users"
)

type testServer struct {
	engine   *gin.Engine
	db       *gorm.DB
	notifier *testutil.Notifier
	metrics  *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	log := applog.Discard()
	notifier := &testutil.Notifier{}
	hasher := &users.BcryptHasher{Cost: bcrypt.MinCost}
	m := metrics.New()

	cfg := &config.Config{
		AllowOrigins:    "*",
		ReqTimeoutSec:   5,
		SessionTTL:      24 * time.Hour,
		RegisterCodeTTL: 20 * time.Minute,
	}
	userSvc := users.NewService(db, hasher)
	engine, err := NewServer(cfg, Deps{
		Users:        userSvc,
		Registration: registration.NewService(db, hasher, notifier, log, cfg.RegisterCodeTTL),
		Incidents:    incidents.NewService(db, userSvc, notifier, log),
		Rewards:      rewards.NewService(db, log),
		Sensors:      sensors.NewService(db, log),
		Tracks:       tracks.NewService(db, log),
		Metrics:      m,
		Log:          log,
	})
	require.NoError(t, err)
	return &testServer{engine: engine, db: db, notifier: notifier, metrics: m}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
