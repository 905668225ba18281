package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oxigo-server/internal/logging"
)

func TestRenderHTML_VerificationCode(t *testing.T) {
	html, err := RenderHTML(VerificationCode("a@x.com", "654321", 20*time.Minute))
	require.NoError(t, err)

	assert.Contains(t, html, "654321")
	assert.Contains(t, html, "Confirmación de correo")
	assert.Contains(t, html, "El código expira en 20 minutos.")
}

func TestRenderHTML_VerificationCodeUsesTTL(t *testing.T) {
	html, err := RenderHTML(VerificationCode("a@x.com", "654321", 5*time.Minute))
	require.NoError(t, err)
	assert.Contains(t, html, "El código expira en 5 minutos.")
	assert.NotContains(t, html, "20 minutos")
}

func TestExpiresIn(t *testing.T) {
	assert.Equal(t, "20 minutos", ExpiresIn(20*time.Minute))
	assert.Equal(t, "1 minuto", ExpiresIn(time.Minute))
	assert.Equal(t, "1 minuto", ExpiresIn(10*time.Second))
	assert.Equal(t, "2 minutos", ExpiresIn(90*time.Second))
	assert.Equal(t, "1 hora", ExpiresIn(time.Hour))
	assert.Equal(t, "90 minutos", ExpiresIn(90*time.Minute))
	assert.Equal(t, "24 horas", ExpiresIn(24*time.Hour))
}

func TestRenderHTML_IncidentUpdatedListsChanges(t *testing.T) {
	msg := IncidentUpdated("a@x.com", 12, []Change{
		{Field: "state", Old: "OPEN", New: "CLOSED"},
		{Field: "user_handled", Old: nil, New: uint(3)},
	})
	html, err := RenderHTML(msg)
	require.NoError(t, err)

	assert.Contains(t, html, "<b>State</b>")
	assert.Contains(t, html, "OPEN")
	assert.Contains(t, html, "CLOSED")
	assert.Contains(t, html, "<b>User_handled</b>")
	assert.Contains(t, html, "12")
}

func TestRenderHTML_EscapesUserInput(t *testing.T) {
	html, err := RenderHTML(IncidentCreated("a@x.com", 1, "<script>alert(1)</script>"))
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderHTML_UnknownKind(t *testing.T) {
	_, err := RenderHTML(Message{Kind: "nope"})
	assert.Error(t, err)
}

func TestSendGridClient_Send(t *testing.T) {
	var got sgPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewSendGridClient("key", srv.URL, "from@oxigo.app", logging.Discard())
	ok := c.Send(context.Background(), VerificationCode("a@x.com", "111222", 20*time.Minute))

	require.True(t, ok)
	assert.Equal(t, "Bearer key", auth)
	assert.Equal(t, "from@oxigo.app", got.From.Email)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "a@x.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "Tu código de verificación", got.Personalizations[0].Subject)
	assert.Contains(t, got.Content[0].Value, "111222")
}

func TestSendGridClient_FailuresReturnFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	assert.False(t, NewSendGridClient("key", srv.URL, "f@x", logging.Discard()).Send(context.Background(), VerificationCode("a@x.com", "1", 20*time.Minute)))
	assert.False(t, NewSendGridClient("", srv.URL, "f@x", logging.Discard()).Send(context.Background(), VerificationCode("a@x.com", "1", 20*time.Minute)))
	assert.False(t, NewSendGridClient("key", "http://127.0.0.1:1", "f@x", logging.Discard()).Send(context.Background(), VerificationCode("a@x.com", "1", 20*time.Minute)))
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaDispatcher_PublishesJSON(t *testing.T) {
	w := &fakeWriter{}
	k := &KafkaDispatcher{w: w, log: logging.Discard()}

	ok := k.Send(context.Background(), IncidentCreated("a@x.com", 5, "Lectura rara"))

	require.True(t, ok)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "incident_created:5", string(w.msgs[0].Key))

	var decoded Message
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, KindIncidentCreated, decoded.Kind)
	assert.Equal(t, "a@x.com", decoded.To)
	assert.Equal(t, "Lectura rara", decoded.Data["subject"])
}

func TestKafkaDispatcher_WriteErrorReturnsFalse(t *testing.T) {
	k := &KafkaDispatcher{w: &fakeWriter{err: errors.New("no brokers")}, log: logging.Discard()}
	assert.False(t, k.Send(context.Background(), VerificationCode("a@x.com", "1", 20*time.Minute)))
}

func TestLogDispatcher_AlwaysSucceeds(t *testing.T) {
	assert.True(t, NewLogDispatcher(logging.Discard()).Send(context.Background(), VerificationCode("a@x.com", "1", 20*time.Minute)))
}
