// Package notify delivers user notifications (verification codes, incident
// updates) after the owning transaction has committed. Delivery is best
// effort: a Dispatcher reports success as a bool and never fails its caller.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

type Kind string

const (
	KindVerificationCode Kind = "verification_code"
	KindIncidentCreated  Kind = "incident_created"
	KindIncidentUpdated  Kind = "incident_updated"
)

type Message struct {
	Kind    Kind           `json:"kind"`
	To      string         `json:"to"`
	Subject string         `json:"subject"`
	Data    map[string]any `json:"data"`
}

// Change is one field of an incident that moved from Old to New.
type Change struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// Dispatcher is the outbound collaborator. Send must not panic and reports
// delivery failure through its return value only.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) bool
}

// Notifier accepts messages for asynchronous delivery. Services call it only
// after their transaction committed.
type Notifier interface {
	Enqueue(msg Message) bool
}

// VerificationCode carries the code and how long it stays valid.
func VerificationCode(to, code string, ttl time.Duration) Message {
	return Message{
		Kind:    KindVerificationCode,
		To:      to,
		Subject: "Tu código de verificación",
		Data:    map[string]any{"code": code, "expires_in": ExpiresIn(ttl)},
	}
}

// ExpiresIn spells ttl in Spanish, in whole hours when it divides evenly and
// in minutes (rounded up) otherwise.
func ExpiresIn(ttl time.Duration) string {
	if ttl >= time.Hour && ttl%time.Hour == 0 {
		return plural(int(ttl/time.Hour), "hora", "horas")
	}
	mins := int((ttl + time.Minute - 1) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	return plural(mins, "minuto", "minutos")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func IncidentCreated(to string, incidentID uint, subject string) Message {
	return Message{
		Kind:    KindIncidentCreated,
		To:      to,
		Subject: "Tu incidencia ha sido creada",
		Data:    map[string]any{"incident_id": incidentID, "subject": subject},
	}
}

func IncidentUpdated(to string, incidentID uint, changes []Change) Message {
	return Message{
		Kind:    KindIncidentUpdated,
		To:      to,
		Subject: "Tu incidencia ha sido actualizada",
		Data:    map[string]any{"incident_id": incidentID, "changes": changes},
	}
}

// Key is used for partitioning and log correlation.
func (m Message) Key() string {
	if id, ok := m.Data["incident_id"].(uint); ok {
		return string(m.Kind) + ":" + strconv.FormatUint(uint64(id), 10)
	}
	return string(m.Kind) + ":" + m.To
}
