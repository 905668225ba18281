package incidents

import (
	"oxigo-server/internal/models"
	"oxigo-server/internal/notify"
)

// Patch carries the fields an update supplies. Nil means "not supplied".
type Patch struct {
	Subject     *string
	Description *string
	UserHandled *uint
	State       *string
}

func (p Patch) columns() map[string]any {
	cols := map[string]any{}
	if p.Subject != nil {
		cols["subject"] = *p.Subject
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.UserHandled != nil {
		cols["user_handled"] = *p.UserHandled
	}
	if p.State != nil {
		cols["state"] = *p.State
	}
	return cols
}

// Diff lists the supplied fields whose value differs from cur, in the
// order subject, description, user_handled, state.
func Diff(cur models.Incident, p Patch) []notify.Change {
	var out []notify.Change
	if p.Subject != nil && *p.Subject != cur.Subject {
		out = append(out, notify.Change{Field: "subject", Old: cur.Subject, New: *p.Subject})
	}
	if p.Description != nil && *p.Description != cur.Description {
		out = append(out, notify.Change{Field: "description", Old: cur.Description, New: *p.Description})
	}
	if p.UserHandled != nil && (cur.UserHandled == nil || *cur.UserHandled != *p.UserHandled) {
		var old any
		if cur.UserHandled != nil {
			old = *cur.UserHandled
		}
		out = append(out, notify.Change{Field: "user_handled", Old: old, New: *p.UserHandled})
	}
	if p.State != nil && *p.State != cur.State {
		out = append(out, notify.Change{Field: "state", Old: cur.State, New: *p.State})
	}
	return out
}
