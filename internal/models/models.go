package models

// All lists every table, in migration order.
func All() []any {
	return []any{
		&User{},
		&PendingRegistration{},
		&Sensor{},
		&Reading{},
		&Track{},
		&TrackPoint{},
		&Incident{},
		&Reward{},
	}
}
