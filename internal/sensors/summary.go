package sensors

import (
	"context"
	"sort"
	"time"
)

type HourlyAverage struct {
	Hour        int     `json:"hour"`
	GasType     string  `json:"gas_type"`
	Gas         float64 `json:"gas"`
	MaxGas      float64 `json:"max_gas"`
	Temperature float64 `json:"temperature"`
	Count       int     `json:"count"`
}

type Summary struct {
	Date     string          `json:"date"`
	Readings int             `json:"readings"`
	Hours    []HourlyAverage `json:"hours"`
}

type hourKey struct {
	hour int
	gas  string
}

type hourAcc struct {
	gas, temp, max float64
	n              int
}

// HourlySummary aggregates userID's readings of day into per-hour, per-gas
// averages. Hours without readings are omitted.
func (s *Service) HourlySummary(ctx context.Context, userID uint, day time.Time) (*Summary, error) {
	readings, err := s.ReadingsForUser(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	acc := make(map[hourKey]*hourAcc)
	for _, r := range readings {
		k := hourKey{hour: r.TakenAt.In(day.Location()).Hour(), gas: r.GasType}
		a, ok := acc[k]
		if !ok {
			a = &hourAcc{max: r.GasValue}
			acc[k] = a
		}
		a.gas += r.GasValue
		a.temp += r.Temperature
		if r.GasValue > a.max {
			a.max = r.GasValue
		}
		a.n++
	}

	res := &Summary{
		Date:     day.Format(time.DateOnly),
		Readings: len(readings),
		Hours:    []HourlyAverage{},
	}
	for k, a := range acc {
		res.Hours = append(res.Hours, HourlyAverage{
			Hour:        k.hour,
			GasType:     k.gas,
			Gas:         a.gas / float64(a.n),
			MaxGas:      a.max,
			Temperature: a.temp / float64(a.n),
			Count:       a.n,
		})
	}
	sort.Slice(res.Hours, func(i, j int) bool {
		if res.Hours[i].Hour != res.Hours[j].Hour {
			return res.Hours[i].Hour < res.Hours[j].Hour
		}
		return res.Hours[i].GasType < res.Hours[j].GasType
	})
	return res, nil
}
