package http

import (
	"time"

	"github.com/gin-gonic/gin"
)

func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}

// POST /v1/data/today
func (s *Server) todayReadings(c *gin.Context) {
	var in userRef
	if !s.bind(c, "user_ref", &in) {
		return
	}
	list, err := s.sensors.TodayForUser(c.Request.Context(), in.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "ok", "mediciones": list})
}

// POST /v1/data/map_readings
func (s *Server) mapReadings(c *gin.Context) {
	var in struct {
		Date    string  `json:"datetime"`
		GasType *string `json:"gasType"`
	}
	if !s.bind(c, "map_readings", &in) {
		return
	}
	day, err := parseDay(in.Date)
	if err != nil {
		c.AbortWithStatusJSON(400, gin.H{"detail": "Fecha no válida"})
		return
	}
	gas := ""
	if in.GasType != nil {
		gas = *in.GasType
	}
	list, err := s.sensors.ReadingsForDay(c.Request.Context(), day, gas)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "ok", "mediciones": list})
}

// POST /v1/data/summary
func (s *Server) summary(c *gin.Context) {
	var in struct {
		UserID uint    `json:"user_id"`
		Date   *string `json:"datetime"`
	}
	if !s.bind(c, "summary", &in) {
		return
	}
	day := time.Now()
	if in.Date != nil && *in.Date != "" {
		d, err := parseDay(*in.Date)
		if err != nil {
			c.AbortWithStatusJSON(400, gin.H{"detail": "Fecha no válida"})
			return
		}
		day = d
	}
	res, err := s.sensors.HourlySummary(c.Request.Context(), in.UserID, day)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "ok", "resumen": res})
}
