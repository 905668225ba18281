package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"oxigo-server/internal/sensors"
)

type userRef struct {
	UserID uint `json:"user_id"`
}

// POST /v1/data/bind
func (s *Server) bindSensor(c *gin.Context) {
	var in struct {
		UserID uint   `json:"user_id"`
		UUID   string `json:"uuid"`
	}
	if !s.bind(c, "sensor_bind", &in) {
		return
	}
	sensor, err := s.sensors.Bind(c.Request.Context(), in.UserID, in.UUID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"status":  "ok",
		"mensaje": fmt.Sprintf("Sensor '%s' vinculado exitosamente al usuario con ID %d", in.UUID, in.UserID),
		"sensor":  sensor,
	})
}

// DELETE /v1/data/bind
func (s *Server) unbindSensor(c *gin.Context) {
	var in struct {
		UserID   uint    `json:"user_id"`
		EraseAll bool    `json:"erase_all"`
		UUID     *string `json:"uuid"`
	}
	if !s.bind(c, "sensor_unbind", &in) {
		return
	}
	uuid := ""
	if in.UUID != nil {
		uuid = *in.UUID
	}
	res, err := s.sensors.Unbind(c.Request.Context(), in.UserID, in.EraseAll, uuid)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"status":    "ok",
		"mensaje":   res.Message,
		"usuario":   in.UserID,
		"eliminado": res.Target,
	})
}

// POST /v1/data/user_sensors
func (s *Server) userSensors(c *gin.Context) {
	var in userRef
	if !s.bind(c, "user_ref", &in) {
		return
	}
	list, err := s.sensors.ListByUser(c.Request.Context(), in.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "ok", "sensors": list})
}

// GET /v1/data/admin/sensors
func (s *Server) allSensors(c *gin.Context) {
	list, err := s.sensors.ListAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "ok", "sensors": list})
}

// POST /v1/data/reading
func (s *Server) addReading(c *gin.Context) {
	var in sensors.ReadingInput
	if !s.bind(c, "reading", &in) {
		return
	}
	if _, err := s.sensors.AddReading(c.Request.Context(), in); err != nil {
		s.fail(c, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ReadingIngested("http")
	}
	c.JSON(200, gin.H{
		"status":  "ok",
		"mensaje": fmt.Sprintf("Medición agregada exitosamente para el sensor '%s'", in.UUID),
	})
}
