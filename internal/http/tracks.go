package http

import (
	"github.com/gin-gonic/gin"

	"oxigo-server/internal/tracks"
)

type trackRef struct {
	TrackID uint `json:"track_id"`
}

// POST /v1/recorridos
func (s *Server) createTrack(c *gin.Context) {
	var in userRef
	if !s.bind(c, "user_ref", &in) {
		return
	}
	res, err := s.tracks.Create(c.Request.Context(), in.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, res)
}

// DELETE /v1/recorridos
func (s *Server) deleteTrack(c *gin.Context) {
	var in trackRef
	if !s.bind(c, "track_ref", &in) {
		return
	}
	res, err := s.tracks.Delete(c.Request.Context(), in.TrackID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, res)
}

// POST /v1/recorridos/puntos
func (s *Server) addTrackPoint(c *gin.Context) {
	var in struct {
		TrackID  uint         `json:"track_id"`
		Position tracks.Point `json:"position"`
	}
	if !s.bind(c, "track_point", &in) {
		return
	}
	res, err := s.tracks.AddPoint(c.Request.Context(), in.TrackID, in.Position)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, res)
}

// POST /v1/recorridos/usuario
func (s *Server) userTracks(c *gin.Context) {
	var in userRef
	if !s.bind(c, "user_ref", &in) {
		return
	}
	list, err := s.tracks.ListByUser(c.Request.Context(), in.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, list)
}

// POST /v1/recorridos/puntos_recorrido
func (s *Server) trackPoints(c *gin.Context) {
	var in trackRef
	if !s.bind(c, "track_ref", &in) {
		return
	}
	list, err := s.tracks.Points(c.Request.Context(), in.TrackID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, list)
}
