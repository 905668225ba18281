package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"oxigo-server/internal/incidents"
)

// POST /v1/system/incidents
func (s *Server) listIncidents(c *gin.Context) {
	var in struct {
		ID             *uint      `json:"id"`
		UserID         *uint      `json:"user_id"`
		UserHandled    *uint      `json:"user_handled"`
		State          *string    `json:"state"`
		SubmitDateFrom *time.Time `json:"submit_date_from"`
		SubmitDateTo   *time.Time `json:"submit_date_to"`
	}
	if !s.bind(c, "incident_filter", &in) {
		return
	}
	list, err := s.incidents.List(c.Request.Context(), incidents.Filter{
		ID:            in.ID,
		UserID:        in.UserID,
		UserHandled:   in.UserHandled,
		State:         in.State,
		SubmittedFrom: in.SubmitDateFrom,
		SubmittedTo:   in.SubmitDateTo,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, list)
}

// POST /v1/system/incidents/create
func (s *Server) createIncident(c *gin.Context) {
	var in struct {
		UserID      uint    `json:"user_id"`
		Subject     string  `json:"subject"`
		Description string  `json:"description"`
		UserHandled *uint   `json:"user_handled"`
		State       *string `json:"state"`
	}
	if !s.bind(c, "incident_create", &in) {
		return
	}
	ci := incidents.CreateInput{
		UserID:      in.UserID,
		Subject:     in.Subject,
		Description: in.Description,
		UserHandled: in.UserHandled,
	}
	if in.State != nil {
		ci.State = *in.State
	}
	res, err := s.incidents.Create(c.Request.Context(), ci)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, res)
}

// POST /v1/system/incidents/update
func (s *Server) updateIncident(c *gin.Context) {
	var in struct {
		IncidentID  uint    `json:"incident_id"`
		Subject     *string `json:"subject"`
		Description *string `json:"description"`
		UserHandled *uint   `json:"user_handled"`
		State       *string `json:"state"`
	}
	if !s.bind(c, "incident_update", &in) {
		return
	}
	res, err := s.incidents.Update(c.Request.Context(), in.IncidentID, incidents.Patch{
		Subject:     in.Subject,
		Description: in.Description,
		UserHandled: in.UserHandled,
		State:       in.State,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, res)
}
