package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"oxigo-server/internal/users"
)

func (s *Server) listUsers(c *gin.Context) {
	all, err := s.users.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "ok", "usuarios": all})
}

// PUT /v1/users/update
func (s *Server) updateUser(c *gin.Context) {
	var in struct {
		Username   string  `json:"username"`
		Email      string  `json:"email"`
		Password   *string `json:"password"`
		ProfilePic *string `json:"profilePic"`
	}
	if !s.bind(c, "user_update", &in) {
		return
	}
	u, err := s.users.Update(c.Request.Context(), users.UpdateInput{
		Username:       in.Username,
		Email:          in.Email,
		Password:       in.Password,
		ProfilePicture: in.ProfilePic,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"status":  "ok",
		"mensaje": "Usuario actualizado correctamente",
		"usuario": u,
	})
}

// DELETE /v1/users/update
func (s *Server) deleteUser(c *gin.Context) {
	var in struct {
		UserID   *uint   `json:"user_id"`
		Username *string `json:"username"`
		Email    *string `json:"email"`
	}
	if !s.bind(c, "user_delete", &in) {
		return
	}
	u, err := s.users.Delete(c.Request.Context(), users.DeleteInput{ID: in.UserID, Username: in.Username, Email: in.Email})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"status":  "ok",
		"mensaje": fmt.Sprintf("Usuario '%s' eliminado correctamente", u.Username),
	})
}
