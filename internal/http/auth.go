package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/models"
)

const sessionCookie = "user_data"

// sessionUser is the payload of the user_data cookie. The frontend reads it
// directly, so the cookie is not HttpOnly.
type sessionUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func newSessionUser(u *models.User) sessionUser {
	return sessionUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (s *Server) setSession(c *gin.Context, u *models.User) error {
	b, err := json.Marshal(newSessionUser(u))
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, string(b), int(s.cfg.SessionTTL.Seconds()), "/", "", false, false)
	return nil
}

func (s *Server) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, false)
}

// session resolves the user_data cookie against the store and aborts with
// 401 when it does not name an existing user.
func (s *Server) session() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(sessionCookie)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(401, gin.H{"detail": "Sesión no iniciada"})
			return
		}
		var su sessionUser
		if err := json.Unmarshal([]byte(raw), &su); err != nil || su.ID == 0 {
			c.AbortWithStatusJSON(401, gin.H{"detail": "Sesión no válida"})
			return
		}

		u, err := s.users.Get(c.Request.Context(), su.ID)
		if errors.Is(err, apperr.ErrNotFound) || (err == nil && u.Email != su.Email) {
			c.AbortWithStatusJSON(401, gin.H{"detail": "Sesión no válida"})
			return
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Set("user", u)
		c.Next()
	}
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /v2/register/request
func (s *Server) registerRequest(c *gin.Context) {
	var in credentials
	if !s.bind(c, "register_request", &in) {
		return
	}
	email, err := s.registration.Request(c.Request.Context(), in.Email, in.Username, in.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"status":  "ok",
		"mensaje": "Se ha enviado un código de verificación a tu correo",
		"email":   email,
	})
}

// POST /v2/register/verify
func (s *Server) registerVerify(c *gin.Context) {
	var in struct {
		Email string `json:"email"`
		Code  int    `json:"code"`
	}
	if !s.bind(c, "register_verify", &in) {
		return
	}
	u, err := s.registration.Verify(c.Request.Context(), in.Email, in.Code)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"status":  "ok",
		"mensaje": "Usuario verificado y creado correctamente",
		"usuario": newSessionUser(u),
	})
}

// POST /v1/users/register
func (s *Server) registerDirect(c *gin.Context) {
	var in credentials
	if !s.bind(c, "register_request", &in) {
		return
	}
	u, err := s.users.Register(c.Request.Context(), in.Username, in.Email, in.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"status":  "ok",
		"mensaje": fmt.Sprintf("Usuario '%s' creado exitosamente", u.Username),
		"usuario": newSessionUser(u),
	})
}

// POST /v1/users/login
func (s *Server) login(c *gin.Context) {
	var in struct {
		Login    string `json:"username_or_email"`
		Password string `json:"password"`
	}
	if !s.bind(c, "user_login", &in) {
		return
	}
	u, err := s.users.Login(c.Request.Context(), in.Login, in.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.setSession(c, u); err != nil {
		s.fail(c, apperr.Internal("error creando la sesión", err))
		return
	}
	c.JSON(200, gin.H{
		"status":  "ok",
		"mensaje": "Inicio de sesión exitoso",
		"usuario": newSessionUser(u),
	})
}

// POST /v1/users/logout
func (s *Server) logout(c *gin.Context) {
	s.clearSession(c)
	c.JSON(200, gin.H{"status": "ok", "mensaje": "Sesión cerrada"})
}

// GET /v1/users/me
func (s *Server) me(c *gin.Context) {
	u := c.MustGet("user").(*models.User)
	c.JSON(200, gin.H{"status": "ok", "usuario": u})
}
