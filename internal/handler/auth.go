package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wedding-site/internal/middleware"
	"wedding-site/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and sets the session cookie
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := decodeJSON(c, &req); err != nil {
		h.badJSON(c, err)
		return
	}
	if err := service.Validator().Struct(&req); err != nil {
		h.respondError(c, err, "Error al iniciar sesión")
		return
	}

	session, err := h.services.Auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, "Error al iniciar sesión")
		return
	}

	h.setSessionCookie(c, session.Token, int(h.services.Auth.TTL().Seconds()))
	c.JSON(http.StatusOK, session)
}

// Logout clears the session cookie. Sessions are stateless, so a copied
// token stays valid until it expires.
func (h *Handlers) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(service.SessionCookieName, value, maxAge, "/", "", h.secureCookie, true)
}
