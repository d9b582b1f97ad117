package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wedding-site/internal/domain"
	"wedding-site/internal/middleware"
)

// GuestbookSubmittedMessage is returned once an entry is queued for moderation
const GuestbookSubmittedMessage = "Tu mensaje ha sido enviado y será moderado antes de publicarse."

func requestMeta(c *gin.Context) domain.RequestMeta {
	return domain.RequestMeta{
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

// PublicSettings returns the settings visible to guests
func (h *Handlers) PublicSettings(c *gin.Context) {
	settings, err := h.services.Settings.Public(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error al obtener la configuración")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// ListFAQs returns the FAQs in display order
func (h *Handlers) ListFAQs(c *gin.Context) {
	faqs, err := h.services.FAQs.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error al obtener FAQs")
		return
	}
	c.JSON(http.StatusOK, faqs)
}

// SubmitRSVP stores a confirmation and returns its edit token
func (h *Handlers) SubmitRSVP(c *gin.Context) {
	var input domain.SubmitRSVPInput
	if err := decodeJSON(c, &input); err != nil {
		h.badJSON(c, err)
		return
	}

	rsvp, err := h.services.RSVPs.Submit(c.Request.Context(), &input, requestMeta(c))
	if err != nil {
		h.respondError(c, err, "Error al procesar la confirmación")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"id":        rsvp.ID,
		"editToken": rsvp.EditToken,
	})
}

// GetRSVPByToken answers 404 for unknown tokens and 410 for expired ones
func (h *Handlers) GetRSVPByToken(c *gin.Context) {
	rsvp, err := h.services.EditTokens.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.respondError(c, err, "Error al obtener RSVP")
		return
	}
	c.JSON(http.StatusOK, rsvp)
}

// UpdateRSVPByToken applies a partial edit through the emailed link. The
// token is kept as is.
func (h *Handlers) UpdateRSVPByToken(c *gin.Context) {
	ctx := c.Request.Context()
	token := c.Param("token")

	// Resolve first so a stale link reports 404/410 even with a bad body.
	current, err := h.services.EditTokens.Resolve(ctx, token)
	if err != nil {
		h.respondError(c, err, "Error al actualizar RSVP")
		return
	}

	var patch domain.RSVPPatch
	if err := decodeJSON(c, &patch); err != nil {
		h.badJSON(c, err)
		return
	}

	rsvp, err := h.services.EditTokens.ApplyPatch(ctx, current, token, &patch)
	if err != nil {
		h.respondError(c, err, "Error al actualizar RSVP")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rsvp":    rsvp,
	})
}

// ListGuestbook returns the approved guestbook entries
func (h *Handlers) ListGuestbook(c *gin.Context) {
	entries, err := h.services.Guestbook.ListApproved(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error al obtener mensajes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// SubmitGuestbook stores a new entry pending moderation
func (h *Handlers) SubmitGuestbook(c *gin.Context) {
	var input domain.GuestbookInput
	if err := decodeJSON(c, &input); err != nil {
		h.badJSON(c, err)
		return
	}

	entry, err := h.services.Guestbook.Submit(c.Request.Context(), &input, requestMeta(c))
	if err != nil {
		h.respondError(c, err, "Error al procesar el mensaje")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      entry.ID,
		"message": GuestbookSubmittedMessage,
	})
}
