package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"wedding-site/internal/domain"
	"wedding-site/internal/middleware"
	"wedding-site/internal/service"
)

func (h *Handlers) AdminListRSVPs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	filter := domain.RSVPFilter{
		Page:   page,
		Search: strings.TrimSpace(c.Query("search")),
		Menu:   c.Query("menu"),
	}

	switch c.Query("attending") {
	case "true":
		v := true
		filter.Attending = &v
	case "false":
		v := false
		filter.Attending = &v
	}

	rsvps, pagination, err := h.services.RSVPs.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "Error al obtener RSVPs")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rsvps":      rsvps,
		"pagination": pagination,
	})
}

func (h *Handlers) AdminGetRSVP(c *gin.Context) {
	rsvp, err := h.services.RSVPs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Error al obtener RSVP")
		return
	}
	c.JSON(http.StatusOK, rsvp)
}

func (h *Handlers) AdminDeleteRSVP(c *gin.Context) {
	if err := h.services.RSVPs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Error al eliminar RSVP")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminExportRSVPs renders the CSV in memory so a failure can still
// produce a clean 500 instead of a truncated download.
func (h *Handlers) AdminExportRSVPs(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.services.RSVPs.ExportCSV(c.Request.Context(), &buf); err != nil {
		h.respondError(c, err, "Error al exportar")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+h.services.RSVPs.ExportFilename()+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handlers) AdminStats(c *gin.Context) {
	stats, err := h.services.Dashboard.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error al obtener estadísticas")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handlers) AdminListGuestbook(c *gin.Context) {
	status := domain.GuestbookStatus(c.Query("status"))
	switch status {
	case "", domain.GuestbookAll, domain.GuestbookPending, domain.GuestbookApproved:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Datos inválidos",
			"message": "status debe ser pending, approved o all",
		})
		return
	}

	entries, err := h.services.Guestbook.List(c.Request.Context(), status)
	if err != nil {
		h.respondError(c, err, "Error al obtener mensajes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type moderationRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

func (h *Handlers) AdminModerateGuestbook(c *gin.Context) {
	var req moderationRequest
	if err := decodeJSON(c, &req); err != nil {
		h.badJSON(c, err)
		return
	}
	if err := service.Validator().Struct(&req); err != nil {
		h.respondError(c, err, "Error al actualizar")
		return
	}

	user, _ := middleware.CurrentUser(c)
	entry, err := h.services.Guestbook.SetApproval(c.Request.Context(), c.Param("id"), *req.Approved, user.ID)
	if err != nil {
		h.respondError(c, err, "Error al actualizar")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

func (h *Handlers) AdminDeleteGuestbook(c *gin.Context) {
	if err := h.services.Guestbook.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Error al eliminar")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) AdminCreateFAQ(c *gin.Context) {
	var input domain.FAQInput
	if err := decodeJSON(c, &input); err != nil {
		h.badJSON(c, err)
		return
	}

	faq, err := h.services.FAQs.Create(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err, "Error al crear FAQ")
		return
	}
	c.JSON(http.StatusOK, faq)
}

func (h *Handlers) AdminUpdateFAQ(c *gin.Context) {
	var input domain.FAQInput
	if err := decodeJSON(c, &input); err != nil {
		h.badJSON(c, err)
		return
	}

	faq, err := h.services.FAQs.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		h.respondError(c, err, "Error al actualizar FAQ")
		return
	}
	c.JSON(http.StatusOK, faq)
}

func (h *Handlers) AdminDeleteFAQ(c *gin.Context) {
	if err := h.services.FAQs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Error al eliminar FAQ")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) AdminListSettings(c *gin.Context) {
	settings, err := h.services.Settings.All(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error al obtener la configuración")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *Handlers) AdminSaveSettings(c *gin.Context) {
	var values map[string]interface{}
	if err := decodeJSON(c, &values); err != nil {
		h.badJSON(c, err)
		return
	}

	if err := h.services.Settings.Save(c.Request.Context(), values); err != nil {
		h.respondError(c, err, "Error al guardar")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminRateLimitStatus shows the current window of one client in one scope
func (h *Handlers) AdminRateLimitStatus(c *gin.Context) {
	scope := domain.RateLimitScope(strings.TrimSpace(c.Query("scope")))
	identifier := strings.TrimSpace(c.Query("identifier"))

	rule, ok := h.services.RateLimiter.Rule(scope)
	if !ok {
		h.unknownScope(c)
		return
	}

	record, err := h.services.RateLimiter.Status(c.Request.Context(), scope, identifier)
	if err != nil {
		h.respondError(c, err, "Error al obtener el estado del limitador")
		return
	}

	response := gin.H{
		"scope":      scope,
		"identifier": identifier,
		"limit":      rule.Limit,
		"window":     rule.Window.String(),
		"current":    0,
		"remaining":  rule.Limit,
	}
	if record != nil {
		remaining := rule.Limit - record.Count
		if remaining < 0 {
			remaining = 0
		}
		response["current"] = record.Count
		response["remaining"] = remaining
		response["reset_time"] = record.WindowResetAt.Unix()
	}
	c.JSON(http.StatusOK, response)
}

type rateLimitResetRequest struct {
	Scope      domain.RateLimitScope `json:"scope" binding:"required"`
	Identifier string                `json:"identifier" binding:"required"`
}

func (h *Handlers) AdminRateLimitReset(c *gin.Context) {
	var req rateLimitResetRequest
	if err := decodeJSON(c, &req); err != nil {
		h.badJSON(c, err)
		return
	}
	if err := service.Validator().Struct(&req); err != nil {
		h.respondError(c, err, "Error al reiniciar el limitador")
		return
	}
	if _, ok := h.services.RateLimiter.Rule(req.Scope); !ok {
		h.unknownScope(c)
		return
	}

	if err := h.services.RateLimiter.Reset(c.Request.Context(), req.Scope, req.Identifier); err != nil {
		h.respondError(c, err, "Error al reiniciar el limitador")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"scope":      req.Scope,
		"identifier": req.Identifier,
	})
}

func (h *Handlers) unknownScope(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Datos inválidos",
		"message": "scope debe ser rsvp o guestbook",
	})
}
