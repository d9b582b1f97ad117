package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"wedding-site/internal/domain"
	"wedding-site/internal/logger"
)

// FieldError is one entry of the details list of a 400 response
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var fieldMessages = map[string]string{
	"firstName.required":   "El nombre es obligatorio",
	"lastName.required":    "Los apellidos son obligatorios",
	"gdprConsent.required": "Debes aceptar la política de privacidad",
	"attending.required":   "Indica si asistirás",
}

// decodeJSON reads the request body into v without validating it
func decodeJSON(c *gin.Context, v interface{}) error {
	if c.Request.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(c.Request.Body).Decode(v)
}

func (h *Handlers) badJSON(c *gin.Context, err error) {
	h.logger.WithContext(c.Request.Context()).Debug("Malformed request body", map[string]interface{}{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Datos inválidos",
		"message": "El cuerpo de la petición no es JSON válido",
	})
}

// respondError maps service errors onto HTTP responses. Anything not
// recognised is logged and answered with a generic 500 carrying fallback.
func (h *Handlers) respondError(c *gin.Context, err error, fallback string) {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Datos inválidos",
			"details": translateValidation(validationErrs),
		})
	case errors.Is(err, domain.ErrHoneypot):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error de validación"})
	case errors.Is(err, domain.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "RSVP no encontrado"})
	case errors.Is(err, domain.ErrTokenExpired):
		c.JSON(http.StatusGone, gin.H{"error": "El enlace ha expirado"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
	case errors.Is(err, domain.ErrRateLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Demasiadas solicitudes. Por favor, intenta más tarde."})
	default:
		h.logger.WithContext(c.Request.Context()).Error(fallback, err, map[string]interface{}{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      fallback,
			"request_id": logger.GetRequestID(c.Request.Context()),
		})
	}
}

func translateValidation(errs validator.ValidationErrors) []FieldError {
	details := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		details = append(details, FieldError{Field: field, Message: fieldMessage(field, fe)})
	}
	return details
}

func fieldMessage(field string, fe validator.FieldError) string {
	if msg, ok := fieldMessages[field+"."+fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return "Campo obligatorio"
	case "email":
		return "Email inválido"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser mayor o igual que %s", fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("Debe tener como máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser menor o igual que %s", fe.Param())
	case "oneof":
		return "Debe ser uno de: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "Valor inválido"
	}
}
