package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"wedding-site/internal/domain"
)

// ConfirmationSubject is the subject of the RSVP confirmation email
const ConfirmationSubject = "Confirmación de asistencia - Nuestra boda"

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
  <head><meta charset="utf-8"></head>
  <body style="font-family: sans-serif; line-height: 1.6; color: #2F5D50;">
    <h1>¡Gracias por confirmar!</h1>
    <p>Hola {{.FirstName}},</p>
    <p>Hemos recibido tu confirmación de asistencia a nuestra boda.</p>
    {{if .Attending}}<p><strong>Estamos encantados de que puedas acompañarnos.</strong></p>
    {{else}}<p>Lamentamos que no puedas asistir, pero agradecemos que nos lo hayas comunicado.</p>
    {{end}}<p>Si necesitas modificar algún dato de tu confirmación, puedes hacerlo a través del siguiente enlace:</p>
    <p style="text-align: center;"><a href="{{.EditURL}}">Editar mi confirmación</a></p>
    <p style="font-size: 12px; color: #666;">Este enlace es válido hasta el {{.ValidUntil}}.</p>
  </body>
</html>
`))

type confirmationView struct {
	FirstName  string
	Attending  bool
	EditURL    string
	ValidUntil string
}

// EditURL builds the public edit link for token
func EditURL(siteURL, token string) string {
	return strings.TrimRight(siteURL, "/") + "/rsvp/edit/" + token
}

// RenderConfirmation renders the HTML body of the confirmation email
func RenderConfirmation(siteURL string, data domain.ConfirmationEmail) (string, error) {
	view := confirmationView{
		FirstName:  data.FirstName,
		Attending:  data.Attending,
		EditURL:    EditURL(siteURL, data.EditToken),
		ValidUntil: data.ExpiresAt.In(time.UTC).Format("02/01/2006"),
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render confirmation email: %w", err)
	}
	return buf.String(), nil
}
