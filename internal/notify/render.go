package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const primaryColor = "#0086FB"

var layout = template.Must(template.New("layout").Parse(`<div style="background:#f5f7fa;padding:40px 0;font-family:Arial, Helvetica, sans-serif;">
<div style="max-width:600px;margin:auto;background:white;border-radius:10px;border:1px solid #e5e5e5;padding:30px 40px;">
<h2 style="color:{{.Color}};text-align:center;margin-top:0;margin-bottom:25px;font-size:26px;">{{.Title}}</h2>
<div style="font-size:15px;color:#333;">{{.Body}}</div>
<hr style="margin:30px 0;border:none;border-top:1px solid #ddd;">
<p style="font-size:12px;color:#777;text-align:center;">OxiGo. Correo generado automáticamente.</p>
</div>
</div>`))

var bodies = map[Kind]*template.Template{
	KindVerificationCode: template.Must(template.New("code").Parse(`<p>Gracias por registrarte en OxiGo.</p>
<p>Tu código de verificación es:</p>
<div style="text-align:center;font-size:36px;letter-spacing:6px;margin:25px 0;color:{{.Color}};font-weight:bold;">{{.Data.code}}</div>
<p>Introduce este código en la aplicación para confirmar tu cuenta.</p>
{{with .Data.expires_in}}<p>El código expira en {{.}}.</p>{{end}}`)),

	KindIncidentCreated: template.Must(template.New("created").Parse(`<p>Se ha registrado correctamente tu incidencia en el sistema.</p>
<p><b>ID de incidencia:</b> {{.Data.incident_id}}</p>
<p><b>Asunto:</b> {{.Data.subject}}</p>
<p>Un administrador revisará tu caso lo antes posible.</p>`)),

	KindIncidentUpdated: template.Must(template.New("updated").Funcs(template.FuncMap{
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"show": func(v any) string {
			if v == nil {
				return "-"
			}
			return fmt.Sprint(v)
		},
	}).Parse(`<p>Se han realizado cambios en tu incidencia.</p>
<p><b>ID de incidencia:</b> {{.Data.incident_id}}</p>
<h3 style="color:{{.Color}};margin-top:25px;">Cambios realizados:</h3>
{{with .Data.changes}}<ul>{{range .}}
<li style="margin-bottom:10px;"><b>{{title .Field}}</b><br><span style="color:#a00;">Antes:</span> {{show .Old}}<br><span style="color:#0a0;">Ahora:</span> {{show .New}}</li>{{end}}
</ul>{{else}}<p>No se especificaron detalles del cambio.</p>{{end}}
<p style="margin-top:20px;">Si no reconoces esta modificación, contacta con soporte.</p>`)),
}

var titles = map[Kind]string{
	KindVerificationCode: "Confirmación de correo",
	KindIncidentCreated:  "Incidencia creada",
	KindIncidentUpdated:  "Incidencia actualizada",
}

// RenderHTML builds the e-mail body for msg.
func RenderHTML(msg Message) (string, error) {
	tmpl, ok := bodies[msg.Kind]
	if !ok {
		return "", fmt.Errorf("no template for %q", msg.Kind)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, map[string]any{"Color": template.CSS(primaryColor), "Data": msg.Data}); err != nil {
		return "", err
	}

	var out bytes.Buffer
	err := layout.Execute(&out, map[string]any{
		"Color": template.CSS(primaryColor),
		"Title": titles[msg.Kind],
		"Body":  template.HTML(body.String()),
	})
	return out.String(), err
}
