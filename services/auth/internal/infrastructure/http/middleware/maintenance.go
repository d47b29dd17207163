package middleware

import (
	"bytes"
	"html/template"
)

// MaintenanceMessage is shown on the maintenance page.
const MaintenanceMessage = "We are performing maintenance. Please come back soon."

var maintenanceTemplate = template.Must(template.New("maintenance").Parse(`<!DOCTYPE html>
<html lang="{{.Locale}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="noindex, nofollow">
<title>Under maintenance | {{.SiteName}}</title>
</head>
<body style="display:flex;min-height:100vh;flex-direction:column;align-items:center;justify-content:center;text-align:center;font-family:sans-serif">
<h1>{{.SiteName}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`))

// MaintenancePage renders the page served while the site is in maintenance.
func MaintenancePage(siteName, locale string) string {
	if locale == "" {
		locale = "en"
	}

	var buf bytes.Buffer
	// The template is static and the data is plain strings.
	_ = maintenanceTemplate.Execute(&buf, struct {
		SiteName string
		Locale   string
		Message  string
	}{siteName, locale, MaintenanceMessage})
	return buf.String()
}
