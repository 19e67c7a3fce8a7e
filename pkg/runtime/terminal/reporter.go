package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/sec-atlas/pkg/models/domain"
)

// Reporter renders a compliance report to the console in a formatted text
// form.
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(report domain.Report) error {
	tmpl := `
Compliance Report ({{.Summary.Passing}}/{{.Summary.Total}} passing)

=== {{.MFAName}} ===
Status: {{.Report.MFA.Status}}
{{- if .Report.MFA.Message}}
{{.Report.MFA.Message}}
{{- end}}
{{- if .Report.MFA.Error}}
Error: {{.Report.MFA.Error}}
{{- end}}
{{- range .Report.MFA.Users}}
- {{if .Email}}{{.Email}}{{else}}{{.ID}}{{end}}: mfa_enabled={{.MFAEnabled}}
{{- end}}

=== {{.RLSName}} ===
Status: {{.Report.RLS.Status}}
{{- if .Report.RLS.Message}}
{{.Report.RLS.Message}}
{{- end}}
{{- if .Report.RLS.Error}}
Error: {{.Report.RLS.Error}}
{{- end}}
{{- range .Report.RLS.Tables}}
- {{.Schema}}.{{.Table}}: enabled={{.Enabled}}, policies={{len .Policies}}
{{- if .Hint}}
  hint: {{.Hint}}
{{- end}}
{{- end}}

=== {{.PITRName}} ===
Status: {{.Report.PITR.Status}}
{{- if .Report.PITR.Message}}
{{.Report.PITR.Message}}
{{- end}}
{{- if .Report.PITR.Error}}
Error: {{.Report.PITR.Error}}
{{- end}}
{{- range .Report.PITR.Projects}}
- {{.Name}} ({{.Ref}}): recovery_enabled={{.Enabled}}, addon={{.AddonStatus}}
{{- end}}
`
	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	data := struct {
		Report   domain.Report
		Summary  domain.Summary
		MFAName  string
		RLSName  string
		PITRName string
	}{
		Report:   report,
		Summary:  report.Summary(),
		MFAName:  domain.CheckNameMFA,
		RLSName:  domain.CheckNameRLS,
		PITRName: domain.CheckNamePITR,
	}

	return t.Execute(c.writer, data)
}
