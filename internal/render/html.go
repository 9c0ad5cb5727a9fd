package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/nick-dorsch/tasktimer/pkg/models"
)

var listTemplate = template.Must(template.New("list").Parse(`{{- if .Empty -}}
<p class="empty-message">{{ .EmptyMessage }}</p>
{{- else -}}
{{- $delete := .DeleteLabel -}}
{{- range .Rows }}
<div class="task-item{{ if .Completed }} completed{{ end }}" data-id="{{ .ID }}">
  <span class="task-name">{{ .Name }}</span>
  <span class="task-timer{{ if .Severity }} {{ .Severity }}{{ end }}">{{ .Clock }}</span>
  <div class="task-actions">
    <button class="{{ if .Running }}btn-pause{{ else }}btn-start{{ end }}" data-action="toggle" data-id="{{ .ID }}"{{ if .ToggleDisabled }} disabled{{ end }}>{{ .ToggleLabel }}</button>
    <button class="btn-delete" data-action="delete" data-id="{{ .ID }}">{{ $delete }}</button>
  </div>
</div>
{{- end }}
{{- end }}
`))

// HTML renders the task list markup. Task names are escaped.
func HTML(tasks []models.Task) (string, error) {
	var buf bytes.Buffer
	if err := listTemplate.Execute(&buf, Project(tasks)); err != nil {
		return "", fmt.Errorf("failed to render task list: %w", err)
	}
	return buf.String(), nil
}
