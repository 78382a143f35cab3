package summary

import (
	"bytes"
	"html/template"
)

var previewTemplate = template.Must(template.New("summary").Parse(`<section class="mindmap-summary">
<h2>Mind Map Summary</h2>
<h3>Node Structure</h3>
<ul>
{{- range .Nodes}}
<li><strong>{{.Label}}</strong> ({{.Documents}} document(s))</li>
{{- end}}
</ul>
{{- if .Connections}}
<h3>Connections</h3>
<ul>
{{- range .Connections}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .Documents}}
<h3>Documents</h3>
<div class="documents">
{{- range .Documents}}
<p>{{.Header}}
{{- range .Documents}}<br>- {{.Name}}: {{.Excerpt}}{{end}}</p>
{{- end}}
</div>
{{- end}}
</section>
`))

// HTML renders the preview fragment. Labels, names and excerpts are escaped.
func (r *Report) HTML() (string, error) {
	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
