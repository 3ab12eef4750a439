package export

import (
	"fmt"
	"html/template"
	"io"

	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/render"
)

// DocContentType is the MIME type of the Word export.
const DocContentType = "application/msword"

var docTemplate = template.Must(template.New("doc").Parse(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word" xmlns="http://www.w3.org/TR/REC-html40">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{- range .Slides}}
<h2>{{.Title}}</h2>
{{- range .Body}}
{{- if eq .Kind "bullet-point"}}
<ul><li>{{.Text}}</li></ul>
{{- else}}
<p>{{.Text}}</p>
{{- end}}
{{- end}}
{{- end}}
</body>
</html>
`))

type docData struct {
	Title  string
	Slides []render.SlideView
}

// DeckDoc writes the deck as an HTML document that Word opens as a .doc file.
// Images are left out.
func (e *Exporter) DeckDoc(w io.Writer, d *domain.Deck) error {
	data := docData{
		Title:  d.Content[domain.SlideKeyLesson],
		Slides: render.ComposeDeck(d),
	}
	if err := docTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("write deck doc: %w", err)
	}
	return nil
}
