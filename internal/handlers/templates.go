package handlers

import (
	"embed"
	"html/template"
	"strings"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates parses the embedded page templates for gin's HTML renderer.
func LoadTemplates() (*template.Template, error) {
	return template.New("pages").Funcs(template.FuncMap{
		"collectionTitle": services.CollectionTitle,
		"collectionPath":  collectionPath,
		"upper":           strings.ToUpper,
		"isMultipleChoice": func(q *models.Question) bool {
			return q != nil && q.IsMultipleChoice()
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}).ParseFS(templateFS, "templates/*.html")
}

func collectionPath(kind models.CollectionKind) string {
	if kind == models.CollectionWrongBook {
		return "/wrong-book"
	}
	return "/favorites"
}
