package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Metrics []metricView
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	data := pageData{Metrics: catalogView(s.catalogs.Catalog())}
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
