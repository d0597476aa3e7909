package webserver

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

//go:embed frontend/*
var frontendFiles embed.FS

type pageData struct {
	Title string
	// Scene is trusted svg produced by the sensors, it is embedded without escaping
	Scene template.HTML
	Wasm  bool
}

func (s *Server) indexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		err := s.page.Execute(&buf, pageData{
			Title: s.title,
			Scene: template.HTML(s.Scene()),
			Wasm:  s.wasmEnabled,
		})
		if err != nil {
			ancli.Errf("failed to render index: %v", err)
			http.Error(w, "failed to render index", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		// Scene is inlined, never cache the page itself
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf.Bytes())
	}
}
