package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	texttemplate "text/template"

	"github.com/ramekin/ramekin-web/internal/capture"
	"github.com/ramekin/ramekin-web/internal/http/response"
)

//go:embed templates/*.html templates/*.js
var templates embed.FS

var (
	capturePage   = template.Must(template.ParseFS(templates, "templates/capture.html"))
	scriptLoaders = texttemplate.Must(texttemplate.New("scripts").Funcs(texttemplate.FuncMap{
		"json": jsonLiteral,
	}).ParseFS(templates, "templates/*.js"))
)

func (s *Server) registerPageRoutes() {
	s.router.Get("/capture", s.handleCapturePage)
	s.router.Get("/bookmarklet.js", s.handleScript("bookmarklet.js"))
	s.router.Get("/capture.js", s.handleScript("capture.js"))
}

// capturePageData contains data for the capture page template.
type capturePageData struct {
	Title       string
	Waiting     string
	NoOpener    string
	NotLoggedIn string
}

// scriptData contains data for the script templates.
type scriptData struct {
	Origin     string
	APIOrigin  string
	OverlayID  string
	Texts      map[string]string
	IntervalMS int64
}

// handleCapturePage serves the capture page the bookmarklet opens.
// GET /capture
func (s *Server) handleCapturePage(w http.ResponseWriter, _ *http.Request) {
	data := capturePageData{
		Title:       "Save to Ramekin",
		Waiting:     "Waiting for page content...",
		NoOpener:    capture.TextNoOpener,
		NotLoggedIn: capture.TextNotLoggedIn,
	}

	var buf bytes.Buffer
	if err := capturePage.Execute(&buf, data); err != nil {
		s.logger.Error("Failed to execute capture template", "error", err)
		response.InternalError(w, "failed to render capture page", s.logger)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", CacheNoStore)
	_, _ = w.Write(buf.Bytes())
}

// handleScript serves one of the bookmarklet scripts with this server's
// origin baked in.
// GET /bookmarklet.js, GET /capture.js
func (s *Server) handleScript(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data := scriptData{
			Origin:     s.cfg.PublicOrigin(),
			APIOrigin:  s.cfg.Ramekin.APIURL,
			OverlayID:  capture.OverlayID,
			IntervalMS: s.cfg.Capture.PollInterval.Milliseconds(),
			Texts: map[string]string{
				"saving":        capture.TextSaving,
				"extracting":    capture.TextExtracting,
				"processing":    capture.TextProcessing,
				"saved":         capture.TextSaved,
				"saveFailed":    capture.TextSaveFailed,
				"extractFailed": capture.TextExtractFailed,
				"pollFailed":    capture.TextPollFailed,
				"requestFailed": capture.TextRequestFailed,
				"invalid":       capture.ErrInvalidBookmarklet.Message,
			},
		}

		var buf bytes.Buffer
		if err := scriptLoaders.ExecuteTemplate(&buf, name, data); err != nil {
			s.logger.Error("Failed to execute script template", "script", name, "error", err)
			response.InternalError(w, "failed to render script", s.logger)
			return
		}

		w.Header().Set("Content-Type", contentTypeJS)
		w.Header().Set("Cache-Control", CacheRevalidate)
		_, _ = w.Write(buf.Bytes())
	}
}

// jsonLiteral renders v as a JavaScript literal. "</" is escaped by the
// encoder's HTML escaping so the value cannot close a script element.
func jsonLiteral(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
