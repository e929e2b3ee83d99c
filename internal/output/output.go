package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/edvm/autoblogger/internal/helpers"
	"github.com/edvm/autoblogger/internal/workflow"
)

// Writer persists a finished run's artifacts to disk: the article markdown,
// the run log JSON, and optionally a sanitized HTML rendering.
type Writer struct {
	Dir        string
	RenderHTML bool

	md     goldmark.Markdown
	logger *log.Logger
}

func NewWriter(dir string, renderHTML bool) *Writer {
	return &Writer{
		Dir:        dir,
		RenderHTML: renderHTML,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		logger: log.New(log.Writer(), "[OUTPUT] ", log.LstdFlags),
	}
}

// Artifacts names the files produced for one run.
type Artifacts struct {
	ArticlePath string
	LogPath     string
	HTMLPath    string
}

// Write stores the run's artifacts and returns their paths. The article file
// is only written when the run produced final content; the log file is always
// written so failed runs stay diagnosable.
func (w *Writer) Write(rec workflow.Record) (Artifacts, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("creating output dir: %w", err)
	}

	slug := helpers.SanitizeFilename(rec.CleanTopic)
	var artifacts Artifacts

	logPath := filepath.Join(w.Dir, slug+"_log.json")
	logData, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return artifacts, fmt.Errorf("marshalling run log: %w", err)
	}
	if err := os.WriteFile(logPath, logData, 0o644); err != nil {
		return artifacts, fmt.Errorf("writing run log: %w", err)
	}
	artifacts.LogPath = logPath

	if rec.FinalContent == "" {
		w.logger.Printf("run %s has no article, wrote log only", rec.ID)
		return artifacts, nil
	}

	articlePath := filepath.Join(w.Dir, slug+".md")
	if err := os.WriteFile(articlePath, []byte(rec.FinalContent), 0o644); err != nil {
		return artifacts, fmt.Errorf("writing article: %w", err)
	}
	artifacts.ArticlePath = articlePath

	if w.RenderHTML {
		htmlPath := filepath.Join(w.Dir, slug+".html")
		rendered, err := w.renderHTML(rec.FinalContent)
		if err != nil {
			return artifacts, err
		}
		if err := os.WriteFile(htmlPath, rendered, 0o644); err != nil {
			return artifacts, fmt.Errorf("writing html: %w", err)
		}
		artifacts.HTMLPath = htmlPath
	}

	w.logger.Printf("run %s artifacts written under %s", rec.ID, w.Dir)
	return artifacts, nil
}

// renderHTML converts markdown to HTML and sanitizes the result, since the
// article body originates from an LLM and is untrusted.
func (w *Writer) renderHTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := w.md.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return []byte(helpers.SanitizeHTMLRichText(buf.String())), nil
}
