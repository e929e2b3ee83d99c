package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edvm/autoblogger/internal/workflow"
)

func completedRecord(t *testing.T) workflow.Record {
	t.Helper()
	state := workflow.New("My Blog Topic")
	if err := state.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := state.SetFinalContent("# Title\n\nSome **bold** text.\n\n<script>alert(1)</script>"); err != nil {
		t.Fatalf("SetFinalContent: %v", err)
	}
	if err := state.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	return state.Record()
}

func TestWriteArtifacts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	w := NewWriter(dir, true)

	artifacts, err := w.Write(completedRecord(t))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if artifacts.ArticlePath != filepath.Join(dir, "my_blog_topic.md") {
		t.Fatalf("article path = %q", artifacts.ArticlePath)
	}
	article, err := os.ReadFile(artifacts.ArticlePath)
	if err != nil {
		t.Fatalf("reading article: %v", err)
	}
	if !strings.Contains(string(article), "**bold**") {
		t.Fatalf("article content mangled: %q", article)
	}

	logData, err := os.ReadFile(artifacts.LogPath)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	var rec map[string]interface{}
	if err := json.Unmarshal(logData, &rec); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if rec["status"] != "completed" {
		t.Fatalf("log status = %v", rec["status"])
	}

	htmlData, err := os.ReadFile(artifacts.HTMLPath)
	if err != nil {
		t.Fatalf("reading html: %v", err)
	}
	if !strings.Contains(string(htmlData), "<strong>bold</strong>") {
		t.Fatalf("html rendering missing: %q", htmlData)
	}
	if strings.Contains(string(htmlData), "<script>") {
		t.Fatalf("script tag survived sanitization")
	}
}

func TestWriteFailedRunLogsOnly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	w := NewWriter(dir, false)

	state := workflow.New("Broken run")
	if err := state.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	state.Fail("writing failed: llm down")

	artifacts, err := w.Write(state.Record())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if artifacts.ArticlePath != "" {
		t.Fatalf("failed run should not produce an article")
	}
	if artifacts.LogPath == "" {
		t.Fatalf("failed run should still produce a log")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the log file, got %d entries", len(entries))
	}
}
