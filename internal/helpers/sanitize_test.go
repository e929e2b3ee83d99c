package helpers

import (
	"strings"
	"testing"
)

func TestSanitizeHTMLRichTextStripsScripts(t *testing.T) {
	t.Parallel()
	rendered := `<h1>Brewing Guide</h1><script>alert('x')</script><p>Grind fresh.</p>`
	got := SanitizeHTMLRichText(rendered)
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Fatalf("script survived sanitization: %q", got)
	}
	if !strings.Contains(got, "<h1>Brewing Guide</h1>") || !strings.Contains(got, "<p>Grind fresh.</p>") {
		t.Fatalf("formatting lost: %q", got)
	}
}

func TestSanitizeHTMLRichTextRemovesHandlersAndUnsafeURLs(t *testing.T) {
	t.Parallel()
	rendered := `<p onclick="evil()">Hi <strong>there</strong> <a href="javascript:alert(1)">click</a></p>`
	got := SanitizeHTMLRichText(rendered)
	want := `<p>Hi <strong>there</strong> click</p>`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitizeHTMLRichTextKeepsCodeBlocks(t *testing.T) {
	t.Parallel()
	rendered := `<pre><code class="language-go">fmt.Println(42)</code></pre>`
	got := SanitizeHTMLRichText(rendered)
	if !strings.Contains(got, `class="language-go"`) {
		t.Fatalf("code block class stripped: %q", got)
	}
}

func TestSanitizeHTMLRichTextHardensExternalLinks(t *testing.T) {
	t.Parallel()
	rendered := `<p>See <a href="https://example.com">the docs</a></p>`
	got := SanitizeHTMLRichText(rendered)
	want := `<p>See <a href="https://example.com" rel="nofollow noopener" target="_blank">the docs</a></p>`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitizeHTMLRichTextEmptyInput(t *testing.T) {
	t.Parallel()
	if got := SanitizeHTMLRichText("   "); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
