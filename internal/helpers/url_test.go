package helpers

import "testing"

func TestCanonicalURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips tracking params",
			in:   "https://example.com/post?utm_source=feed&utm_medium=search&fbclid=xyz",
			want: "https://example.com/post",
		},
		{
			name: "lowercases host and drops default port and fragment",
			in:   "http://News.Example.com:80/article?id=123#intro",
			want: "http://news.example.com/article?id=123",
		},
		{
			name: "defaults schemeless result links to https",
			in:   "example.com/guides/go",
			want: "https://example.com/guides/go",
		},
		{
			name: "protocol-relative link",
			in:   "//blog.example.com/post/42?utm_medium=email",
			want: "https://blog.example.com/post/42",
		},
		{
			name: "sorts query params and keeps trailing slash",
			in:   "https://example.com/tag/?b=2&a=1",
			want: "https://example.com/tag/?a=1&b=2",
		},
		{
			name: "cleans path segments",
			in:   "https://example.com/news/../tech//latest",
			want: "https://example.com/tech/latest",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CanonicalURL(tt.in)
			if err != nil {
				t.Fatalf("CanonicalURL(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("CanonicalURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Two search providers handing back the same article with different tracking
// junk must canonicalize identically, or the run records it twice.
func TestCanonicalURLDedupsTrackingVariants(t *testing.T) {
	t.Parallel()
	a, err := CanonicalURL("https://example.com/post?utm_source=tavily&utm_campaign=blog")
	if err != nil {
		t.Fatalf("CanonicalURL: %v", err)
	}
	b, err := CanonicalURL("https://Example.com/post")
	if err != nil {
		t.Fatalf("CanonicalURL: %v", err)
	}
	if a != b {
		t.Fatalf("variants did not converge: %q vs %q", a, b)
	}
}

func TestCanonicalURLErrors(t *testing.T) {
	t.Parallel()
	if _, err := CanonicalURL(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := CanonicalURL(":///invalid"); err == nil {
		t.Fatalf("expected error for malformed url")
	}
}
