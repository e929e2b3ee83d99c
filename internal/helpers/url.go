package helpers

import (
	"errors"
	"net/url"
	"path"
	"sort"
	"strings"
)

// Tracking parameters that search engines and syndication feeds append to
// result links. Stripping them lets two copies of the same page dedup.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"gclid":        {},
	"dclid":        {},
	"fbclid":       {},
	"msclkid":      {},
	"igshid":       {},
}

// CanonicalURL normalises a search-result URL so tracking-param and
// formatting variants of the same page compare equal: scheme and host are
// lowercased, a missing scheme defaults to https, default ports and fragments
// are dropped, the path is cleaned, tracking parameters are removed and the
// remaining query is re-encoded in sorted order.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" && u.Host == "" {
		// schemeless forms like example.com/path or //example.com/path
		schemed := "https://" + raw
		if strings.HasPrefix(raw, "//") {
			schemed = "https:" + raw
		}
		if u, err = url.Parse(schemed); err != nil {
			return "", err
		}
	}

	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Host == "" {
		return "", errors.New("url missing host")
	}
	if host, port, ok := strings.Cut(u.Host, ":"); ok {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			u.Host = host
		}
	}

	trailing := strings.HasSuffix(u.Path, "/") && u.Path != "/"
	cleaned := path.Clean(u.Path)
	if cleaned == "." || cleaned == "" {
		cleaned = "/"
	}
	if trailing && cleaned != "/" {
		cleaned += "/"
	}
	u.Path = cleaned

	u.Fragment = ""
	q := u.Query()
	for key := range q {
		if _, drop := trackingParams[strings.ToLower(key)]; drop {
			q.Del(key)
		}
	}
	for _, values := range q {
		sort.Strings(values)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
