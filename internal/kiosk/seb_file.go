package kiosk

import (
	"encoding/json"
	"errors"
	"html"
	"net/url"
	"regexp"
	"strings"
)

const lockedPathPrefix = "/seb-exam/"

var (
	startURLPattern = regexp.MustCompile(`(?s)<key>startURL</key>\s*<string>(.*?)</string>`)
	anyURLPattern   = regexp.MustCompile(`<string>(https?://[^<]*)</string>`)
	errNoStartURL   = errors.New("no start url in seb file")
)

// ParseSEBFile extracts the start URL from a .seb launch file. JSON documents
// are read by their startURL key; anything else is treated as plist XML.
func ParseSEBFile(data []byte) (string, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var doc struct {
			StartURL string `json:"startURL"`
		}
		if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
			return "", err
		}
		if doc.StartURL == "" {
			return "", errNoStartURL
		}
		return doc.StartURL, nil
	}

	if m := startURLPattern.FindStringSubmatch(trimmed); m != nil {
		return html.UnescapeString(strings.TrimSpace(m[1])), nil
	}
	if m := anyURLPattern.FindStringSubmatch(trimmed); m != nil {
		return html.UnescapeString(strings.TrimSpace(m[1])), nil
	}
	return "", errNoStartURL
}

// LockedExamID returns the first path segment after /seb-exam/, or "" when
// the URL does not point at an exam.
func LockedExamID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	idx := strings.Index(u.Path, lockedPathPrefix)
	if idx < 0 {
		return ""
	}
	rest := strings.Trim(u.Path[idx+len(lockedPathPrefix):], "/")
	if rest == "" {
		return ""
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
