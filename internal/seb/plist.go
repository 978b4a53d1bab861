package seb

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// ConfigVersion is written as originatorVersion in every generated config.
const ConfigVersion = "SEB_Server_1.0"

// ContentType is the media type of a locked browser configuration file.
const ContentType = "application/seb"

// ConfigOptions parameterizes BuildLockedBrowserConfig.
type ConfigOptions struct {
	StartURL string
	// Platform is accepted from callers (mac, win, ios) but the generated
	// document is currently identical for every platform.
	Platform string
}

// lockedBooleans are emitted in this order with these values, always.
var lockedBooleans = []struct {
	key   string
	value bool
}{
	{"allowQuit", true},
	{"allowUserQuit", true},
	{"showQuitButton", true},
	{"showMenuBar", true},
	{"browserWindowShowURL", false},
}

const plistHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
`

// BuildLockedBrowserConfig renders the property list an exam browser opens to
// enter an exam. Output is deterministic for a given StartURL.
func BuildLockedBrowserConfig(opts ConfigOptions) []byte {
	var b bytes.Buffer
	b.WriteString(plistHeader)

	writeString(&b, "originatorVersion", ConfigVersion)
	writeString(&b, "startURL", opts.StartURL)
	for _, kv := range lockedBooleans {
		writeBool(&b, kv.key, kv.value)
	}

	b.WriteString("</dict>\n</plist>\n")
	return b.Bytes()
}

// ExamStartURL is the location a locked browser opens for examID.
func ExamStartURL(webBaseURL, examID string) string {
	return strings.TrimRight(webBaseURL, "/") + "/seb-exam/" + examID
}

// GenerateBrowserKey derives a 32-character hex key from seed and the current
// time. Two calls never return the same key in practice.
func GenerateBrowserKey(seed string) string {
	sum := sha256.Sum256([]byte(seed + strconv.FormatInt(time.Now().UnixNano(), 10)))
	return hex.EncodeToString(sum[:16])
}

func writeString(b *bytes.Buffer, key, value string) {
	b.WriteString("\t<key>")
	b.WriteString(EscapeXML(key))
	b.WriteString("</key>\n\t<string>")
	b.WriteString(EscapeXML(value))
	b.WriteString("</string>\n")
}

func writeBool(b *bytes.Buffer, key string, value bool) {
	b.WriteString("\t<key>")
	b.WriteString(EscapeXML(key))
	b.WriteString("</key>\n")
	if value {
		b.WriteString("\t<true/>\n")
	} else {
		b.WriteString("\t<false/>\n")
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five XML special characters.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
