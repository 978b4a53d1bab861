package seb

import (
	"encoding/xml"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLockedBrowserConfig(t *testing.T) {
	out := string(BuildLockedBrowserConfig(ConfigOptions{StartURL: "https://exam.example.com/seb-exam/42"}))

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<!DOCTYPE plist`)
	assert.Contains(t, out, "<key>originatorVersion</key>\n\t<string>"+ConfigVersion+"</string>")
	assert.Contains(t, out, "<key>startURL</key>\n\t<string>https://exam.example.com/seb-exam/42</string>")

	for key, want := range map[string]string{
		"allowQuit":            "<true/>",
		"allowUserQuit":        "<true/>",
		"showQuitButton":       "<true/>",
		"showMenuBar":          "<true/>",
		"browserWindowShowURL": "<false/>",
	} {
		assert.Contains(t, out, "<key>"+key+"</key>\n\t"+want, key)
	}
}

func TestBuildLockedBrowserConfig_EscapesStartURL(t *testing.T) {
	raw := `https://exam.example.com/seb-exam/1?a=1&b=<2>&c="3"&d='4'`
	out := string(BuildLockedBrowserConfig(ConfigOptions{StartURL: raw}))

	assert.NotContains(t, out, "&b=")
	assert.Contains(t, out, "a=1&amp;b=&lt;2&gt;&amp;c=&quot;3&quot;&amp;d=&apos;4&apos;")

	// The document must still be well-formed XML.
	dec := xml.NewDecoder(strings.NewReader(out))
	dec.Strict = true
	for {
		_, err := dec.Token()
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
	}
}

func TestBuildLockedBrowserConfig_PlatformIgnored(t *testing.T) {
	url := "https://exam.example.com/seb-exam/7"
	mac := BuildLockedBrowserConfig(ConfigOptions{StartURL: url, Platform: "mac"})
	win := BuildLockedBrowserConfig(ConfigOptions{StartURL: url, Platform: "win"})
	none := BuildLockedBrowserConfig(ConfigOptions{StartURL: url})

	assert.Equal(t, mac, win)
	assert.Equal(t, mac, none)
}

func TestExamStartURL(t *testing.T) {
	assert.Equal(t, "https://web.example.com/seb-exam/abc", ExamStartURL("https://web.example.com/", "abc"))
	assert.Equal(t, "http://localhost:5173/seb-exam/abc", ExamStartURL("http://localhost:5173", "abc"))
}

func TestGenerateBrowserKey(t *testing.T) {
	hexKey := regexp.MustCompile(`^[0-9a-f]{32}$`)

	a := GenerateBrowserKey("exam-1")
	b := GenerateBrowserKey("exam-1")

	assert.Regexp(t, hexKey, a)
	assert.Regexp(t, hexKey, b)
	assert.NotEqual(t, a, b)
}
