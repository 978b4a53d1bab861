package kiosk

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigationPolicy(t *testing.T) {
	cfg := testConfig(t)
	state := NewAppState(cfg)
	nav := NewNavigationPolicy(state, cfg.WebURL, cfg.APIURL)

	unlocked := []struct {
		url  string
		want bool
	}{
		{"http://localhost:5173/", true},
		{"http://127.0.0.1:47801/dashboard", true},
		{"http://[::1]:8080/", true},
		{"https://exam.school.test/lobby", true},
		{"https://api.school.test/api/v1/exams", true},
		{"https://evil.test/", false},
		{"file:///etc/passwd", false},
		{"javascript:alert(1)", false},
	}
	for _, tt := range unlocked {
		assert.Equal(t, tt.want, nav.Allow(tt.url), tt.url)
	}

	state.LockTo("e1")
	locked := []struct {
		url  string
		want bool
	}{
		{"https://exam.school.test/seb-exam/e1", true},
		{"https://exam.school.test/seb-exam/e1/review", true},
		{"http://127.0.0.1:47801/api/v1/exams/e1/questions", true},
		{"https://exam.school.test/seb-exam/e2", false},
		{"https://exam.school.test/seb-exam/e10", false},
		{"https://exam.school.test/lobby", false},
		{"https://evil.test/seb-exam/e1", false},
	}
	for _, tt := range locked {
		assert.Equal(t, tt.want, nav.Allow(tt.url), tt.url)
	}
}

func TestNavigationPolicy_Popups(t *testing.T) {
	cfg := testConfig(t)
	state := NewAppState(cfg)
	nav := NewNavigationPolicy(state, cfg.WebURL)

	assert.True(t, nav.AllowPopup("https://exam.school.test/help"))
	assert.False(t, nav.AllowPopup("https://evil.test/"))

	require.NoError(t, state.EnableSEB("", ""))
	assert.False(t, nav.AllowPopup("https://exam.school.test/help"))
}

func TestLockedModeTransport(t *testing.T) {
	var got http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer upstream.Close()

	cfg := testConfig(t)
	cfg.BrowserKey = "bk-123"
	state := NewAppState(cfg)
	client := &http.Client{Transport: &LockedModeTransport{State: state}}

	send := func(ua string) {
		req, err := http.NewRequest(http.MethodGet, upstream.URL, nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", ua)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}

	send("Mozilla/5.0")
	assert.Equal(t, "Mozilla/5.0", got.Get("User-Agent"))
	assert.Empty(t, got.Get(KioskClientHeader))

	state.LockTo("e1")
	send("Mozilla/5.0")
	assert.Equal(t, "Mozilla/5.0"+UserAgentSuffix, got.Get("User-Agent"))
	assert.Equal(t, "bk-123", got.Get(BrowserKeyHeader))
	assert.Equal(t, "bk-123", got.Get("X-SafeExamBrowser-RequestHash"))
	assert.Equal(t, "1", got.Get(KioskClientHeader))

	send("Mozilla/5.0 SEB/3.0")
	assert.Equal(t, "Mozilla/5.0 SEB/3.0", got.Get("User-Agent"))

	state.DisableSEB()
	send("Mozilla/5.0")
	assert.Empty(t, got.Get(KioskClientHeader))
}

func TestLockedModeTransport_NoKey(t *testing.T) {
	var got http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer upstream.Close()

	state := NewAppState(testConfig(t))
	state.LockTo("e1")
	resp, err := (&http.Client{Transport: &LockedModeTransport{State: state}}).Get(upstream.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, got.Get(BrowserKeyHeader))
	assert.Empty(t, got.Get("X-SafeExamBrowser-RequestHash"))
	assert.Equal(t, "1", got.Get(KioskClientHeader))
	assert.Equal(t, "SEB/3.1 ExamKiosk/1.0", got.Get("User-Agent"))
}

func TestGatewayRoutesByPath(t *testing.T) {
	web := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("web:" + r.URL.Path + ":" + r.Header.Get(KioskClientHeader)))
	}))
	defer web.Close()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api:" + r.URL.Path + ":" + r.Header.Get(KioskClientHeader)))
	}))
	defer api.Close()

	webURL, _ := url.Parse(web.URL)
	apiURL, _ := url.Parse(api.URL)
	state := NewAppState(testConfig(t))
	state.LockTo("e1")

	gw := httptest.NewServer(NewGateway(webURL, apiURL, &LockedModeTransport{State: state}, nopLog))
	defer gw.Close()

	get := func(path string) string {
		resp, err := http.Get(gw.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	assert.Equal(t, "web:/seb-exam/e1:1", get("/seb-exam/e1"))
	assert.Equal(t, "api:/api/v1/exams/e1/questions:1", get("/api/v1/exams/e1/questions"))
	assert.Equal(t, "web:/apidocs:1", get("/apidocs"))
}

func TestShortcutRegistry(t *testing.T) {
	reg := NewShortcutRegistry()
	var fired atomic.Int32

	require.NoError(t, reg.Register("F12", func() { fired.Add(1) }))
	assert.ErrorIs(t, reg.Register("f12", func() {}), ErrShortcutRegistered)
	assert.ErrorIs(t, reg.Register("  ", func() {}), ErrShortcutEmpty)

	require.NoError(t, reg.Trigger("F12"))
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, reg.Trigger("F5"), ErrShortcutUnknown)
}

func TestRegisterShortcuts(t *testing.T) {
	t.Run("production locked blocks keys", func(t *testing.T) {
		reg := NewShortcutRegistry()
		RegisterShortcuts(reg, ModeLockedProd, NewAppState(testConfig(t)), func() {}, nopLog)
		assert.Len(t, reg.List(), len(BlockedAccelerators)+1)
		assert.Contains(t, reg.List(), "alt+f4")
	})

	t.Run("dev only emergency quit", func(t *testing.T) {
		reg := NewShortcutRegistry()
		RegisterShortcuts(reg, ModeLockedDev, NewAppState(testConfig(t)), func() {}, nopLog)
		assert.Equal(t, []string{"commandorcontrol+alt+shift+q"}, reg.List())
	})

	t.Run("emergency quit disables seb", func(t *testing.T) {
		state := NewAppState(testConfig(t))
		state.LockTo("e1")
		quit := make(chan struct{})
		reg := NewShortcutRegistry()
		RegisterShortcuts(reg, ModeLockedProd, state, func() { close(quit) }, nopLog)

		require.NoError(t, reg.Trigger(EmergencyQuitAccelerator))
		select {
		case <-quit:
		case <-time.After(time.Second):
			t.Fatal("quit not called")
		}
		assert.False(t, state.SEBEnabled())
	})
}
