package seb

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	sebUA     = "Mozilla/5.0 (Macintosh) AppleWebKit/605.1.15 SEB/3.3"
	browserUA = "Mozilla/5.0 (X11; Linux x86_64) Chrome/124.0"
	testKey   = "0123456789abcdef0123456789abcdef"
)

func hashHeader(name, value string) http.Header {
	h := http.Header{}
	h.Set(name, value)
	return h
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Result
	}{
		{
			name: "seb disabled accepts anything",
			in:   Input{UserAgent: browserUA, Exam: ExamConfig{SEBEnabled: false, BrowserKey: testKey}},
			want: Result{OK: true, Reason: ReasonNotRequired},
		},
		{
			name: "non seb user agent is rejected",
			in:   Input{UserAgent: browserUA, Exam: ExamConfig{SEBEnabled: true}},
			want: Result{Code: CodeUAMissing},
		},
		{
			name: "bypass never overrides a missing user agent",
			in: Input{
				UserAgent:   browserUA,
				Query:       url.Values{"seb_bypass": {"1"}},
				Exam:        ExamConfig{SEBEnabled: true},
				Development: true,
			},
			want: Result{Code: CodeUAMissing},
		},
		{
			name: "dev bypass without key",
			in: Input{
				UserAgent:   sebUA,
				Query:       url.Values{"bypass_seb": {"true"}},
				Exam:        ExamConfig{SEBEnabled: true},
				Development: true,
			},
			want: Result{OK: true, Reason: ReasonDevBypass, DevBypass: true},
		},
		{
			name: "bypass ignored in production",
			in: Input{
				UserAgent: sebUA,
				Query:     url.Values{"seb_bypass": {"1"}},
				Exam:      ExamConfig{SEBEnabled: true},
			},
			want: Result{Code: CodeHashRequired},
		},
		{
			name: "bypass ignored when a key is configured",
			in: Input{
				UserAgent:   sebUA,
				Headers:     hashHeader(CanonicalHashHeader, "wrong"),
				Query:       url.Values{"seb_bypass": {"1"}},
				Exam:        ExamConfig{SEBEnabled: true, BrowserKey: testKey},
				Development: true,
			},
			want: Result{Code: CodeHashMismatch, RequestHash: "wrong"},
		},
		{
			name: "key configured and hash missing is accepted",
			in:   Input{UserAgent: sebUA, Exam: ExamConfig{SEBEnabled: true, BrowserKey: testKey}},
			want: Result{OK: true, Reason: ReasonHashMissing, HashMissing: true},
		},
		{
			name: "hash mismatch",
			in: Input{
				UserAgent: sebUA,
				Headers:   hashHeader(CanonicalHashHeader, "deadbeef"),
				Exam:      ExamConfig{SEBEnabled: true, BrowserKey: testKey},
			},
			want: Result{Code: CodeHashMismatch, RequestHash: "deadbeef"},
		},
		{
			name: "hash match",
			in: Input{
				UserAgent: sebUA,
				Headers:   hashHeader(CanonicalHashHeader, testKey),
				Exam:      ExamConfig{SEBEnabled: true, BrowserKey: testKey},
			},
			want: Result{OK: true, Reason: ReasonHashMatch, RequestHash: testKey},
		},
		{
			name: "hash match through legacy alias",
			in: Input{
				UserAgent: sebUA,
				Headers:   hashHeader("X-SEB-Hash", testKey),
				Exam:      ExamConfig{SEBEnabled: true, BrowserKey: testKey},
			},
			want: Result{OK: true, Reason: ReasonHashMatch, RequestHash: testKey},
		},
		{
			name: "no key no hash in development warns",
			in:   Input{UserAgent: sebUA, Exam: ExamConfig{SEBEnabled: true}, Development: true},
			want: Result{OK: true, Reason: ReasonDevWarning, DevWarning: true},
		},
		{
			name: "no key no hash in production is rejected",
			in:   Input{UserAgent: sebUA, Exam: ExamConfig{SEBEnabled: true}},
			want: Result{Code: CodeHashRequired},
		},
		{
			name: "hash present without key",
			in: Input{
				UserAgent: sebUA,
				Headers:   hashHeader("SEB-Request-Hash", "abc"),
				Exam:      ExamConfig{SEBEnabled: true},
			},
			want: Result{OK: true, Reason: ReasonHashPresent, RequestHash: "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.in))
		})
	}
}

func TestValidate_Deterministic(t *testing.T) {
	in := Input{
		UserAgent: sebUA,
		Headers:   hashHeader(CanonicalHashHeader, testKey),
		Exam:      ExamConfig{SEBEnabled: true, BrowserKey: testKey},
	}
	first := Validate(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Validate(in))
	}
}

func TestIsSEBUserAgent(t *testing.T) {
	assert.True(t, IsSEBUserAgent("something SEB/3.0"))
	assert.True(t, IsSEBUserAgent("xSeBx"))
	assert.False(t, IsSEBUserAgent(""))
	assert.False(t, IsSEBUserAgent(browserUA))
}

func TestRequestHash(t *testing.T) {
	t.Run("empty headers", func(t *testing.T) {
		assert.Equal(t, "", RequestHash(nil))
	})

	t.Run("alias order wins", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-SEB-Hash", "legacy")
		h.Set(CanonicalHashHeader, "canonical")
		assert.Equal(t, "canonical", RequestHash(h))
	})

	t.Run("non canonical map key", func(t *testing.T) {
		h := http.Header{"x-safeexambrowser-requesthash": {"lower"}}
		assert.Equal(t, "lower", RequestHash(h))
	})

	t.Run("blank values are skipped", func(t *testing.T) {
		h := http.Header{}
		h.Set(CanonicalHashHeader, "  ")
		h.Set("X-SEB-Request-Hash", "second")
		assert.Equal(t, "second", RequestHash(h))
	})
}
