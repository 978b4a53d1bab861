// Package seb implements the exam-browser attestation check and the locked
// browser configuration format. Everything here is pure: no I/O and no clock
// reads except in GenerateBrowserKey.
package seb

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
)

// Failure codes returned in Result.Code.
const (
	CodeUAMissing    = "UA_MISSING"
	CodeHashMismatch = "HASH_MISMATCH"
	CodeHashRequired = "HASH_REQUIRED"
)

// Reasons returned in Result.Reason for accepted requests.
const (
	ReasonNotRequired = "not_required"
	ReasonDevBypass   = "dev_bypass"
	ReasonHashMissing = "hash_missing"
	ReasonHashMatch   = "hash_match"
	ReasonDevWarning  = "dev_warning"
	ReasonHashPresent = "hash_present"
)

// CanonicalHashHeader is the request-hash header the kiosk sends.
const CanonicalHashHeader = "X-SafeExamBrowser-RequestHash"

// HashHeaderAliases lists every header spelling accepted as the request hash,
// in lookup order. Older clients used the later spellings.
var HashHeaderAliases = []string{
	CanonicalHashHeader,
	"X-SafeExamBrowser-ConfigKeyHash",
	"X-SEB-Request-Hash",
	"X-Safe-Exam-Browser-Request-Hash",
	"X-SEB-Hash",
	"SEB-Request-Hash",
}

// BypassQueryParams are the query flags that request the development bypass.
var BypassQueryParams = []string{"seb_bypass", "bypass_seb"}

// ExamConfig is the slice of exam state the validator needs.
type ExamConfig struct {
	SEBEnabled bool
	BrowserKey string
}

// Input carries everything one attestation decision depends on.
type Input struct {
	Headers     http.Header
	UserAgent   string
	Query       url.Values
	Exam        ExamConfig
	Development bool
}

// Result is the outcome of Validate. Code is set only when OK is false.
type Result struct {
	OK          bool
	Code        string
	Reason      string
	RequestHash string
	HashMissing bool
	DevBypass   bool
	DevWarning  bool
}

// Validate decides whether a request may enter an exam. Rules are evaluated
// in a fixed order and the first that applies wins.
func Validate(in Input) Result {
	if !in.Exam.SEBEnabled {
		return Result{OK: true, Reason: ReasonNotRequired}
	}

	if !IsSEBUserAgent(in.UserAgent) {
		return Result{Code: CodeUAMissing}
	}

	hash := RequestHash(in.Headers)
	key := in.Exam.BrowserKey

	if in.Development && key == "" && bypassRequested(in.Query) {
		return Result{OK: true, Reason: ReasonDevBypass, DevBypass: true, RequestHash: hash}
	}

	if key != "" {
		if hash == "" {
			// A configured key with no hash is still accepted.
			return Result{OK: true, Reason: ReasonHashMissing, HashMissing: true}
		}
		if subtle.ConstantTimeCompare([]byte(hash), []byte(key)) != 1 {
			return Result{Code: CodeHashMismatch, RequestHash: hash}
		}
		return Result{OK: true, Reason: ReasonHashMatch, RequestHash: hash}
	}

	if hash == "" {
		if in.Development {
			return Result{OK: true, Reason: ReasonDevWarning, DevWarning: true}
		}
		return Result{Code: CodeHashRequired}
	}

	return Result{OK: true, Reason: ReasonHashPresent, RequestHash: hash}
}

// IsSEBUserAgent reports whether ua identifies an exam browser.
func IsSEBUserAgent(ua string) bool {
	return strings.Contains(strings.ToLower(ua), "seb")
}

// RequestHash returns the first non-empty value among HashHeaderAliases.
// Lookup is case-insensitive so raw, non-canonicalized maps work too.
func RequestHash(h http.Header) string {
	if len(h) == 0 {
		return ""
	}
	for _, name := range HashHeaderAliases {
		if v := headerValue(h, name); v != "" {
			return v
		}
	}
	return ""
}

func headerValue(h http.Header, name string) string {
	if v := strings.TrimSpace(h.Get(name)); v != "" {
		return v
	}
	for k, vals := range h {
		if !strings.EqualFold(k, name) {
			continue
		}
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func bypassRequested(q url.Values) bool {
	for _, name := range BypassQueryParams {
		switch strings.ToLower(q.Get(name)) {
		case "1", "true", "yes":
			return true
		}
	}
	return false
}
