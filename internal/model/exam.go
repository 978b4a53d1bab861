package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Exam represents the exam fields the exam-taking flow reads. Authoring lives
// elsewhere; nothing here writes these columns except the browser key.
type Exam struct {
	ID                  uuid.UUID         `json:"id"`
	Title               string            `json:"title"`
	SEBEnabled          bool              `json:"seb_enabled"`
	SEBBrowserKey       *string           `json:"-"`
	SEBConfig           SEBConfig         `json:"seb_config"`
	StartAt             *time.Time        `json:"start_at,omitempty"`
	EndAt               *time.Time        `json:"end_at,omitempty"`
	RandomQuestionCount *int              `json:"random_question_count,omitempty"`
	AnswerKey           map[string]string `json:"-"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// HasBrowserKey reports whether a non-empty browser key is configured.
func (e *Exam) HasBrowserKey() bool {
	return e.SEBBrowserKey != nil && *e.SEBBrowserKey != ""
}

// SEBConfig holds the URL filter globs stored with an exam. They are owned by
// exam authoring; the generated browser config does not emit them.
type SEBConfig struct {
	Allow []string `json:"allow"`
	Block []string `json:"block"`
}

// ScanSEBConfig decodes the seb_config column, tolerating NULL.
func ScanSEBConfig(raw []byte) (SEBConfig, error) {
	var cfg SEBConfig
	if len(raw) == 0 {
		return cfg, nil
	}
	err := json.Unmarshal(raw, &cfg)
	return cfg, err
}

// SEBConfigInfo is the preview of an exam's locked-browser configuration.
type SEBConfigInfo struct {
	ExamID        uuid.UUID `json:"exam_id"`
	SEBEnabled    bool      `json:"seb_enabled"`
	StartURL      string    `json:"start_url"`
	ConfigVersion string    `json:"config_version"`
	HasBrowserKey bool      `json:"has_browser_key"`
}

// BrowserKeyResponse is returned to an administrator after key generation.
type BrowserKeyResponse struct {
	ExamID        uuid.UUID `json:"exam_id"`
	SEBBrowserKey string    `json:"seb_browser_key"`
	Rotated       bool      `json:"rotated"`
}
