package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Question represents a single exam question.
type Question struct {
	ID            uuid.UUID       `json:"id"`
	QBankID       uuid.UUID       `json:"qbank_id"`
	Prompt        string          `json:"prompt"`
	Type          QuestionType    `json:"type"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	OrderNum      int             `json:"order_num"`
}

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeEssay          QuestionType = "ESSAY"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
)

// QuestionForStudent is a question without the correct answer, sent to students.
type QuestionForStudent struct {
	ID      uuid.UUID       `json:"id"`
	Prompt  string          `json:"prompt"`
	Type    QuestionType    `json:"type"`
	Options json.RawMessage `json:"options"`
}
