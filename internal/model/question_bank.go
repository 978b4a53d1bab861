package model

import (
	"github.com/google/uuid"
)

// QuestionBank is an ordered collection of questions linked to one or more exams.
type QuestionBank struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}
