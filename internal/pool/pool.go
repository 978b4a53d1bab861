// Package pool draws the question set a student sees from an exam's linked
// question banks.
package pool

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-seb/internal/model"
)

// Flatten concatenates banks in order, keeping each bank's own order.
func Flatten(banks []model.QuestionBank) []model.Question {
	n := 0
	for _, b := range banks {
		n += len(b.Questions)
	}
	out := make([]model.Question, 0, n)
	for _, b := range banks {
		out = append(out, b.Questions...)
	}
	return out
}

// Draw returns the questions to serve. A nil, zero or oversized count returns
// the full flattened sequence in bank order. Otherwise the full sequence is
// shuffled uniformly and truncated to count. Inputs are never mutated.
func Draw(banks []model.QuestionBank, count *int, rng *rand.Rand) []model.Question {
	all := Flatten(banks)
	if count == nil || *count <= 0 || *count >= len(all) {
		return all
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	for i := len(all) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		all[i], all[j] = all[j], all[i]
	}
	return all[:*count]
}

// IDs returns the question IDs in sequence order.
func IDs(qs []model.Question) []uuid.UUID {
	ids := make([]uuid.UUID, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

// Select returns the questions named by ids in ids order. Unknown IDs are
// skipped, which happens if a bank was edited after the draw was pinned.
func Select(banks []model.QuestionBank, ids []uuid.UUID) []model.Question {
	byID := make(map[uuid.UUID]model.Question)
	for _, b := range banks {
		for _, q := range b.Questions {
			byID[q.ID] = q
		}
	}
	out := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Project strips answer material for delivery to a student.
func Project(qs []model.Question) []model.QuestionForStudent {
	out := make([]model.QuestionForStudent, len(qs))
	for i, q := range qs {
		out[i] = model.QuestionForStudent{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Type:    q.Type,
			Options: q.Options,
		}
	}
	return out
}
