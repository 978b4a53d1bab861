package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptQuestionOrderKey returns the cache key for an attempt's pinned question draw
func (r *CacheKeyStruct) AttemptQuestionOrderKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:question_order", attemptID)
}

var CacheKey = NewCacheKeyStruct()
