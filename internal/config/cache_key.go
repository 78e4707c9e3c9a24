package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExaminerSessionKey returns the cache key for an examiner's login session.
func (r *CacheKeyStruct) ExaminerSessionKey(examinerID string) string {
	return fmt.Sprintf("login:%s", examinerID)
}

// ExamStatisticsKey returns the cache key for an exam's aggregated statistics.
func (r *CacheKeyStruct) ExamStatisticsKey(examID string) string {
	return fmt.Sprintf("exam:%s:statistics", examID)
}

var CacheKey = NewCacheKeyStruct()
