package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// ActivityPayloadKey returns the cache key for an activity's student payload
func (r *CacheKeyStruct) ActivityPayloadKey(activityID string) string {
	return fmt.Sprintf("activity:%s:payload", activityID)
}

// ActivityDurationKey returns the cache key for an activity's time limit
func (r *CacheKeyStruct) ActivityDurationKey(activityID string) string {
	return fmt.Sprintf("activity:%s:duration", activityID)
}

// StudentActiveActivityKey returns the cache key for a student's running session
func (r *CacheKeyStruct) StudentActiveActivityKey(studentID int) string {
	return fmt.Sprintf("student:%d:active_activity", studentID)
}

var CacheKey = NewCacheKeyStruct()
