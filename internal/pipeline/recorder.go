// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/cinesync/internal/platform/apperr"
	"github.com/taibuivan/cinesync/internal/platform/constants"
)

// Recorder keeps the summary of the most recent sync.
type Recorder interface {
	Record(context context.Context, summary *Summary) error
	Last(context context.Context) (*Summary, error)
}

// RedisRecorder implements Recorder using Redis.
type RedisRecorder struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRecorder creates a new Redis-backed Recorder.
func NewRedisRecorder(client *redis.Client) *RedisRecorder {
	return &RedisRecorder{client: client, ttl: constants.LastRunTTL}
}

/*
Record overwrites the last-run summary.

Parameters:
  - context: context.Context
  - summary: *Summary

Returns:
  - error: encoding or connectivity errors
*/
func (recorder *RedisRecorder) Record(context context.Context, summary *Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("redis_last_run_encode_failed: %w", err)
	}

	if err := recorder.client.Set(context, constants.RedisKeyLastRun, payload, recorder.ttl).Err(); err != nil {
		return fmt.Errorf("redis_last_run_set_failed: %w", err)
	}
	return nil
}

/*
Last returns the most recently recorded summary.

Description: Returns apperr.NotFound when nothing was recorded or the entry
expired.

Parameters:
  - context: context.Context

Returns:
  - *Summary: decoded summary
  - error: apperr.NotFound or connectivity errors
*/
func (recorder *RedisRecorder) Last(context context.Context) (*Summary, error) {
	payload, err := recorder.client.Get(context, constants.RedisKeyLastRun).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Sync run")
		}
		return nil, fmt.Errorf("redis_last_run_get_failed: %w", err)
	}

	summary := &Summary{}
	if err := json.Unmarshal(payload, summary); err != nil {
		return nil, fmt.Errorf("redis_last_run_decode_failed: %w", err)
	}
	return summary, nil
}
