// Package rate throttles how often one user may drive the submission flow,
// independent of what the flow step does.
package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const minuteWindow = time.Minute

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Limiter struct {
	store          WindowStore
	floodWindow    time.Duration
	perMinuteLimit int
}

// NewLimiter builds a limiter with two fixed windows: one action per
// floodWindow (antiflood), perMinuteLimit actions per minute. A zero
// floodWindow or non-positive minute limit disables that window.
func NewLimiter(store WindowStore, floodWindow time.Duration, perMinuteLimit int) *Limiter {
	if floodWindow < 0 {
		floodWindow = 0
	}
	if perMinuteLimit < 0 {
		perMinuteLimit = 0
	}

	return &Limiter{
		store:          store,
		floodWindow:    floodWindow,
		perMinuteLimit: perMinuteLimit,
	}
}

// Allow reports whether the user may act now and, when suppressed, how many
// seconds to wait.
func (l *Limiter) Allow(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.floodWindow > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, floodKey(userID), l.floodWindow)
		if err != nil {
			return 0, false, err
		}
		if count > 1 {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perMinuteLimit > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, minuteKey(userID), minuteWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perMinuteLimit) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

func floodKey(userID int64) string {
	return "rate:intake:flood:" + strconv.FormatInt(userID, 10)
}

func minuteKey(userID int64) string {
	return "rate:intake:min:" + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
