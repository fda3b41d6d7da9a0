package model

import "time"

// Schedule drives autoposting for one destination chat. NextRunAt is pushed
// forward by Interval on every run, whether or not a listing went out.
type Schedule struct {
	ChatID    int64         `json:"chat_id"`
	Interval  time.Duration `json:"interval"`
	NextRunAt time.Time     `json:"next_run_at"`
}

func (s Schedule) Due(now time.Time) bool {
	return !s.NextRunAt.After(now)
}
