package helpers

import "time"

// SecondsOr converts config seconds to Duration, zero or negative means default.
func SecondsOr(sec int, def time.Duration) time.Duration {
	if sec <= 0 {
		return def
	}
	return time.Duration(sec) * time.Second
}
