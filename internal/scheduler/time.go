package scheduler

import "time"

func resolveToday() string {
	return time.Now().UTC().Format("2006-01-02")
}
