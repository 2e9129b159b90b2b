package service

import "time"

// backoffDelay grows exponentially with the attempt count so a flapping
// document backs off instead of hammering the queue. attempts is the
// count already charged for the failing run, so the first retry waits
// one base interval.
func backoffDelay(attempts, baseSeconds, maxSeconds int) time.Duration {
	if baseSeconds <= 0 {
		baseSeconds = 30
	}
	if maxSeconds <= 0 {
		maxSeconds = 3600
	}
	delay := time.Duration(baseSeconds) * time.Second
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= time.Duration(maxSeconds)*time.Second {
			break
		}
	}
	max := time.Duration(maxSeconds) * time.Second
	if delay > max {
		delay = max
	}
	return delay
}
