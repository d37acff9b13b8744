package probe

import (
	"time"

	"probe-relay/logger"
)

// Supervise runs run on a dedicated goroutine and blocks until it returns
// normally or stop is closed. When run panics, the panic is logged and run is
// started again after delay.
func Supervise(stop <-chan struct{}, delay time.Duration, log *logger.Logger, run func(stop <-chan struct{})) {
	for {
		log.Debug("spawn managed goroutine: probe")

		crashed := make(chan interface{}, 1)
		go func() {
			defer func() {
				crashed <- recover()
			}()
			run(stop)
		}()

		reason := <-crashed
		if reason == nil {
			return
		}
		log.Error("managed goroutine crashed (probe), setting it up again: %v", reason)

		if !wait(stop, delay) {
			return
		}
	}
}
