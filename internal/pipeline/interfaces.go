package pipeline

// Observer receives the results of every processed frame. Observers run on
// the tracking goroutine and must not retain the eye crops.
type Observer interface {
	ObserveFrame(sessionID string, results []FrameResult, timing Timing)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(sessionID string, results []FrameResult, timing Timing)

// ObserveFrame calls f
func (f ObserverFunc) ObserveFrame(sessionID string, results []FrameResult, timing Timing) {
	f(sessionID, results, timing)
}
