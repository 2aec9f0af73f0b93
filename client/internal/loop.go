package internal

// taskQueueSize bounds how much work can be pending on the loop. A full
// queue turns Post into a scheduling failure instead of blocking.
const taskQueueSize = 64

// Loop is a single-consumer task queue. Tasks are executed one at a time on
// the goroutine that calls Run, so work posted from transport goroutines is
// strictly interleaved with everything else and needs no locking.
type Loop struct {
	tasks chan func()

	// owned by the Run goroutine
	quit bool
	code int
}

func NewLoop() *Loop {
	return &Loop{tasks: make(chan func(), taskQueueSize)}
}

// Post schedules task on the loop. It reports false when the queue is full,
// in which case the task will never run.
func (l *Loop) Post(task func()) bool {
	select {
	case l.tasks <- task:
		return true
	default:
		return false
	}
}

// Quit schedules loop shutdown with the given exit code as an ordinary task,
// so everything already queued still runs first.
func (l *Loop) Quit(code int) bool {
	return l.Post(func() { l.stop(code) })
}

// Run executes queued tasks on the calling goroutine until a Quit task fires,
// then returns the exit code it carried.
func (l *Loop) Run() int {
	for !l.quit {
		task := <-l.tasks
		task()
	}
	return l.code
}

// stop halts the loop directly, bypassing the queue. Only for use from the
// Run goroutine itself, or before Run has started.
func (l *Loop) stop(code int) {
	l.quit = true
	l.code = code
}
