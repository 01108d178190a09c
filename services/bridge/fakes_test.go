package bridge

import (
	"fmt"
	"strconv"
	"sync"
)

// fakeRobot records every command as text.
type fakeRobot struct {
	mu     sync.Mutex
	calls  []string
	fail   error
	closed bool
}

func f(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func (r *fakeRobot) record(s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
	return r.fail
}

func (r *fakeRobot) Drive(left, right float64) error {
	return r.record(fmt.Sprintf("drive %s %s", f(left), f(right)))
}
func (r *fakeRobot) Stop() error             { return r.record("stop") }
func (r *fakeRobot) Servo(deg float64) error { return r.record("servo " + f(deg)) }
func (r *fakeRobot) Buzzer(pw float64) error { return r.record("buzzer " + f(pw)) }
func (r *fakeRobot) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *fakeRobot) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *fakeRobot) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
