package state

import (
	"fmt"
	"sync"
	"time"
)

// Dispatch Dispatches the function to run on the main thread without waiting for it to complete
func (e *Env) Dispatch(fun func(*State) error) {
	defer func() {
		if r := recover(); r != nil {
			e.Cancel(fmt.Errorf("panic: %v", r))
		}
	}()
	select {
	case e.DispatchChannel <- fun:
	case <-e.Context.Done():
	}
}

// DispatchWait Dispatches the function to run on the main thread and wait for it to complete
func (e *Env) DispatchWait(fun func(*State) (any, error)) (any, error) {
	ret := make(chan Pair[any, error], 1)
	err := e.trySend(func(s *State) error {
		res, err := fun(s)
		ret <- Pair[any, error]{res, err}
		return nil
	})
	if err != nil {
		return nil, err
	}
	select {
	case res := <-ret:
		return res.V1, res.V2
	case <-e.Context.Done():
		return nil, e.Context.Err()
	}
}

func (e *Env) trySend(fun func(*State) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatch loop closed: %v", r)
		}
	}()
	select {
	case e.DispatchChannel <- fun:
		return nil
	case <-e.Context.Done():
		return e.Context.Err()
	}
}

// Task is a handle to a scheduled function, it can be cancelled until it has been dispatched
type Task struct {
	mu        sync.Mutex
	timer     *time.Timer
	cancelled bool
}

// Cancel prevents the task from being dispatched. Returns false if the task has already been dispatched.
func (t *Task) Cancel() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
	return t.timer.Stop()
}

func (t *Task) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// ScheduleTask dispatches fun after delay. The returned task may be cancelled, even after the timer has fired
// but before fun runs on the main thread.
func (e *Env) ScheduleTask(fun func(*State) error, delay time.Duration) *Task {
	t := &Task{}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = time.AfterFunc(delay, func() {
		if t.Cancelled() {
			return
		}
		e.Dispatch(func(s *State) error {
			if t.Cancelled() {
				return nil
			}
			return fun(s)
		})
	})
	return t
}

func (e *Env) repeatedTask(fun func(*State) error, delay time.Duration) {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for {
		select {
		case <-e.Context.Done():
			return
		case <-ticker.C:
			e.Dispatch(fun)
		}
	}
}

func (e *Env) RepeatTask(fun func(*State) error, delay time.Duration) {
	go e.repeatedTask(fun, delay)
}
