package state

import (
	"context"
	"time"
)

// Dispatch Dispatches the function to run on the router goroutine without waiting for it to complete.
// It returns false if the router has stopped and the function was dropped.
func (e *Env) Dispatch(fun func(*State) error) bool {
	select {
	case e.DispatchChannel <- fun:
		return true
	case <-e.Context.Done():
		return false
	}
}

// TryDispatch queues the function without blocking. It returns false if the
// router has stopped or its queue is full.
func (e *Env) TryDispatch(fun func(*State) error) bool {
	if e.Context.Err() != nil {
		return false
	}
	select {
	case e.DispatchChannel <- fun:
		return true
	default:
		return false
	}
}

// DispatchWait Dispatches the function to run on the router goroutine and wait for it to complete
func (e *Env) DispatchWait(fun func(*State) (any, error)) (any, error) {
	ret := make(chan Pair[any, error], 1)
	if !e.Dispatch(func(s *State) error {
		res, err := fun(s)
		ret <- Pair[any, error]{res, err}
		return err
	}) {
		return nil, context.Cause(e.Context)
	}
	select {
	case res := <-ret:
		return res.V1, res.V2
	case <-e.Context.Done():
		return nil, context.Cause(e.Context)
	}
}

func (e *Env) repeatedTask(fun func(*State) error, delay time.Duration) {
	defer e.tasks.Done()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	for e.Context.Err() == nil {
		if !e.Dispatch(fun) {
			return
		}
		timer.Reset(delay)
		select {
		case <-timer.C:
		case <-e.Context.Done():
			if e.Log != nil {
				e.Log.Debug("repeated task interrupted", "reason", context.Cause(e.Context))
			}
			return
		}
	}
}

// RepeatTask dispatches fun every delay until the context ends.
func (e *Env) RepeatTask(fun func(*State) error, delay time.Duration) {
	e.tasks.Add(1)
	go e.repeatedTask(fun, delay)
}

// WaitTasks blocks until every task started by RepeatTask has returned.
func (e *Env) WaitTasks() {
	e.tasks.Wait()
}
