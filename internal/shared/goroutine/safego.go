// Package goroutine provides utilities for safely launching goroutines with panic recovery.
package goroutine

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// SafeGo launches a goroutine with panic recovery. If the goroutine panics,
// the panic is caught and logged with stack trace instead of crashing the process.
func SafeGo(log logger.Interface, name string, fn func()) {
	go run(log, name, fn)
}

func run(log logger.Interface, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("goroutine panicked",
				"goroutine", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

// Group launches recovered goroutines and lets their owner wait for all of
// them during teardown.
type Group struct {
	wg  sync.WaitGroup
	log logger.Interface
}

// NewGroup creates an empty Group.
func NewGroup(log logger.Interface) *Group {
	return &Group{log: log}
}

// Go runs fn in a new recovered goroutine tracked by the group.
func (g *Group) Go(name string, fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		run(g.log, name, fn)
	}()
}

// Wait blocks until every goroutine started with Go has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}
