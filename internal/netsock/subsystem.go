package netsock

import (
	"sync"

	"github.com/torilate/torilate/internal/failure"
)

type subsystemState int

const (
	stateUninitialized subsystemState = iota
	stateReady
	stateTornDown
)

// Subsystem tracks the process-wide socket lifecycle. Init is idempotent
// while the subsystem is up; once Cleanup has run the subsystem cannot be
// brought back, and every later Init or Connect fails.
type Subsystem struct {
	mu    sync.Mutex
	state subsystemState
}

var std Subsystem

// Init brings up the process-wide socket subsystem.
func Init() error {
	return std.Init()
}

// Cleanup tears down the process-wide socket subsystem. It is safe to call
// more than once.
func Cleanup() {
	std.Cleanup()
}

func (s *Subsystem) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateReady:
		return nil
	case stateTornDown:
		return failure.New(failure.SockInitFailed, "socket subsystem already torn down")
	}
	s.state = stateReady
	return nil
}

func (s *Subsystem) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateTornDown
}

// Ready reports whether sockets may be opened.
func (s *Subsystem) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateReady
}
