package controller

import (
	"sync"
	"time"
)

// DefaultIdleTimeout hides the controls after this long without pointer activity
const DefaultIdleTimeout = 2 * time.Second

// Visibility of a window's playback controls
type Visibility int

const (
	ControlsVisible Visibility = iota
	ControlsHidden
)

func (v Visibility) String() string {
	if v == ControlsHidden {
		return "hidden"
	}
	return "visible"
}

// IdleControls hides a window's controls after a period without pointer activity.
//
// Start, stop and restart of the countdown all happen under one lock, and a
// fire that lost the race against a restart is recognized by its generation
// and dropped.
type IdleControls struct {
	timeout  time.Duration
	onChange func(Visibility)

	mu           sync.Mutex
	active       bool
	timer        *time.Timer
	gen          uint64
	visibility   Visibility
	cursorHidden bool
}

// NewIdleControls creates the state machine in ControlsVisible with the countdown armed.
// onChange may be nil; it is called without the lock held.
func NewIdleControls(timeout time.Duration, onChange func(Visibility)) *IdleControls {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	c := &IdleControls{
		timeout:    timeout,
		onChange:   onChange,
		active:     true,
		visibility: ControlsVisible,
	}
	c.mu.Lock()
	c.armLocked()
	c.mu.Unlock()
	return c
}

// armLocked (re)starts the countdown from zero
func (c *IdleControls) armLocked() {
	c.disarmLocked()
	gen := c.gen
	c.timer = time.AfterFunc(c.timeout, func() { c.expire(gen) })
}

func (c *IdleControls) disarmLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *IdleControls) expire(gen uint64) {
	c.mu.Lock()
	if !c.active || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	changed := c.visibility != ControlsHidden
	c.visibility = ControlsHidden
	c.cursorHidden = true
	c.mu.Unlock()

	if changed {
		c.notify(ControlsHidden)
	}
}

func (c *IdleControls) notify(v Visibility) {
	if c.onChange != nil {
		c.onChange(v)
	}
}

// PointerActivity shows the controls and restarts the countdown
func (c *IdleControls) PointerActivity() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	changed := c.visibility != ControlsVisible
	c.visibility = ControlsVisible
	c.cursorHidden = false
	c.armLocked()
	c.mu.Unlock()

	if changed {
		c.notify(ControlsVisible)
	}
}

// EnterControlBar stops the countdown while the pointer is over the control bar
func (c *IdleControls) EnterControlBar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		c.disarmLocked()
	}
}

// LeaveControlBar restarts the countdown
func (c *IdleControls) LeaveControlBar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		c.armLocked()
	}
}

// PointerOverControlBar clears the cursor override without touching the countdown
func (c *IdleControls) PointerOverControlBar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursorHidden = false
}

// Visibility returns the current state
func (c *IdleControls) Visibility() Visibility {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibility
}

// CursorHidden reports whether the pointer cursor is hidden over the video
func (c *IdleControls) CursorHidden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursorHidden
}

// Stop disarms the countdown for good. Calling it again does nothing.
func (c *IdleControls) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.active = false
	c.disarmLocked()
	c.cursorHidden = false
}
