package risk

import "sync/atomic"

// KillSwitch is the process-wide trading halt. Any thread may arm or disarm
// it; hot-path readers pay one atomic load. It is passed by handle, not held
// as a package global, so ownership stays explicit.
type KillSwitch struct {
	active atomic.Bool
}

// NewKillSwitch returns a disarmed switch.
func NewKillSwitch() *KillSwitch { return &KillSwitch{} }

// IsActive reports whether trading is halted.
func (k *KillSwitch) IsActive() bool { return k.active.Load() }

// Trigger arms the switch. The reason is not stored; the caller logs it.
func (k *KillSwitch) Trigger(reason string) {
	k.active.Store(true)
}

// Reset disarms the switch.
func (k *KillSwitch) Reset() { k.active.Store(false) }
