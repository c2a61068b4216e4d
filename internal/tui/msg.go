package tui

// Msg is the sealed interface for all TUI messages.
// All message types must implement the sealed() method.
type Msg interface {
	sealed()
}

// MsgStateChanged is sent whenever the sync controller's visible state
// or working set changed.
type MsgStateChanged struct{}

func (MsgStateChanged) sealed() {}

// MsgNotice carries a transient operator-facing message (start
// timeouts, fetch failures).
type MsgNotice struct {
	Text string
}

func (MsgNotice) sealed() {}
