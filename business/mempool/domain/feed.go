package domain

import "time"

// FeedMessage is one decoded push frame. Any subset of fields may be set.
type FeedMessage struct {
	// Baseline carries the heights of recent blocks, sent once after subscribing.
	Baseline []int64
	// Confirmed is the height of a newly mined block, zero when absent.
	Confirmed int64
	// Candidate is the first projected block, nil when absent.
	Candidate *RawBlock
}

// Empty reports whether the message carries nothing the feed acts on.
func (m FeedMessage) Empty() bool {
	return len(m.Baseline) == 0 && m.Confirmed == 0 && m.Candidate == nil
}

// ConnectionState is the push channel state as seen by consumers.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateReconnecting ConnectionState = "reconnecting"
	StatePaused       ConnectionState = "paused"
	StateStopped      ConnectionState = "stopped"
)

// Status is a point-in-time view of the feed.
type Status struct {
	State          ConnectionState
	LastSeenHeight int64
	HasSnapshot    bool
	LastPush       time.Time
	LastPoll       time.Time
}

// Polling reports whether the feed currently relies on polling alone.
func (s Status) Polling() bool {
	return s.State != StateConnected && s.State != StateStopped
}
