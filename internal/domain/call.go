package domain

import "time"

// CallStatus enumerates lifecycle states for calls.
type CallStatus string

const (
	CallStatusLive   CallStatus = "live"
	CallStatusEnded  CallStatus = "ended"
	CallStatusFailed CallStatus = "failed"
)

// Terminal reports whether the status admits no further transition.
func (s CallStatus) Terminal() bool {
	return s == CallStatusEnded || s == CallStatusFailed
}

// Valid reports whether the status is one of the known values.
func (s CallStatus) Valid() bool {
	switch s {
	case CallStatusLive, CallStatusEnded, CallStatusFailed:
		return true
	}
	return false
}

// CallDirection indicates who originated the call.
type CallDirection string

const (
	DirectionInbound  CallDirection = "inbound"
	DirectionOutbound CallDirection = "outbound"
)

// Valid reports whether the direction is one of the known values.
func (d CallDirection) Valid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// Call is a single telephone interaction tracked end-to-end.
type Call struct {
	ID              string
	StartedAt       time.Time
	EndedAt         *time.Time
	Status          CallStatus
	Direction       CallDirection
	FromNumber      string
	ToNumber        string
	AgentName       *string
	QueueOrDN       *string
	TicketID        *string
	HasTicketUpdate bool
	Notes           *string
}

// Live reports whether the call is still in progress.
func (c Call) Live() bool {
	return c.Status == CallStatusLive
}
