package state

import "time"

const (
	// AuthSize is the length of a route authentication tag
	AuthSize = 32
	// MaxIdLength bounds account ids and address segments
	MaxIdLength = 100
	// MaxAddressLength is the maximum length of an ILP address
	MaxAddressLength = 1023
)

var (
	// RouteBroadcastInterval is how often incremental route updates are sent to peers
	RouteBroadcastInterval = time.Second * 5
	// RouteKeepaliveInterval forces an (empty) update to be sent if nothing has changed
	RouteKeepaliveInterval = time.Second * 20
	// RouteControlRetryDelay is the delay before a failed route control request is resent
	RouteControlRetryDelay = time.Second * 10
	// RouteExpiry is advertised to peers as the hold down time, in milliseconds on the wire
	RouteExpiry = time.Second * 45
	// MaxEpochGapRetries is how many consecutive epoch gaps a peer may cause before we drop its table
	MaxEpochGapRetries = 3
	// SendDataTimeout bounds protocol sends to peers
	SendDataTimeout = time.Second * 10
	// SlowDispatchThreshold logs a warning for long-running dispatched functions
	SlowDispatchThreshold = time.Millisecond * 4
)
