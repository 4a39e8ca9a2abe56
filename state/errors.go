package state

import "fmt"

// UnknownAccountError is returned when an account id is not registered
type UnknownAccountError struct {
	AccountId AccountId
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("unknown account id. accountId=%s", e.AccountId)
}

// DuplicateAccountError is returned when adding an account id that is already registered
type DuplicateAccountError struct {
	AccountId AccountId
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("account already exists. accountId=%s", e.AccountId)
}

// UnreachableError is returned when no usable route matches a destination
type UnreachableError struct {
	Source      AccountId
	Destination string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("no route found. source=%s destination=%s", e.Source, e.Destination)
}

// ProtocolDesyncError reports a peer that keeps skipping epochs
type ProtocolDesyncError struct {
	Peer     AccountId
	Expected uint32
	Received uint32
	Attempts int
}

func (e *ProtocolDesyncError) Error() string {
	return fmt.Sprintf("route update epochs out of sync. peer=%s expected=%d received=%d attempts=%d",
		e.Peer, e.Expected, e.Received, e.Attempts)
}
