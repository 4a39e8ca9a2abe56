package protocol

import (
	"time"

	"google.golang.org/protobuf/proto"
)

const (
	ConditionSize   = 32
	FulfillmentSize = 32
	MaxDataSize     = 32767
)

// ILP error codes used by the forwarding path
const (
	CodeBadRequest       = "F00"
	CodeInvalidPacket    = "F01"
	CodeUnreachable      = "F02"
	CodeInternalError    = "T00"
	CodePeerUnreachable  = "T01"
	CodeTransferTimedOut = "R00"
)

// UnixMillis converts t to the timestamp format carried by a Prepare
func UnixMillis(t time.Time) uint64 {
	if t.Before(time.UnixMilli(0)) {
		return 0
	}
	return uint64(t.UnixMilli())
}

// Expiry is the time after which the prepare can no longer be fulfilled
func (x *Prepare) Expiry() time.Time {
	return time.UnixMilli(int64(x.GetExpiresAt()))
}

func (x *Prepare) Clone() *Prepare {
	return proto.Clone(x).(*Prepare)
}

func (x *Prepare) validate() error {
	if x.Destination == "" {
		return malformed("prepare has no destination")
	}
	if len(x.ExecutionCondition) != ConditionSize {
		return malformed("execution condition must be %d bytes, got %d", ConditionSize, len(x.ExecutionCondition))
	}
	if len(x.Data) > MaxDataSize {
		return malformed("prepare data is too large: %d bytes", len(x.Data))
	}
	return nil
}

func (x *Fulfill) validate() error {
	if len(x.Fulfillment) != FulfillmentSize {
		return malformed("fulfillment must be %d bytes, got %d", FulfillmentSize, len(x.Fulfillment))
	}
	return nil
}

func (x *Reject) Error() string {
	return x.Code + " " + x.Message
}

func (x *Reject) validate() error {
	if len(x.Code) != 3 {
		return malformed("reject code %q must be 3 characters", x.Code)
	}
	return nil
}
