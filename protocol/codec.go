package protocol

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// MaxPacketSize bounds the size of a single encoded frame
const MaxPacketSize = 1 << 20

// Message is any value that can be carried in a Frame
type Message interface {
	proto.Message
	frame() isFrame_Type
}

func (x *Prepare) frame() isFrame_Type             { return &Frame_Prepare{Prepare: x} }
func (x *Fulfill) frame() isFrame_Type             { return &Frame_Fulfill{Fulfill: x} }
func (x *Reject) frame() isFrame_Type              { return &Frame_Reject{Reject: x} }
func (x *RouteControlRequest) frame() isFrame_Type { return &Frame_RouteControl{RouteControl: x} }
func (x *RouteUpdateRequest) frame() isFrame_Type  { return &Frame_RouteUpdate{RouteUpdate: x} }
func (x *RouteUpdateResponse) frame() isFrame_Type {
	return &Frame_RouteUpdateResponse{RouteUpdateResponse: x}
}

// Marshal encodes msg as a frame
func Marshal(msg Message) ([]byte, error) {
	b, err := proto.Marshal(&Frame{Type: msg.frame()})
	if err != nil {
		return nil, err
	}
	if len(b) > MaxPacketSize {
		return nil, fmt.Errorf("encoded frame is too large: %d bytes", len(b))
	}
	return b, nil
}

// Unmarshal decodes a frame produced by Marshal and checks the constraints of the message it carries
func Unmarshal(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, malformed("empty frame")
	}
	if len(data) > MaxPacketSize {
		return nil, malformed("frame is too large: %d bytes", len(data))
	}
	frame := &Frame{}
	if err := proto.Unmarshal(data, frame); err != nil {
		return nil, malformed("%v", err)
	}

	var msg Message
	switch t := frame.Type.(type) {
	case *Frame_Prepare:
		msg = t.Prepare
	case *Frame_Fulfill:
		msg = t.Fulfill
	case *Frame_Reject:
		msg = t.Reject
	case *Frame_RouteControl:
		msg = t.RouteControl
	case *Frame_RouteUpdate:
		msg = t.RouteUpdate
	case *Frame_RouteUpdateResponse:
		msg = t.RouteUpdateResponse
	default:
		return nil, malformed("frame carries no known message")
	}
	if v, ok := msg.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	return msg, nil
}
