package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestReadMessageRegister(t *testing.T) {
	want := &Register{
		UserKey:            testUserKey(t, 0x07),
		AppointmentSlots:   42,
		SubscriptionPeriod: 1008,
	}

	msg, err := ReadMessage(MsgTypeRegister, want.Encode())
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	got, ok := msg.(*Register)
	if !ok {
		t.Fatalf("ReadMessage() returned %T, want *Register", msg)
	}
	if *got != *want {
		t.Errorf("message = %+v, want %+v", got, want)
	}
}

func TestReadMessageSubscriptionDetails(t *testing.T) {
	want := &SubscriptionDetails{AppointmentMaxSize: 30, AmountMsat: 1500}

	msg, err := ReadMessage(MsgTypeSubscriptionDetails, want.Encode())
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	got, ok := msg.(*SubscriptionDetails)
	if !ok {
		t.Fatalf("ReadMessage() returned %T, want *SubscriptionDetails", msg)
	}
	if *got != *want {
		t.Errorf("message = %+v, want %+v", got, want)
	}
}

func TestReadMessageUnknownType(t *testing.T) {
	// Not an error, just "not one of ours": the outer dispatcher may have
	// other handlers to try.
	for _, msgType := range []uint16{0, 1, 9999, 45769, 0xFFFF} {
		msg, err := ReadMessage(msgType, []byte{0x01, 0x02, 0x03})
		if err != nil {
			t.Errorf("ReadMessage(%d) error = %v, want nil", msgType, err)
		}
		if msg != nil {
			t.Errorf("ReadMessage(%d) = %v, want nil", msgType, msg)
		}
	}
}

func TestReadMessageTruncated(t *testing.T) {
	tests := []struct {
		name    string
		msgType uint16
		payload []byte
	}{
		{name: "empty register", msgType: MsgTypeRegister, payload: nil},
		{name: "short register", msgType: MsgTypeRegister, payload: make([]byte, RegisterSize-1)},
		{name: "empty details", msgType: MsgTypeSubscriptionDetails, payload: nil},
		{name: "short details", msgType: MsgTypeSubscriptionDetails, payload: []byte{0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ReadMessage(tt.msgType, tt.payload)
			if msg != nil {
				t.Errorf("ReadMessage() = %v, want nil", msg)
			}

			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("error = %v, want *DecodeError", err)
			}
			if decErr.Type != tt.msgType {
				t.Errorf("DecodeError.Type = %d, want %d", decErr.Type, tt.msgType)
			}
		})
	}
}

func TestWriteMessage(t *testing.T) {
	msg := &SubscriptionDetails{AppointmentMaxSize: 30, AmountMsat: 30}

	wire := WriteMessage(msg)

	if got := binary.BigEndian.Uint16(wire[0:2]); got != MsgTypeSubscriptionDetails {
		t.Errorf("type id = %d, want %d", got, MsgTypeSubscriptionDetails)
	}
	if !bytes.Equal(wire[2:], msg.Encode()) {
		t.Error("payload does not follow type id")
	}

	// The wire form must round-trip through ReadMessage.
	decoded, err := ReadMessage(binary.BigEndian.Uint16(wire[0:2]), wire[2:])
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if got := decoded.(*SubscriptionDetails); *got != *msg {
		t.Errorf("round trip = %+v, want %+v", got, msg)
	}
}
