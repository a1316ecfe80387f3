package tower

import (
	"fmt"
	"math"

	"github.com/meryacine/towerd/pkg/protocol"
)

// DefaultAppointmentMaxSize is the per-appointment byte-size cap quoted to
// every registering client
const DefaultAppointmentMaxSize uint16 = 30

// Quote prices a subscription: storage x time, one msat per slot-period.
// The product saturates at the field width of AmountMsat instead of
// wrapping.
func Quote(slots, period uint32) uint32 {
	amount := uint64(slots) * uint64(period)
	if amount > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(amount)
}

// Dispatch maps one inbound message to its reply. It is pure and
// synchronous: no I/O, no locking, no state.
func Dispatch(msg protocol.Message) (protocol.Message, error) {
	switch m := msg.(type) {
	case *protocol.Register:
		return &protocol.SubscriptionDetails{
			AppointmentMaxSize: DefaultAppointmentMaxSize,
			AmountMsat:         Quote(m.AppointmentSlots, m.SubscriptionPeriod),
		}, nil

	case *protocol.SubscriptionDetails:
		// The tower never initiates a registration, so there is nobody this
		// could be a reply to.
		return nil, &ProtocolError{
			Reason:  "a SubscriptionDetails message wasn't expected",
			Warning: "you sent me a SubscriptionDetails message but I didn't register",
		}

	default:
		return nil, &ProtocolError{
			Reason:  fmt.Sprintf("no dispatch rule for message type %d", msg.TypeID()),
			Warning: fmt.Sprintf("message type %d is not handled here", msg.TypeID()),
		}
	}
}
