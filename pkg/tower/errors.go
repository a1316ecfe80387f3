package tower

// ProtocolError describes a message that decoded fine but is not acceptable
// in the current conversation. It is non-fatal: the transport is expected to
// relay Warning to the offending peer and keep the connection up.
//
// The warning carries no session or correlation reference; there is nothing
// to correlate it to at this layer.
type ProtocolError struct {
	Reason  string
	Warning string
}

func (e *ProtocolError) Error() string {
	return e.Reason
}
