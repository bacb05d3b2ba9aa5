package output

import "strings"

// CAP formats IRCv3 capability negotiation commands. Negotiation happens
// during the handshake, before registration completes, so every command goes
// out immediately rather than through the flood queue.
type CAP struct {
	raw *Raw
}

// NewCAP creates the capability negotiation façade
func NewCAP(raw *Raw) *CAP {
	return &CAP{raw: raw}
}

// LS requests the server's supported capability list
func (o *CAP) LS() error {
	return o.raw.RawLineNow("CAP LS 302")
}

// Req requests one or more capabilities
func (o *CAP) Req(caps ...string) error {
	return o.raw.RawLineNow("CAP REQ :" + strings.Join(caps, " "))
}

// End closes capability negotiation so registration can complete
func (o *CAP) End() error {
	return o.raw.RawLineNow("CAP END")
}
