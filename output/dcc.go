package output

import (
	"fmt"
	"math/big"
	"net"

	"github.com/c360/ircbot/errors"
)

// DCC formats direct client-to-client negotiation requests. The requests ride
// inside CTCP messages; the direct connections themselves are managed by the
// dcc package.
type DCC struct {
	irc *IRC
}

// NewDCC creates the DCC negotiation façade
func NewDCC(irc *IRC) *DCC {
	return &DCC{irc: irc}
}

// RequestChat asks a nick to open a direct chat session on the given
// listening address
func (o *DCC) RequestChat(nick string, addr net.IP, port int) error {
	enc, err := EncodeAddress(addr)
	if err != nil {
		return errors.Wrap(err, "output", "dcc-chat", "encode listen address")
	}
	return o.irc.CTCPCommand(nick, fmt.Sprintf("DCC CHAT chat %s %d", enc, port))
}

// OfferFile offers a file transfer to a nick from the given listening address
func (o *DCC) OfferFile(nick, filename string, addr net.IP, port int, size int64) error {
	enc, err := EncodeAddress(addr)
	if err != nil {
		return errors.Wrap(err, "output", "dcc-send", "encode listen address")
	}
	return o.irc.CTCPCommand(nick, fmt.Sprintf("DCC SEND %s %s %d %d", filename, enc, port, size))
}

// AcceptResume acknowledges a resumed transfer at the given file position
func (o *DCC) AcceptResume(nick, filename string, port int, position int64) error {
	return o.irc.CTCPCommand(nick, fmt.Sprintf("DCC ACCEPT %s %d %d", filename, port, position))
}

// EncodeAddress renders an IP in DCC wire form: IPv4 as an unsigned decimal
// integer, IPv6 as the plain string representation
func EncodeAddress(addr net.IP) (string, error) {
	if addr == nil {
		return "", errors.WrapInvalid(errors.ErrInvalidConfig, "output", "dcc", "address is nil")
	}
	if v4 := addr.To4(); v4 != nil {
		return new(big.Int).SetBytes(v4).String(), nil
	}
	return addr.String(), nil
}

// DecodeAddress parses the DCC wire form produced by EncodeAddress
func DecodeAddress(encoded string) (net.IP, error) {
	if ip := net.ParseIP(encoded); ip != nil {
		return ip, nil
	}
	n, ok := new(big.Int).SetString(encoded, 10)
	if !ok || n.Sign() < 0 || n.BitLen() > 32 {
		return nil, errors.WrapInvalid(errors.ErrMalformedLine, "output", "dcc", "decode address "+encoded)
	}
	b := n.Bytes()
	ip := make(net.IP, 4)
	copy(ip[4-len(b):], b)
	return ip, nil
}
