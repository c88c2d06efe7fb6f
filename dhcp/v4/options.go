package v4

import (
	"encoding/binary"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/insomniacslk/dhcp/iana"

	"github.com/cimnine/dhcp4c/util"
)

const (
	hlenEthernet  = 6
	chaddrSize    = 16
	snameSize     = 64
	fileSize      = 128
	flagBroadcast = 0x8000

	// HeaderSize is the size of the fixed BOOTP header.
	HeaderSize = 236
	// OptionsOffset is where the option stream starts, right after the cookie.
	OptionsOffset = HeaderSize + 4
	// MagicCookie marks the start of the DHCP options.
	MagicCookie uint32 = 0x63825363

	maxMessageSize = 576
)

var (
	htypeEthernet = byte(iana.HWTypeEthernet)

	optPad                = dhcpv4.OptionPad.Code()
	optEnd                = dhcpv4.OptionEnd.Code()
	optSubnetMask         = dhcpv4.OptionSubnetMask.Code()
	optRouter             = dhcpv4.OptionRouter.Code()
	optDNS                = dhcpv4.OptionDomainNameServer.Code()
	optHostName           = dhcpv4.OptionHostName.Code()
	optDomainName         = dhcpv4.OptionDomainName.Code()
	optRequestedIP        = dhcpv4.OptionRequestedIPAddress.Code()
	optLeaseTime          = dhcpv4.OptionIPAddressLeaseTime.Code()
	optMessageType        = dhcpv4.OptionDHCPMessageType.Code()
	optServerIdentifier   = dhcpv4.OptionServerIdentifier.Code()
	optParameterRequest   = dhcpv4.OptionParameterRequestList.Code()
	optRenewalTimeValue   = dhcpv4.OptionRenewTimeValue.Code()
	optRebindingTimeValue = dhcpv4.OptionRebindingTimeValue.Code()
	optClientIdentifier   = dhcpv4.OptionClientIdentifier.Code()
)

// requestedParameters is the payload of the parameter request list.
var requestedParameters = []byte{
	optSubnetMask,
	optRouter,
	optDNS,
	optDomainName,
	optRenewalTimeValue,
	optRebindingTimeValue,
}

// decodeState is what option handlers write into.
type decodeState struct {
	reply *Reply
	lease *Lease
	src   Addr
}

type optionHandler struct {
	minLen int
	decode func(s *decodeState, payload []byte)
}

var optionHandlers = map[uint8]optionHandler{
	optMessageType:        {minLen: 1, decode: decodeMessageType},
	optSubnetMask:         {minLen: 4, decode: decodeSubnetMask},
	optRouter:             {minLen: 4, decode: decodeRouter},
	optDNS:                {minLen: 4, decode: decodeDNS},
	optServerIdentifier:   {minLen: 4, decode: decodeServerIdentifier},
	optRenewalTimeValue:   {minLen: 4, decode: decodeRenewalTime},
	optRebindingTimeValue: {minLen: 4, decode: decodeRebindingTime},
	optLeaseTime:          {minLen: 4, decode: decodeLeaseTime},
}

func decodeMessageType(s *decodeState, payload []byte) {
	s.reply.Type = dhcpv4.MessageType(payload[0])
}

func decodeSubnetMask(s *decodeState, payload []byte) {
	copy(s.lease.SubnetMask[:], payload[:4])
}

// Only the first router is kept.
func decodeRouter(s *decodeState, payload []byte) {
	copy(s.lease.Gateway[:], payload[:4])
}

// Only the first name server is kept.
func decodeDNS(s *decodeState, payload []byte) {
	copy(s.lease.DNSServer[:], payload[:4])
}

// A server identifier is taken over only while no server is known yet or
// when the reply comes from the server we already talk to.
func decodeServerIdentifier(s *decodeState, payload []byte) {
	if s.lease.ServerID.IsSet() && s.lease.ServerID != s.src {
		return
	}
	copy(s.lease.ServerID[:], payload[:4])
}

func decodeRenewalTime(s *decodeState, payload []byte) {
	s.lease.RenewAfter = secondsToMillis(payload)
}

func decodeRebindingTime(s *decodeState, payload []byte) {
	s.lease.RebindAfter = secondsToMillis(payload)
}

func decodeLeaseTime(s *decodeState, payload []byte) {
	s.lease.LeaseTime = secondsToMillis(payload)
}

// secondsToMillis converts a 4 byte big endian number of seconds,
// saturating at the largest representable value.
func secondsToMillis(payload []byte) uint32 {
	seconds := binary.BigEndian.Uint32(payload[:4])
	return util.SafeConvertToUint32(float64(seconds) * 1000)
}
