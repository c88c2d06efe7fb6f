package v4

import (
	"encoding/binary"
	"net"
	"strings"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/stretchr/testify/require"
)

var testMAC = net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}

func testTransaction() *Transaction {
	return &Transaction{
		ID:           1001,
		InitialID:    1000,
		HardwareAddr: testMAC,
		HostName:     "WIZnet",
	}
}

func TestEncodeDiscoverHeader(t *testing.T) {
	assert := require.New(t)

	b, err := Encode(dhcpv4.MessageTypeDiscover, testTransaction(), &Lease{}, 3)
	assert.NoError(err)

	assert.Equal([]byte{1, 1, 6, 0}, b[0:4])
	assert.Equal(uint32(1001), binary.BigEndian.Uint32(b[4:8]))
	assert.Equal(uint16(3), binary.BigEndian.Uint16(b[8:10]))
	assert.Equal(uint16(0x8000), binary.BigEndian.Uint16(b[10:12]))
	assert.Equal(make([]byte, 16), b[12:28])
	assert.Equal([]byte(testMAC), b[28:34])
	assert.Equal(make([]byte, 10+64+128), b[34:HeaderSize])
	assert.Equal(MagicCookie, binary.BigEndian.Uint32(b[HeaderSize:OptionsOffset]))

	options := b[OptionsOffset:]
	assert.Equal([]byte{53, 1, 1}, options[0:3])
	assert.Equal([]byte{61, 7, 1, 0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}, options[3:12])
	assert.Equal(append([]byte{12, 12}, "WIZnetEF0001"...), options[12:26])
	assert.Equal([]byte{55, 6, 1, 3, 6, 15, 58, 59}, options[26:34])
	assert.Equal([]byte{255}, options[34:])
}

func TestEncodeRequestCarriesLeaseAddresses(t *testing.T) {
	assert := require.New(t)

	lease := &Lease{
		LocalIP:  Addr{192, 168, 1, 100},
		ServerID: Addr{192, 168, 1, 1},
	}
	b, err := Encode(dhcpv4.MessageTypeRequest, testTransaction(), lease, 0)
	assert.NoError(err)

	msg, err := dhcpv4.FromBytes(b)
	assert.NoError(err)
	assert.Equal(dhcpv4.MessageTypeRequest, msg.MessageType())
	assert.Equal("192.168.1.100", msg.RequestedIPAddress().String())
	assert.Equal("192.168.1.1", msg.ServerIdentifier().String())
	assert.Equal("WIZnetEF0001", msg.HostName())
	assert.Equal(testMAC, msg.ClientHWAddr)
	assert.True(msg.IsBroadcast())

	// a DISCOVER never carries them
	b, err = Encode(dhcpv4.MessageTypeDiscover, testTransaction(), lease, 0)
	assert.NoError(err)
	msg, err = dhcpv4.FromBytes(b)
	assert.NoError(err)
	assert.Nil(msg.RequestedIPAddress())
	assert.Nil(msg.ServerIdentifier())
}

func TestEncodeRequestSkipsUnsetAddresses(t *testing.T) {
	assert := require.New(t)

	b, err := Encode(dhcpv4.MessageTypeRequest, testTransaction(), &Lease{ServerID: Addr{10, 0, 0, 1}}, 0)
	assert.NoError(err)

	var layer layers.DHCPv4
	assert.NoError(layer.DecodeFromBytes(b, gopacket.NilDecodeFeedback))

	var types []layers.DHCPOpt
	for _, o := range layer.Options {
		types = append(types, o.Type)
	}
	assert.Equal([]layers.DHCPOpt{
		layers.DHCPOptMessageType,
		layers.DHCPOptClientID,
		layers.DHCPOptHostname,
		layers.DHCPOptServerID,
		layers.DHCPOptParamsRequest,
	}, types)
}

func TestEncodeMatchesGopacketDecoder(t *testing.T) {
	assert := require.New(t)

	tx := testTransaction()
	tx.ID = 0xcafe0001
	b, err := Encode(dhcpv4.MessageTypeDiscover, tx, &Lease{}, 0x1234)
	assert.NoError(err)

	var layer layers.DHCPv4
	assert.NoError(layer.DecodeFromBytes(b, gopacket.NilDecodeFeedback))
	assert.Equal(layers.DHCPOpRequest, layer.Operation)
	assert.Equal(layers.LinkTypeEthernet, layer.HardwareType)
	assert.Equal(uint8(6), layer.HardwareLen)
	assert.Equal(uint32(0xcafe0001), layer.Xid)
	assert.Equal(uint16(0x1234), layer.Secs)
	assert.Equal(uint16(0x8000), layer.Flags)
	assert.Equal(testMAC, layer.ClientHWAddr)
	assert.True(layer.ClientIP.Equal(net.IPv4zero))
}

func TestEncodeRejectsBadInput(t *testing.T) {
	assert := require.New(t)

	tx := testTransaction()
	tx.HardwareAddr = net.HardwareAddr{1, 2, 3}
	_, err := Encode(dhcpv4.MessageTypeDiscover, tx, &Lease{}, 0)
	assert.Error(err)

	tx = testTransaction()
	tx.HostName = strings.Repeat("x", 250)
	_, err = Encode(dhcpv4.MessageTypeDiscover, tx, &Lease{}, 0)
	assert.ErrorIs(err, ErrShortBuffer)
}

func TestHostName(t *testing.T) {
	assert := require.New(t)

	assert.Equal("WIZnetEF0001", HostName("WIZnet", testMAC))
	assert.Equal("node0A0B0C", HostName("node", net.HardwareAddr{0, 0, 0, 0x0a, 0x0b, 0x0c}))
	assert.Equal("bare", HostName("bare", nil))
}
