package v4

import (
	"net"
	"testing"

	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T, srcPort, dstPort int, payload []byte) []byte {
	udp := layers.UDP{SrcPort: layers.UDPPort(srcPort), DstPort: layers.UDPPort(dstPort)}
	ip4 := layers.IPv4{
		Version:  4,
		TTL:      0x80,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4(192, 168, 1, 1),
		DstIP:    net.IPv4bcast,
	}
	eth := layers.Ethernet{
		DstMAC:       layers.EthernetBroadcast,
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		EthernetType: layers.EthernetTypeIPv4,
	}
	require.NoError(t, udp.SetNetworkLayerForChecksum(&ip4))

	frame, err := serialize(&eth, &ip4, &udp, payload)
	require.NoError(t, err)
	return frame
}

func TestUnwrapFrame(t *testing.T) {
	assert := require.New(t)

	payload := make([]byte, OptionsOffset)
	payload[0] = 2
	frame := testFrame(t, 67, 68, payload)

	pkt, ok := unwrapFrame(frame, 68)
	assert.True(ok)
	assert.Equal(payload, pkt.Data)
	assert.Equal(67, pkt.Src.Port)
	assert.True(pkt.Src.IP.Equal(net.IPv4(192, 168, 1, 1)))

	_, ok = unwrapFrame(frame, 67)
	assert.False(ok, "other port")

	_, ok = unwrapFrame(frame[:MinPackSize-1], 68)
	assert.False(ok, "short frame")
}
