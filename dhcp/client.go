package dhcp

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"slices"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv4"
	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"

	"github.com/cimnine/dhcp4c/dhcp/lease"
	v4 "github.com/cimnine/dhcp4c/dhcp/v4"
	"github.com/cimnine/dhcp4c/util"
)

const (
	// DefaultHostName prefixes the announced host name.
	DefaultHostName = "WIZnet"

	pollInterval = 50

	hardwareAddrLen = 6
)

// Client acquires and keeps a DHCPv4 lease without ever blocking. The caller
// drives it by calling Step and CheckLease from its own loop. A Client is not
// safe for concurrent use.
type Client struct {
	transport Transport
	clock     Clock
	log       *zap.SugaredLogger
	hostName  string
	seed      func() uint32

	state    State
	tx       v4.Transaction
	timeout  uint32
	session  uuid.UUID
	err      error
	acquired uint64

	// pending receives what the current exchange learns, lease is what the
	// last ACK committed.
	pending v4.Lease
	lease   v4.Lease
	timer   lease.Timer

	waitStarted uint32
	lastPoll    uint32
}

type ClientOption func(*Client)

func WithClock(clock Clock) ClientOption {
	return func(c *Client) {
		c.clock = clock
	}
}

func WithLogger(log *zap.SugaredLogger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

func WithHostName(hostName string) ClientOption {
	return func(c *Client) {
		c.hostName = hostName
	}
}

// WithTransactionSeed replaces the source of the first transaction id of
// every lease attempt.
func WithTransactionSeed(seed func() uint32) ClientOption {
	return func(c *Client) {
		c.seed = seed
	}
}

func NewClient(transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport: transport,
		clock:     NewSystemClock(),
		log:       zap.NewNop().Sugar(),
		hostName:  DefaultHostName,
		seed:      randomTransactionID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// randomTransactionID picks a value in [1, 2000).
func randomTransactionID() uint32 {
	return uint32(rand.Int63n(1999)) + 1
}

// Start forgets any previous lease, binds the client port and performs the
// first Step.
func (c *Client) Start(hw net.HardwareAddr, responseTimeout time.Duration) error {
	if len(hw) != hardwareAddrLen {
		return fmt.Errorf("hardware address '%s' is not an ethernet address", hw)
	}

	c.pending.Reset()
	c.lease.Reset()
	c.timer.Disarm()
	c.err = nil

	c.tx = v4.Transaction{HardwareAddr: hw, HostName: c.hostName}
	c.timeout = util.DurationToMillis(responseTimeout)
	c.state = StateStart

	if err := c.prepare(); err != nil {
		return err
	}

	if c.Step() == StatusFailed {
		return c.err
	}
	return nil
}

// prepare starts a new lease attempt on a freshly bound transport.
func (c *Client) prepare() error {
	c.tx.ID = c.seed()
	c.tx.InitialID = c.tx.ID
	c.session = uuid.NewV4()

	if err := c.transport.Open(dhcpv4.ClientPort); err != nil {
		c.err = &TransportError{Op: "bind", Err: err}
		c.log.Errorf("Can't bind DHCP client port %d: %s", dhcpv4.ClientPort, err)
		return c.err
	}

	c.tx.StartedAt = c.clock.Millis()
	return nil
}

// Step performs at most one unit of protocol work.
func (c *Client) Step() Status {
	switch c.state {
	case StateLeased:
		return StatusLeased

	case StateStart:
		c.tx.ID++
		if err := c.send(dhcpv4.MessageTypeDiscover); err != nil {
			return StatusFailed
		}
		c.enter(StateWaitForOffer)

	case StateWaitForOffer:
		c.await(StateDiscovered)

	case StateDiscovered:
		reply, ok := c.receive(dhcpv4.MessageTypeOffer)
		if ok {
			// continue with the id the offer came with
			c.tx.ID = reply.TransactionID
			c.log.Infof("Received DHCPOFFER of '%s' from '%s' in transaction '%x'", c.pending.LocalIP, c.pending.ServerID, c.tx.ID)
			if err := c.send(dhcpv4.MessageTypeRequest); err != nil {
				return StatusFailed
			}
			c.enter(StateWaitForAck)
		} else {
			c.enter(StateWaitForOffer)
		}

	case StateWaitForAck:
		c.await(StateRequested)

	case StateRequested:
		reply, ok := c.receive(dhcpv4.MessageTypeAck, dhcpv4.MessageTypeNak)
		switch {
		case ok && reply.Type == dhcpv4.MessageTypeAck:
			c.commit()
			return StatusLeased
		case ok && reply.Type == dhcpv4.MessageTypeNak:
			c.log.Warnf("Received DHCPNAK from '%s' in transaction '%x'", c.pending.ServerID, reply.TransactionID)
			c.pending.Reset()
			c.lease.Reset()
			c.timer.Disarm()
			c.state = StateStart
		default:
			c.enter(StateWaitForAck)
		}

	case StateRerequest:
		c.tx.ID++
		if err := c.send(dhcpv4.MessageTypeRequest); err != nil {
			return StatusFailed
		}
		c.state = StateRequested

	default:
		return StatusFailed
	}

	return StatusInProgress
}

// enter switches to a waiting state and restarts its poll and timeout stamps.
func (c *Client) enter(state State) {
	now := c.clock.Millis()
	c.waitStarted = now
	c.lastPoll = now
	c.state = state
}

// await moves to next once a datagram is pending and back to Start when the
// response timeout passed.
func (c *Client) await(next State) {
	switch c.poll() {
	case pollGotData:
		c.state = next
	case pollTimeout:
		timeouts.Inc()
		c.log.Infof("No reply in transaction '%x' after %d ms, starting over", c.tx.ID, c.timeout)
		c.state = StateStart
	}
}

func (c *Client) poll() pollResult {
	now := c.clock.Millis()
	if now-c.lastPoll < pollInterval {
		return pollWaiting
	}
	c.lastPoll = now

	if c.transport.Poll() > 0 {
		return pollGotData
	}
	if now-c.waitStarted > c.timeout {
		return pollTimeout
	}
	return pollWaiting
}

// receive decodes the current datagram. Only a reply of one of the expected
// types updates the pending lease. The datagram is flushed in any case.
func (c *Client) receive(expected ...dhcpv4.MessageType) (v4.Reply, bool) {
	pkt := c.transport.Next()
	defer c.transport.Flush()

	if pkt.Len() == 0 {
		return v4.Reply{}, false
	}

	scratch := c.pending
	scratch.ResetTimes()
	reply, err := v4.Decode(pkt, &c.tx, &scratch)
	if errors.Is(err, v4.ErrRejected) {
		repliesRejected.Inc()
		c.log.Debugf("Ignoring %d bytes from '%s'", pkt.Len(), pkt.Src)
		return reply, false
	}
	if !slices.Contains(expected, reply.Type) {
		c.log.Debugf("Ignoring %s from '%s' in state %s", reply.Type, pkt.Src, c.state)
		return reply, false
	}
	if reply.Truncated {
		c.log.Debugf("Reply in transaction '%x': %s", reply.TransactionID, v4.ErrMalformedOption)
	}

	c.pending = scratch
	return reply, true
}

func (c *Client) send(mt dhcpv4.MessageType) error {
	secs := (c.clock.Millis() - c.tx.StartedAt) / 1000
	if secs > 0xffff {
		secs = 0xffff
	}

	payload, err := v4.Encode(mt, &c.tx, &c.pending, uint16(secs))
	if err == nil {
		c.log.Infof("Sending %s for '%s' in transaction '%x'", mt, c.tx.HardwareAddr, c.tx.ID)
		err = c.transport.Broadcast(payload, dhcpv4.ServerPort)
	}
	if err != nil {
		c.err = &TransportError{Op: "send", Err: err}
		c.log.Errorf("Can't send %s in transaction '%x': %s", mt, c.tx.ID, err)
		return c.err
	}

	messagesSent.WithLabelValues(mt.String()).Inc()
	return nil
}

func (c *Client) commit() {
	p := &c.pending
	p.LeaseTime, p.RenewAfter, p.RebindAfter = lease.Derive(p.LeaseTime, p.RenewAfter, p.RebindAfter)

	c.lease = *p
	c.timer.Arm(c.clock.Millis(), p.LeaseTime, p.RenewAfter, p.RebindAfter)
	c.state = StateLeased
	c.tx.ID++

	c.acquired++
	leasesAcquired.Inc()
	c.log.Infof("Leased '%s' from '%s' for %d ms (renew after %d ms, rebind after %d ms)",
		c.lease.LocalIP, c.lease.ServerID, c.lease.LeaseTime, c.lease.RenewAfter, c.lease.RebindAfter)
}

// CheckLease ages the lease and starts a renewal or a rebind when one is
// due. It is meant to be called about once per second.
func (c *Client) CheckLease() LeaseCheck {
	event := c.timer.Tick(c.clock.Millis())

	if c.timer.Expired() && (c.state == StateLeased || c.state == StateWaitForOffer) {
		if c.lease.LocalIP.IsSet() {
			c.log.Warnf("Lease of '%s' expired", c.lease.LocalIP)
		}
		c.pending.Reset()
		c.lease.Reset()
	}

	if c.state != StateLeased {
		return CheckNone
	}

	switch event {
	case lease.EventRebindDue:
		c.log.Infof("Rebinding '%s'", c.lease.LocalIP)
		c.pending.Reset()
		c.state = StateStart
		if err := c.prepare(); err != nil {
			return CheckRebindFailed
		}
		return CheckRebindOK

	case lease.EventRenewDue:
		c.log.Infof("Renewing '%s' with '%s'", c.lease.LocalIP, c.lease.ServerID)
		c.pending = c.lease
		c.state = StateRerequest
		if err := c.prepare(); err != nil {
			return CheckRenewFailed
		}
		return CheckRenewWaiting
	}

	return CheckNone
}

// Close releases the transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

func (c *Client) LocalIP() net.IP {
	return c.lease.LocalIP.IP()
}

func (c *Client) SubnetMask() net.IP {
	return c.lease.SubnetMask.IP()
}

func (c *Client) GatewayIP() net.IP {
	return c.lease.Gateway.IP()
}

func (c *Client) ServerIP() net.IP {
	return c.lease.ServerID.IP()
}

func (c *Client) DNSServerIP() net.IP {
	return c.lease.DNSServer.IP()
}

// Lease returns the lease committed by the last ACK.
func (c *Client) Lease() v4.Lease {
	return c.lease
}

func (c *Client) State() State {
	return c.state
}

func (c *Client) TransactionID() uint32 {
	return c.tx.ID
}

func (c *Client) HardwareAddr() net.HardwareAddr {
	return c.tx.HardwareAddr
}

// Acquired counts the ACKs committed so far, renewals included.
func (c *Client) Acquired() uint64 {
	return c.acquired
}

// Session identifies the current lease attempt in logs and reports.
func (c *Client) Session() uuid.UUID {
	return c.session
}

// Err returns the transport error behind the last failure.
func (c *Client) Err() error {
	return c.err
}
