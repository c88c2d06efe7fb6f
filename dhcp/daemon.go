package dhcp

import (
	"context"
	"net"
	"time"

	"github.com/cimnine/dhcp4c/dhcp/config"
	v4 "github.com/cimnine/dhcp4c/dhcp/v4"
)

// LeaseInfo describes an acquired lease to reporters.
type LeaseInfo struct {
	Session      string
	HardwareAddr net.HardwareAddr
	HostName     string
	IPAddr       net.IP
	SubnetMask   net.IP
	Gateway      net.IP
	DNSServer    net.IP
	ServerID     net.IP
	Timeouts     struct {
		Lease           time.Duration
		T1RenewalTime   time.Duration
		T2RebindingTime time.Duration
	}
	AcquiredAt time.Time
}

// PrefixLength returns the length of the subnet mask in bits, 32 for a
// missing or non-canonical mask.
func (i LeaseInfo) PrefixLength() int {
	ones, bits := net.IPMask(i.SubnetMask.To4()).Size()
	if bits == 0 || ones == 0 {
		return 32
	}
	return ones
}

// A Reporter is told about acquired and lost leases. Renewals are reported
// as acquisitions again.
type Reporter interface {
	LeaseAcquired(info LeaseInfo) error
	LeaseLost(info LeaseInfo) error
}

// Daemon drives a Client from a single goroutine and restarts it after
// failures.
type Daemon struct {
	client   *Client
	hw       net.HardwareAddr
	timeout  time.Duration
	step     time.Duration
	check    time.Duration
	reporter Reporter

	failed  bool
	seen    uint64
	current *LeaseInfo
}

func NewDaemon(client *Client, hw net.HardwareAddr, responseTimeout time.Duration, cfg *config.DaemonConfig, reporter Reporter) *Daemon {
	return &Daemon{
		client:   client,
		hw:       hw,
		timeout:  responseTimeout,
		step:     cfg.Step(),
		check:    cfg.Check(),
		reporter: reporter,
	}
}

// Run returns once ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	log := d.client.log
	log.Infof("Starting daemon for '%s'.", d.hw)

	d.start()

	stepTicker := time.NewTicker(d.step)
	defer stepTicker.Stop()
	checkTicker := time.NewTicker(d.check)
	defer checkTicker.Stop()

	log.Info("Started daemon.")

	for {
		select {
		case <-ctx.Done():
			d.Shutdown()
			return nil

		case <-stepTicker.C:
			if d.failed {
				continue
			}
			if d.client.Step() == StatusFailed {
				log.Warnf("Lease attempt failed, retrying in %s: %s", d.check, d.client.Err())
				d.failed = true
			}
			d.observe()

		case <-checkTicker.C:
			if d.failed {
				d.start()
				continue
			}
			if result := d.client.CheckLease(); result.Failed() {
				log.Warnf("Lease check %s, retrying in %s: %s", result, d.check, d.client.Err())
				d.failed = true
			}
			d.observe()
		}
	}
}

func (d *Daemon) Shutdown() {
	log := d.client.log
	log.Info("Stopping daemon.")

	if err := d.client.Close(); err != nil {
		log.Warnf("Can't close transport: %s", err)
	}

	log.Info("Stopped daemon.")
}

func (d *Daemon) start() {
	err := d.client.Start(d.hw, d.timeout)
	d.failed = err != nil
	if err != nil {
		d.client.log.Warnf("Can't start lease attempt for '%s': %s", d.hw, err)
	}
	d.observe()
}

// observe reports lease changes since the last call.
func (d *Daemon) observe() {
	lease := d.client.Lease()

	if d.current != nil && (!lease.LocalIP.IsSet() || !d.current.IPAddr.Equal(lease.LocalIP.IP())) {
		d.reportLost(*d.current)
		d.current = nil
	}

	if acquired := d.client.Acquired(); acquired != d.seen && lease.LocalIP.IsSet() {
		d.seen = acquired
		info := d.leaseInfo(lease)
		d.current = &info
		d.reportAcquired(info)
	}
}

func (d *Daemon) reportAcquired(info LeaseInfo) {
	if d.reporter == nil {
		return
	}
	if err := d.reporter.LeaseAcquired(info); err != nil {
		d.client.log.Warnf("Can't report lease of '%s': %s", info.IPAddr, err)
	}
}

func (d *Daemon) reportLost(info LeaseInfo) {
	if d.reporter == nil {
		return
	}
	if err := d.reporter.LeaseLost(info); err != nil {
		d.client.log.Warnf("Can't report loss of '%s': %s", info.IPAddr, err)
	}
}

func (d *Daemon) leaseInfo(lease v4.Lease) LeaseInfo {
	info := LeaseInfo{
		Session:      d.client.Session().String(),
		HardwareAddr: d.hw,
		HostName:     v4.HostName(d.client.hostName, d.hw),
		IPAddr:       lease.LocalIP.IP(),
		SubnetMask:   lease.SubnetMask.IP(),
		Gateway:      lease.Gateway.IP(),
		DNSServer:    lease.DNSServer.IP(),
		ServerID:     lease.ServerID.IP(),
		AcquiredAt:   time.Now(),
	}
	info.Timeouts.Lease = time.Duration(lease.LeaseTime) * time.Millisecond
	info.Timeouts.T1RenewalTime = time.Duration(lease.RenewAfter) * time.Millisecond
	info.Timeouts.T2RebindingTime = time.Duration(lease.RebindAfter) * time.Millisecond
	return info
}
