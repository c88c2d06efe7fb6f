package config

import (
	"fmt"
	"net"
	"time"

	"github.com/cimnine/dhcp4c/util"
)

const (
	TransportUDP = "udp"
	TransportRaw = "raw"

	defaultHostName        = "WIZnet"
	defaultResponseTimeout = 60 * time.Second
	defaultStepInterval    = 10 * time.Millisecond
	defaultCheckInterval   = time.Second
)

type ClientConfig struct {
	Interface       string `yaml:"interface"`
	HardwareAddress string `yaml:"hardware_address"`
	HostName        string `yaml:"host_name"`
	ResponseTimeout string `yaml:"response_timeout"`
	Transport       string `yaml:"transport"`
}

func (c *ClientConfig) Timeout() time.Duration {
	return util.ParseDurationOrDefault(c.ResponseTimeout, defaultResponseTimeout)
}

func (c *ClientConfig) HostNamePrefix() string {
	if c.HostName == "" {
		return defaultHostName
	}
	return c.HostName
}

func (c *ClientConfig) TransportKind() string {
	if c.Transport == "" {
		return TransportUDP
	}
	return c.Transport
}

// HardwareAddr returns the configured override or else the address of the
// configured interface.
func (c *ClientConfig) HardwareAddr() (net.HardwareAddr, error) {
	if c.HardwareAddress != "" {
		hw, err := net.ParseMAC(c.HardwareAddress)
		if err != nil {
			return nil, fmt.Errorf("can't parse hardware address '%s': %w", c.HardwareAddress, err)
		}
		if len(hw) != 6 {
			return nil, fmt.Errorf("hardware address '%s' is not an ethernet address", c.HardwareAddress)
		}
		return hw, nil
	}

	iface, err := c.NetInterface()
	if err != nil {
		return nil, err
	}
	if len(iface.HardwareAddr) != 6 {
		return nil, fmt.Errorf("interface '%s' has no ethernet address", iface.Name)
	}
	return iface.HardwareAddr, nil
}

func (c *ClientConfig) NetInterface() (*net.Interface, error) {
	if c.Interface == "" {
		return nil, fmt.Errorf("no interface configured")
	}
	iface, err := net.InterfaceByName(c.Interface)
	if err != nil {
		return nil, fmt.Errorf("can't find interface '%s': %w", c.Interface, err)
	}
	return iface, nil
}

func (c *ClientConfig) Validate() error {
	switch c.TransportKind() {
	case TransportUDP, TransportRaw:
	default:
		return fmt.Errorf("unknown transport '%s', expected '%s' or '%s'", c.Transport, TransportUDP, TransportRaw)
	}
	if c.TransportKind() == TransportRaw && c.Interface == "" {
		return fmt.Errorf("transport '%s' needs an interface", TransportRaw)
	}
	return nil
}

type DaemonConfig struct {
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	StepInterval   string `yaml:"step_interval"`
	CheckInterval  string `yaml:"check_interval"`
	MetricsAddress string `yaml:"metrics_address"`
}

func (d *DaemonConfig) Step() time.Duration {
	return util.ParseDurationOrDefault(d.StepInterval, defaultStepInterval)
}

func (d *DaemonConfig) Check() time.Duration {
	return util.ParseDurationOrDefault(d.CheckInterval, defaultCheckInterval)
}
