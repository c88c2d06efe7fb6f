package netbox

import (
	"time"

	"github.com/cimnine/dhcp4c/util"
)

const (
	defaultStatus     = "dhcp"
	defaultLostStatus = "deprecated"
	defaultTimeout    = 10 * time.Second
)

type NetboxConfig struct {
	Enabled bool `yaml:"enabled"`
	API     struct {
		URL     string `yaml:"url"`
		Token   string `yaml:"token"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Status      string `yaml:"status"`
	LostStatus  string `yaml:"lost_status"`
	Description string `yaml:"description"`
}

func (c *NetboxConfig) Timeout() time.Duration {
	return util.ParseDurationOrDefault(c.API.Timeout, defaultTimeout)
}

// LeasedStatus is the status given to addresses with an active lease.
func (c *NetboxConfig) LeasedStatus() string {
	if c.Status == "" {
		return defaultStatus
	}
	return c.Status
}

// ExpiredStatus is the status given to addresses whose lease was lost.
func (c *NetboxConfig) ExpiredStatus() string {
	if c.LostStatus == "" {
		return defaultLostStatus
	}
	return c.LostStatus
}
