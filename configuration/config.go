package configuration

import (
	"fmt"
	"os"

	"github.com/cimnine/dhcp4c/cache"
	"github.com/cimnine/dhcp4c/dhcp/config"
	"github.com/cimnine/dhcp4c/netbox"
	"gopkg.in/yaml.v2"
)

type Configuration struct {
	Client config.ClientConfig `yaml:"client"`
	Daemon config.DaemonConfig `yaml:"daemon"`
	Cache  cache.CacheConfig   `yaml:"cache"`
	Netbox netbox.NetboxConfig `yaml:"netbox"`
}

func ReadConfig(filename string) (conf Configuration, err error) {
	rawFile, err := os.ReadFile(filename)
	if err != nil {
		return conf, fmt.Errorf("can't read config file '%s': %w", filename, err)
	}

	return ParseConfig(rawFile)
}

func ParseConfig(raw []byte) (conf Configuration, err error) {
	err = yaml.UnmarshalStrict(raw, &conf)
	if err != nil {
		return conf, fmt.Errorf("can't parse config file: %w", err)
	}

	if err = conf.Client.Validate(); err != nil {
		return conf, err
	}
	if conf.Netbox.Enabled && conf.Netbox.API.URL == "" {
		return conf, fmt.Errorf("netbox is enabled but has no api url")
	}

	return conf, nil
}
