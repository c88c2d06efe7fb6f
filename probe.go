package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/cimnine/dhcp4c/dhcp"
	"github.com/cimnine/dhcp4c/dhcp/config"
)

const probeStepInterval = 10 * time.Millisecond

func probe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	iface, _ := flags.GetString("iface")
	hwaddr, _ := flags.GetString("hwaddr")
	hostName, _ := flags.GetString("host-name")
	timeout, _ := flags.GetDuration("timeout")
	raw, _ := flags.GetBool("raw")
	level, _ := flags.GetString("log-level")

	slog, err := newLogger(level)
	if err != nil {
		return err
	}
	defer slog.Sync()

	clientConfig := config.ClientConfig{
		Interface:       iface,
		HardwareAddress: hwaddr,
		HostName:        hostName,
		Transport:       config.TransportUDP,
	}
	if raw {
		clientConfig.Transport = config.TransportRaw
	}

	hw, err := clientConfig.HardwareAddr()
	if err != nil {
		return err
	}

	transport, err := newTransport(&clientConfig, slog)
	if err != nil {
		return err
	}

	client := dhcp.NewClient(transport,
		dhcp.WithLogger(slog),
		dhcp.WithHostName(clientConfig.HostNamePrefix()))
	defer client.Close()

	slog.Infof("Probing for a lease for '%s' via '%s'...", hw, iface)

	if err := client.Start(hw, timeout); err != nil {
		return err
	}

	deadline := time.Now().Add(2 * timeout)
	for {
		switch client.Step() {
		case dhcp.StatusLeased:
			printLease(cmd, client)
			return nil
		case dhcp.StatusFailed:
			return client.Err()
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("no lease for '%s' within %s", hw, 2*timeout)
		}
		time.Sleep(probeStepInterval)
	}
}

func printLease(cmd *cobra.Command, client *dhcp.Client) {
	lease := client.Lease()
	out := cmd.OutOrStdout()

	row := func(name string, value interface{}) {
		fmt.Fprintf(out, "%-14s %v\n", name+":", value)
	}

	row("Address", client.LocalIP())
	row("Subnet mask", net.IPMask(client.SubnetMask()))
	row("Gateway", client.GatewayIP())
	row("DNS server", client.DNSServerIP())
	row("Server", client.ServerIP())
	row("Lease", time.Duration(lease.LeaseTime)*time.Millisecond)
	row("Renew after", time.Duration(lease.RenewAfter)*time.Millisecond)
	row("Rebind after", time.Duration(lease.RebindAfter)*time.Millisecond)
	row("Session", client.Session())
}
