package reporter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cimnine/dhcp4c/dhcp"
	"github.com/cimnine/dhcp4c/netbox"
	"github.com/cimnine/dhcp4c/netbox/models"
)

// Netbox records leased addresses in the IPAM of a NetBox instance, assigned
// to the interface that carries the client's MAC.
type Netbox struct {
	Client *netbox.Client
	Log    *zap.SugaredLogger
}

func (n Netbox) LeaseAcquired(info dhcp.LeaseInfo) error {
	mac := info.HardwareAddr.String()

	iface, err := n.findInterfaceByMAC(mac)
	if err != nil {
		return err
	}

	address := cidr(info)
	body := &models.WritableIP{
		RawAddress:         address,
		Status:             n.Client.Config.LeasedStatus(),
		DNSName:            info.HostName,
		Description:        n.description(info),
		AssignedObjectType: models.AssignedObjectTypeInterface,
		AssignedObjectID:   iface.ID,
	}

	existing, err := n.findIPAddress(address)
	if err != nil {
		return err
	}

	if existing == nil {
		n.log().Infof("Creating IP '%s' on interface '%s' of '%s' in Netbox.", address, iface.Name, iface.Device.Name)
		_, err = n.Client.CreateIPAddress(body)
	} else {
		n.log().Infof("Updating IP '%s' (%d) on interface '%s' of '%s' in Netbox.", address, existing.ID, iface.Name, iface.Device.Name)
		_, err = n.Client.UpdateIPAddress(existing.ID, body)
	}
	if err != nil {
		n.log().Warnf("Can't record IP '%s' in Netbox: %s", address, err)
	}
	return err
}

func (n Netbox) LeaseLost(info dhcp.LeaseInfo) error {
	address := cidr(info)

	existing, err := n.findIPAddress(address)
	if err != nil {
		return err
	}
	if existing == nil {
		n.log().Infof("IP '%s' is not in Netbox, nothing to update.", address)
		return nil
	}

	n.log().Infof("Marking IP '%s' (%d) as '%s' in Netbox.", address, existing.ID, n.Client.Config.ExpiredStatus())
	_, err = n.Client.UpdateIPAddress(existing.ID, &models.WritableIP{Status: n.Client.Config.ExpiredStatus()})
	return err
}

func (n Netbox) findInterfaceByMAC(mac string) (iface models.Interface, err error) {
	ifaces, err := n.Client.FindInterfacesByMAC(mac)
	if err != nil {
		n.log().Warnf("Error while receiving interfaces for MAC '%s': %s", mac, err)
		return
	}

	if len(ifaces) == 0 {
		n.log().Warnf("No interface with MAC '%s' found.", mac)
		return iface, fmt.Errorf("interface for MAC '%s' not found", mac)
	}

	if len(ifaces) > 1 {
		n.log().Warnf("More than one interface with MAC '%s' found.", mac)
		return iface, fmt.Errorf("more than one interface with MAC '%s' found", mac)
	}

	return ifaces[0], nil
}

// findIPAddress returns nil when the address is not known yet.
func (n Netbox) findIPAddress(address string) (*models.IP, error) {
	ips, err := n.Client.FindIPAddresses(address)
	if err != nil {
		n.log().Warnf("Error while receiving IP '%s': %s", address, err)
		return nil, err
	}

	if len(ips) > 1 {
		n.log().Warnf("More than one IP '%s' found.", address)
		return nil, fmt.Errorf("more than one IP '%s' found", address)
	}
	if len(ips) == 0 {
		return nil, nil
	}
	return &ips[0], nil
}

func (n Netbox) description(info dhcp.LeaseInfo) string {
	if n.Client.Config.Description != "" {
		return n.Client.Config.Description
	}
	return fmt.Sprintf("DHCP lease from %s", info.ServerID)
}

func (n Netbox) log() *zap.SugaredLogger {
	if n.Log == nil {
		return zap.NewNop().Sugar()
	}
	return n.Log
}

func cidr(info dhcp.LeaseInfo) string {
	return fmt.Sprintf("%s/%d", info.IPAddr, info.PrefixLength())
}
