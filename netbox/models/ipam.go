package models

import "net"

// AssignedObjectTypeInterface is the content type of a device interface.
const AssignedObjectTypeInterface = "dcim.interface"

type IP struct {
	NetboxCustomFieldsObject
	RawAddress         string             `json:"address"`
	Status             Status             `json:"status"`
	DNSName            string             `json:"dns_name"`
	Description        string             `json:"description"`
	AssignedObjectType string             `json:"assigned_object_type"`
	AssignedObjectID   uint64             `json:"assigned_object_id"`
	AssignedObject     *EmbeddedInterface `json:"assigned_object"`
}

func (ip IP) Address() (net.IP, *net.IPNet, error) {
	return net.ParseCIDR(ip.RawAddress)
}

func (IP) Resolve() string {
	return "ipam/ip-addresses/{id}/"
}

type IPList struct {
	NetboxList
	IPs []IP `json:"results"`
}

func (IPList) Resolve() string {
	return "ipam/ip-addresses/"
}

// WritableIP is the body of create and update requests. Status is a plain
// value there.
type WritableIP struct {
	RawAddress         string `json:"address,omitempty"`
	Status             string `json:"status,omitempty"`
	DNSName            string `json:"dns_name,omitempty"`
	Description        string `json:"description,omitempty"`
	AssignedObjectType string `json:"assigned_object_type,omitempty"`
	AssignedObjectID   uint64 `json:"assigned_object_id,omitempty"`
}
