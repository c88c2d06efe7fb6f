package models

type EmbeddedDevice struct {
	EmbeddedNetboxObject
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type Interface struct {
	NetboxObject
	Device     EmbeddedDevice `json:"device"`
	Name       string         `json:"name"`
	MACAddress string         `json:"mac_address"`
}

func (i Interface) Resolve() string {
	return "dcim/interfaces/{id}/"
}

type InterfaceList struct {
	NetboxList
	Interfaces []Interface `json:"results"`
}

func (InterfaceList) Resolve() string {
	return "dcim/interfaces/"
}

type EmbeddedInterface struct {
	EmbeddedNetboxObject
	Name   string         `json:"name"`
	Device EmbeddedDevice `json:"device"`
}
