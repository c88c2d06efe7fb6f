package netbox

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cimnine/dhcp4c/netbox/models"
	"gopkg.in/resty.v1"
)

type Client struct {
	Config *NetboxConfig
	rest   *resty.Client
}

func NewClient(config *NetboxConfig) *Client {
	rest := resty.New().
		SetHostURL(strings.TrimSuffix(config.API.URL, "/")).
		SetTimeout(config.Timeout()).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Token %s", config.API.Token))

	return &Client{Config: config, rest: rest}
}

func (c *Client) FindInterfacesByMAC(mac string) ([]models.Interface, error) {
	response, err := c.request(map[string]string{"mac_address": mac}).
		SetResult(&models.InterfaceList{}).
		Get(models.InterfaceList{}.Resolve())
	if err := check(response, err); err != nil {
		return nil, err
	}

	return response.Result().(*models.InterfaceList).Interfaces, nil
}

func (c *Client) FindIPAddresses(address string) ([]models.IP, error) {
	response, err := c.request(map[string]string{"address": address}).
		SetResult(&models.IPList{}).
		Get(models.IPList{}.Resolve())
	if err := check(response, err); err != nil {
		return nil, err
	}

	return response.Result().(*models.IPList).IPs, nil
}

func (c *Client) CreateIPAddress(ip *models.WritableIP) (*models.IP, error) {
	response, err := c.request(nil).
		SetBody(ip).
		SetResult(&models.IP{}).
		Post(models.IPList{}.Resolve())
	if err := check(response, err); err != nil {
		return nil, err
	}

	return response.Result().(*models.IP), nil
}

func (c *Client) UpdateIPAddress(id uint64, ip *models.WritableIP) (*models.IP, error) {
	response, err := c.request(nil).
		SetPathParams(map[string]string{"id": strconv.FormatUint(id, 10)}).
		SetBody(ip).
		SetResult(&models.IP{}).
		Patch(models.IP{}.Resolve())
	if err := check(response, err); err != nil {
		return nil, err
	}

	return response.Result().(*models.IP), nil
}

func (c *Client) request(params map[string]string) *resty.Request {
	r := c.rest.R()
	if len(params) > 0 {
		r.SetQueryParams(params)
	}
	return r
}

func check(response *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if response.IsError() {
		return fmt.Errorf("netbox answered '%s %s' with status %d", response.Request.Method, response.Request.URL, response.StatusCode())
	}
	return nil
}
