package reporter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"go.uber.org/zap"

	"github.com/cimnine/dhcp4c/dhcp"
)

// REDIS STRUCTURE
// -------------------------------------
// key:                        value:
// -------------------------------------
// {prefix}v4;{mac}            hash of the lease
// {prefix}events              channel, JSON event per change
// -------------------------------------

type Redis struct {
	Client *redis.Client
	Prefix string
	Log    *zap.SugaredLogger
}

type event struct {
	Event   string `json:"event"`
	Session string `json:"session"`
	MAC     string `json:"mac"`
	IP      string `json:"ip"`
}

func (r Redis) LeaseAcquired(info dhcp.LeaseInfo) error {
	key := r.key(info)
	r.log().Debugf("Writing lease '%s' to '%s'.", info.IPAddr, key)

	pipe := r.Client.TxPipeline()
	pipe.HMSet(key, leaseFields(info))
	pipe.Expire(key, info.Timeouts.Lease)
	if _, err := pipe.Exec(); err != nil {
		r.log().Warnf("Can't write lease '%s' to '%s': %s", info.IPAddr, key, err)
		return err
	}

	return r.publish("acquired", info)
}

func (r Redis) LeaseLost(info dhcp.LeaseInfo) error {
	key := r.key(info)
	r.log().Debugf("Removing lease '%s' from '%s'.", info.IPAddr, key)

	if err := r.Client.Del(key).Err(); err != nil {
		r.log().Warnf("Can't remove '%s': %s", key, err)
		return err
	}

	return r.publish("lost", info)
}

func (r Redis) publish(kind string, info dhcp.LeaseInfo) error {
	payload, err := json.Marshal(event{
		Event:   kind,
		Session: info.Session,
		MAC:     info.HardwareAddr.String(),
		IP:      info.IPAddr.String(),
	})
	if err != nil {
		return err
	}
	return r.Client.Publish(r.Prefix+"events", string(payload)).Err()
}

func (r Redis) key(info dhcp.LeaseInfo) string {
	return keyMAC(r.Prefix, 4, info.HardwareAddr.String())
}

func (r Redis) log() *zap.SugaredLogger {
	if r.Log == nil {
		return zap.NewNop().Sugar()
	}
	return r.Log
}

func keyMAC(prefix string, family uint8, mac string) string {
	return fmt.Sprintf("%sv%d;%s", prefix, family, mac)
}

func leaseFields(info dhcp.LeaseInfo) map[string]interface{} {
	return map[string]interface{}{
		"session":     info.Session,
		"host_name":   info.HostName,
		"ip":          info.IPAddr.String(),
		"subnet_mask": info.SubnetMask.String(),
		"gateway":     info.Gateway.String(),
		"dns_server":  info.DNSServer.String(),
		"server":      info.ServerID.String(),
		"lease":       int64(info.Timeouts.Lease / time.Second),
		"t1":          int64(info.Timeouts.T1RenewalTime / time.Second),
		"t2":          int64(info.Timeouts.T2RebindingTime / time.Second),
		"acquired_at": info.AcquiredAt.UTC().Format(time.RFC3339),
	}
}
