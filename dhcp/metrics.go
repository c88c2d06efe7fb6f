package dhcp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dhcp4c_messages_sent_total",
		Help: "DHCP messages broadcast by the client, by message type.",
	}, []string{"type"})

	repliesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dhcp4c_replies_rejected_total",
		Help: "Datagrams discarded because they did not belong to the current transaction.",
	})

	timeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dhcp4c_timeouts_total",
		Help: "Exchanges restarted because no reply arrived in time.",
	})

	leasesAcquired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dhcp4c_leases_acquired_total",
		Help: "Acknowledged leases, including renewals.",
	})
)
