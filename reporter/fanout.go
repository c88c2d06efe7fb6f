// Package reporter publishes lease changes to external systems.
package reporter

import (
	"errors"

	"go.uber.org/zap"

	"github.com/cimnine/dhcp4c/dhcp"
)

// Fanout hands every change to all of its reporters, even when some fail.
type Fanout struct {
	Reporters []dhcp.Reporter
	Log       *zap.SugaredLogger
}

func NewFanout(log *zap.SugaredLogger, reporters ...dhcp.Reporter) *Fanout {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Fanout{Reporters: reporters, Log: log}
}

func (f *Fanout) LeaseAcquired(info dhcp.LeaseInfo) error {
	var errs []error
	for _, r := range f.Reporters {
		if err := r.LeaseAcquired(info); err != nil {
			f.Log.Warnf("Reporter %T failed for lease '%s': %s", r, info.IPAddr, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) LeaseLost(info dhcp.LeaseInfo) error {
	var errs []error
	for _, r := range f.Reporters {
		if err := r.LeaseLost(info); err != nil {
			f.Log.Warnf("Reporter %T failed for lost lease '%s': %s", r, info.IPAddr, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
