package dhcp

type State int

const (
	StateStart State = iota
	StateWaitForOffer
	StateDiscovered
	StateWaitForAck
	StateRequested
	StateLeased
	StateRerequest
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateWaitForOffer:
		return "wait for offer"
	case StateDiscovered:
		return "discovered"
	case StateWaitForAck:
		return "wait for ack"
	case StateRequested:
		return "requested"
	case StateLeased:
		return "leased"
	case StateRerequest:
		return "rerequest"
	default:
		return "unknown"
	}
}

// Status is the outcome of one Step.
type Status int

const (
	StatusFailed Status = iota
	StatusLeased
	StatusInProgress
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusLeased:
		return "leased"
	case StatusInProgress:
		return "in progress"
	default:
		return "unknown"
	}
}

// LeaseCheck is the outcome of CheckLease.
type LeaseCheck int

const (
	CheckNone LeaseCheck = iota
	CheckRenewFailed
	CheckRenewWaiting
	CheckRebindFailed
	CheckRebindOK
)

func (c LeaseCheck) String() string {
	switch c {
	case CheckNone:
		return "none"
	case CheckRenewFailed:
		return "renew failed"
	case CheckRenewWaiting:
		return "renew waiting"
	case CheckRebindFailed:
		return "rebind failed"
	case CheckRebindOK:
		return "rebind ok"
	default:
		return "unknown"
	}
}

// Failed reports whether the check could not reopen the transport.
func (c LeaseCheck) Failed() bool {
	return c == CheckRenewFailed || c == CheckRebindFailed
}

type pollResult int

const (
	pollWaiting pollResult = iota
	pollGotData
	pollTimeout
)
