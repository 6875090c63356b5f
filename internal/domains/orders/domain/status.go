package domain

import "strings"

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusReady, StatusDelivered}
}

var statusAliases = map[string]Status{
	"pending":   StatusPending,
	"pendente":  StatusPending,
	"ready":     StatusReady,
	"pronto":    StatusReady,
	"delivered": StatusDelivered,
	"entregue":  StatusDelivered,
}

// ParseStatus accepts the canonical names and the Portuguese labels shown on
// the staff dashboard.
func ParseStatus(raw string) (Status, error) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReady, StatusDelivered:
		return true
	}
	return false
}

// Label is the dashboard caption.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pendente"
	case StatusReady:
		return "Pronto"
	case StatusDelivered:
		return "Entregue"
	}
	return string(s)
}

func (s Status) rank() int {
	for i, candidate := range Statuses() {
		if candidate == s {
			return i
		}
	}
	return -1
}

// TransitionPolicy decides whether an order may move between two statuses.
type TransitionPolicy interface {
	Allow(from, to Status) error
}

const (
	PolicyPermissive  = "permissive"
	PolicyForwardOnly = "forward-only"
)

// ParsePolicy resolves a policy name; blank means permissive.
func ParsePolicy(name string) (TransitionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyPermissive:
		return Permissive{}, nil
	case PolicyForwardOnly, "forward_only", "forward":
		return ForwardOnly{}, nil
	}
	return nil, ErrUnknownPolicy
}

// Permissive writes any known status, including regressions.
type Permissive struct{}

func (Permissive) Allow(_, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// ForwardOnly allows pending to ready to delivered one step at a time.
// Re-applying the current status is accepted.
type ForwardOnly struct{}

func (ForwardOnly) Allow(from, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if from == to || to.rank() == from.rank()+1 {
		return nil
	}
	return ErrInvalidTransition
}
