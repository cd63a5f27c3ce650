package domain

import (
	"time"

	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order status constants.
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusDecline    OrderStatus = "decline"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusFailed     OrderStatus = "failed"
)

// ValidStatuses returns all valid order statuses in lifecycle order.
func ValidStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusCompleted,
		OrderStatusDecline,
		OrderStatusCancelled,
		OrderStatusRefunded,
		OrderStatusFailed,
	}
}

// IsValid checks if s is a known order status.
func (s OrderStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// transitions is the complete edge list of the order state machine. Every
// status has an entry; terminal ones map to an empty slice.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusDecline, OrderStatusFailed},
	OrderStatusCompleted:  {OrderStatusRefunded},
	OrderStatusDecline:    {},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
	OrderStatusFailed:     {},
}

// AllowedTransitions returns the statuses reachable in one step from s. The
// returned slice is a copy.
func AllowedTransitions(s OrderStatus) []OrderStatus {
	next := transitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// TransitionGraph returns the full state machine keyed by source status.
func TransitionGraph() map[OrderStatus][]OrderStatus {
	graph := make(map[OrderStatus][]OrderStatus, len(transitions))
	for s := range transitions {
		graph[s] = AllowedTransitions(s)
	}
	return graph
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Order is the lifecycle view of a customer order. Line items are owned by
// the checkout system and only product references are kept here.
type Order struct {
	ID         string      `json:"id"`
	Status     OrderStatus `json:"status"`
	ProductIDs []string    `json:"product_ids"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// CanTransitionTo checks if the order can move to the target status.
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	return CanTransition(o.Status, target)
}

// StatusChange is one entry of an order's status history.
type StatusChange struct {
	OrderID   string      `json:"order_id"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changed_at"`
}

// Transition applies target to a copy of o. The input is never mutated. It
// returns the updated order and the history entry to record, or an
// InvalidTransition error when target is not reachable from o.Status.
func Transition(o Order, target OrderStatus, at time.Time) (Order, StatusChange, error) {
	if !o.CanTransitionTo(target) {
		return Order{}, StatusChange{}, apperrors.InvalidTransition(string(o.Status), string(target))
	}

	next := o
	next.ProductIDs = append([]string(nil), o.ProductIDs...)
	next.Status = target
	next.UpdatedAt = at

	return next, StatusChange{
		OrderID:   o.ID,
		From:      o.Status,
		To:        target,
		ChangedAt: at,
	}, nil
}
