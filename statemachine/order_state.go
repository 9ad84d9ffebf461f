package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"localchef-api/models"
)

// ErrInvalidTransition is returned (wrapped in a *TransitionError) whenever a
// requested state change is not an edge of the machine.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError names the current and requested state of a refused change
type TransitionError struct {
	Machine string
	From    string
	To      string
	Valid   []string
}

func (e *TransitionError) Error() string {
	next := "none (terminal state)"
	if len(e.Valid) > 0 {
		next = strings.Join(e.Valid, ", ")
	}
	return fmt.Sprintf("invalid %s transition: %s → %s is not allowed; valid transitions from %s: %s",
		e.Machine, e.From, e.To, e.From, next)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// OrderTransition defines a valid order state change and who usually performs it
type OrderTransition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor string             `json:"actor"`
}

// orderTransitions is the authoritative order state machine definition
var orderTransitions = []OrderTransition{
	// Chef takes the order
	{From: models.StatusPending, To: models.StatusAccepted, Actor: "chef"},
	// Chef declines the order
	{From: models.StatusPending, To: models.StatusRejected, Actor: "chef"},
	// Only accepted orders go out
	{From: models.StatusAccepted, To: models.StatusDelivered, Actor: "chef"},
}

type orderKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

var orderMap = func() map[orderKey]bool {
	m := make(map[orderKey]bool)
	for _, t := range orderTransitions {
		m[orderKey{t.From, t.To}] = true
	}
	return m
}()

// OrderTargets are the statuses a caller may request
var OrderTargets = []models.OrderStatus{models.StatusAccepted, models.StatusRejected, models.StatusDelivered}

// IsOrderTarget reports whether to may be requested by a caller at all
func IsOrderTarget(to models.OrderStatus) bool {
	for _, s := range OrderTargets {
		if s == to {
			return true
		}
	}
	return false
}

// ValidOrderTransitionsFrom returns all valid next states from a given state
func ValidOrderTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range orderTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransitionOrder checks whether an order may move from one state to another
func CanTransitionOrder(from, to models.OrderStatus) error {
	if orderMap[orderKey{from, to}] {
		return nil
	}
	valid := ValidOrderTransitionsFrom(from)
	names := make([]string, len(valid))
	for i, s := range valid {
		names[i] = string(s)
	}
	return &TransitionError{Machine: "order", From: string(from), To: string(to), Valid: names}
}

// IsOrderTerminal reports whether no transition leaves status
func IsOrderTerminal(status models.OrderStatus) bool {
	return len(ValidOrderTransitionsFrom(status)) == 0
}

// OrderInitialStates are the states no transition leads into
func OrderInitialStates() []models.OrderStatus {
	var out []models.OrderStatus
	for _, t := range orderTransitions {
		if !containsOrder(out, t.From) && !isOrderTo(t.From) {
			out = append(out, t.From)
		}
	}
	return out
}

// OrderTerminalStates are the states no transition leaves
func OrderTerminalStates() []models.OrderStatus {
	var out []models.OrderStatus
	for _, t := range orderTransitions {
		if !containsOrder(out, t.To) && IsOrderTerminal(t.To) {
			out = append(out, t.To)
		}
	}
	return out
}

func isOrderTo(s models.OrderStatus) bool {
	for _, t := range orderTransitions {
		if t.To == s {
			return true
		}
	}
	return false
}

func containsOrder(list []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// OrderTransitions returns the full order machine for documentation
func OrderTransitions() []OrderTransition {
	out := make([]OrderTransition, len(orderTransitions))
	copy(out, orderTransitions)
	return out
}
