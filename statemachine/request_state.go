package statemachine

import "localchef-api/models"

// RequestTransition is an edge of the role request machine
type RequestTransition struct {
	From   models.RequestStatus `json:"from"`
	To     models.RequestStatus `json:"to"`
	Action models.RequestAction `json:"action"`
}

var requestTransitions = []RequestTransition{
	{From: models.RequestPending, To: models.RequestAccepted, Action: models.ActionAccept},
	{From: models.RequestPending, To: models.RequestRejected, Action: models.ActionReject},
}

// CanResolveRequest checks that action may be applied to a request in status from.
// Resolved requests are never reopened or resolved a second time.
func CanResolveRequest(from models.RequestStatus, action models.RequestAction) error {
	for _, t := range requestTransitions {
		if t.From == from && t.Action == action {
			return nil
		}
	}
	to, _ := action.Target()
	var valid []string
	for _, t := range requestTransitions {
		if t.From == from {
			valid = append(valid, string(t.To))
		}
	}
	return &TransitionError{Machine: "request", From: string(from), To: string(to), Valid: valid}
}

// RequestInitialStates are the states no transition leads into
func RequestInitialStates() []models.RequestStatus {
	var out []models.RequestStatus
	for _, t := range requestTransitions {
		if !containsRequest(out, t.From) && !isRequestTo(t.From) {
			out = append(out, t.From)
		}
	}
	return out
}

// RequestTerminalStates are the states no transition leaves
func RequestTerminalStates() []models.RequestStatus {
	var out []models.RequestStatus
	for _, t := range requestTransitions {
		if !containsRequest(out, t.To) && !isRequestFrom(t.To) {
			out = append(out, t.To)
		}
	}
	return out
}

func isRequestTo(s models.RequestStatus) bool {
	for _, t := range requestTransitions {
		if t.To == s {
			return true
		}
	}
	return false
}

func isRequestFrom(s models.RequestStatus) bool {
	for _, t := range requestTransitions {
		if t.From == s {
			return true
		}
	}
	return false
}

func containsRequest(list []models.RequestStatus, s models.RequestStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// RequestTransitions returns the full request machine for documentation
func RequestTransitions() []RequestTransition {
	out := make([]RequestTransition, len(requestTransitions))
	copy(out, requestTransitions)
	return out
}
