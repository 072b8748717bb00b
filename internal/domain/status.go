package domain

// validTransitions is the single authoritative transition table. Both
// the payment orchestrator and the webhook handler consult it; there is
// deliberately no second copy anywhere else. Processing→Cancelled is
// included so customer cancellation of an in-flight payment and the
// equivalent webhook update share one rule.
var validTransitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:    {StatusProcessing, StatusCancelled, StatusExpired},
	StatusProcessing: {StatusApproved, StatusDeclined, StatusFailed, StatusCancelled},
	StatusApproved:   {StatusRefunded},
	StatusDeclined:   {},
	StatusCancelled:  {},
	StatusRefunded:   {},
	StatusFailed:     {},
	StatusExpired:    {},
}

// CanTransition reports whether moving from one status to another is a
// legal edge of the lifecycle state machine.
func CanTransition(from, to PaymentStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status permits no further transitions.
func (s PaymentStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// CanBeCancelled reports whether the payment is still early enough in
// its lifecycle to be cancelled by the customer.
func (p *Payment) CanBeCancelled() bool {
	return CanTransition(p.Status, StatusCancelled)
}

// CanBeRefunded reports whether funds can be returned.
func (p *Payment) CanBeRefunded() bool {
	return CanTransition(p.Status, StatusRefunded)
}
