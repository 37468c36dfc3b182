package models

// Order statuses
const (
	OrderStatusProcessing = "PROCESSING"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// Order actions exposed to the client per status.
const (
	ActionCancel       = "CANCEL"
	ActionMarkReceived = "MARK_RECEIVED"
	ActionSubmitReview = "SUBMIT_REVIEW"
)

// allowedTransitions encodes the order lifecycle: PROCESSING is the only
// non-terminal state, COMPLETED and CANCELLED absorb.
var allowedTransitions = map[string]map[string]bool{
	OrderStatusProcessing: {
		OrderStatusCompleted: true,
		OrderStatusCancelled: true,
	},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// IsTerminalStatus reports whether no transitions leave s.
func IsTerminalStatus(s string) bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether an order may move from one status to
// another. Unknown statuses never transition.
func CanTransition(from, to string) bool {
	return allowedTransitions[from][to]
}

// AllowedActions returns the client actions enabled for an order in the
// given status. Review submission on a completed order is still subject
// to the review gate's per-item check.
func AllowedActions(status string) []string {
	switch status {
	case OrderStatusProcessing:
		return []string{ActionCancel, ActionMarkReceived}
	case OrderStatusCompleted:
		return []string{ActionSubmitReview}
	default:
		return nil
	}
}
