package models

type OrderStatus string

const (
	StatusPlaced    OrderStatus = "placed"
	StatusAccepted  OrderStatus = "accepted"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// statusTransitions is the full pipeline. Cancellation is only allowed
// before the kitchen starts preparing; completed and cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:    {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// Active reports whether the order still occupies a place in the
// fulfillment queue.
func (s OrderStatus) Active() bool {
	switch s {
	case StatusPlaced, StatusAccepted, StatusPreparing:
		return true
	}
	return false
}
