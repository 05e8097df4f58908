package orders

type Status string

const (
	StatusAwaitingConfirmation Status = "awaiting_confirmation"
	StatusPaid                 Status = "paid"
	StatusCancelled            Status = "cancelled"
)

// paid and cancelled are terminal.
var validNext = map[Status]map[Status]bool{
	StatusAwaitingConfirmation: {StatusPaid: true, StatusCancelled: true},
	StatusPaid:                 {},
	StatusCancelled:            {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
