package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var known = map[Status]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusPreparing: true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// Valid reports whether s belongs to the closed status set. Any status may
// follow any other; delivered and cancelled are terminal by convention only.
func (s Status) Valid() bool { return known[s] }

func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusDelivered, StatusCancelled}
}
