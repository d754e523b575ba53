package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusPrepared  Status = "prepared"
	StatusDelivered Status = "delivered"
)

// Valid reports whether s is one of the known statuses. Any valid status
// may follow any other: fulfillment is a manual workflow and operators
// do move orders backward to correct mistakes.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPrepared, StatusDelivered:
		return true
	}
	return false
}
