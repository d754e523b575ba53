package orders

const (
	TopicOrderCreated       = "orders.created"
	TopicOrderStatusChanged = "orders.status.changed"
)

// Partition key = order_id, so all events of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
