package enums

// OutboxEventType names the domain events written to the outbox table.
type OutboxEventType string

const (
	EventOrderRequested   OutboxEventType = "order.requested"
	EventOrderDecided     OutboxEventType = "order.decided"
	EventOrderProgressed  OutboxEventType = "order.progressed"
	EventPaymentSucceeded OutboxEventType = "payment.succeeded"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregatePurchase OutboxAggregateType = "purchase"
	AggregatePayment  OutboxAggregateType = "payment"
)
