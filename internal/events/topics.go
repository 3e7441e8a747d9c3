package events

// Topic constants for domain events emitted by the register.
const (
	TopicSaleCompleted  = "sale.completed"
	TopicSaleRejected   = "sale.rejected"
	TopicTenderResolved = "tender.resolved"
)
