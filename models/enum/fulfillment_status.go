package enum

type FulfillmentStatus string

const (
	FulfillmentStatusInProgress FulfillmentStatus = "in_progress"
	FulfillmentStatusComplete   FulfillmentStatus = "complete"
)
