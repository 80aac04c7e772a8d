package kafka

import "time"

// OrderPlacedEvent represents a successfully placed order
type OrderPlacedEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uint      `json:"user_id"`
	ItemCount   int       `json:"item_count"`
	Total       float64   `json:"total"`
	Timestamp   time.Time `json:"timestamp"`
}

// OrderCancelledEvent represents a cancelled order whose stock was restored
type OrderCancelledEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uint      `json:"user_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// ReviewSubmittedEvent represents a newly submitted product review
type ReviewSubmittedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ReviewID  uint      `json:"review_id"`
	ProductID uint      `json:"product_id"`
	UserID    uint      `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeOrderPlaced     = "order.placed"
	EventTypeOrderCancelled  = "order.cancelled"
	EventTypeReviewSubmitted = "review.submitted"
)

// Kafka topics
const (
	TopicOrders  = "orders"
	TopicReviews = "reviews"
)
