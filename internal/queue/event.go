// Package queue defines domain events exchanged over the message
// broker and a best-effort publisher for them.
package queue

// ReservationCreatedEvent is published after a reservation has been
// persisted. It carries enough information for downstream consumers
// (notifications, calendars, analytics) without querying the database.
type ReservationCreatedEvent struct {
	ReservationID uint64 `json:"reservationId"`
	OwnerID       uint64 `json:"ownerId"`
	Title         string `json:"title"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	CreatedAt     string `json:"createdAt"`
}

// ReservationDeletedEvent is published after a reservation has been
// removed, either by its owner or by an admin.
type ReservationDeletedEvent struct {
	ReservationID uint64 `json:"reservationId"`
	OwnerID       uint64 `json:"ownerId"`
	DeletedBy     uint64 `json:"deletedBy"`
	DeletedAt     string `json:"deletedAt"`
}
