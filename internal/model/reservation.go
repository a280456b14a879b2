package model

import "time"

// DateLayout is the wire and storage format for reservation bounds.
// Clients submit start and end dates in this exact shape and the API
// echoes them back unchanged.
const DateLayout = "2006-01-02 15:04:05"

// Reservation is a booked time interval with a title, owned by the
// user who created it. Start and end dates are kept in their wire
// format ("YYYY-MM-DD HH:mm:ss") so responses return exactly what the
// client submitted; created/updated timestamps are server-assigned.
//
// Fields:
//  ID        – primary key identifier, assigned on creation.
//  Title     – free text, at most 100 characters.
//  StartDate – beginning of the interval, strictly before EndDate.
//  EndDate   – end of the interval.
//  OwnerID   – user who created the reservation; immutable.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64    `json:"id"`        // reservations.id
	Title     string    `json:"title"`     // reservations.title
	StartDate string    `json:"startDate"` // reservations.start_date
	EndDate   string    `json:"endDate"`   // reservations.end_date
	OwnerID   uint64    `json:"ownerId"`   // reservations.owner_id
	CreatedAt time.Time `json:"createdAt"` // reservations.created_at
	UpdatedAt time.Time `json:"updatedAt"` // reservations.updated_at
}

// ReservationUser grants a user access to a reservation. A given
// (reservationId, userId) pair models exactly one membership; the
// reservation_users table enforces uniqueness with a composite key.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation the membership belongs to.
//  UserID        – user granted access.
//  CreatedAt     – creation timestamp.
type ReservationUser struct {
	ID            uint64    `json:"id"`            // reservation_users.id
	ReservationID uint64    `json:"reservationId"` // reservation_users.reservation_id
	UserID        uint64    `json:"userId"`        // reservation_users.user_id
	CreatedAt     time.Time `json:"createdAt"`     // reservation_users.created_at
}
