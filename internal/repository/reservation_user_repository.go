package repository

import (
	"context"
	"database/sql"

	"github.com/tbrintet/zik.eirb.fr/internal/model"
)

// ReservationUserRepo manages memberships between reservations and
// users. The reservation_users table carries a UNIQUE
// (reservation_id, user_id) key so a membership exists at most once.
type ReservationUserRepo struct {
	db *sql.DB
}

// NewReservationUserRepo returns a new ReservationUserRepo bound to the given database.
func NewReservationUserRepo(db *sql.DB) *ReservationUserRepo {
	return &ReservationUserRepo{db: db}
}

// ListByReservation returns all memberships of a reservation ordered
// by creation time. An empty slice is returned when none exist.
func (r *ReservationUserRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationUser, error) {
	const q = `SELECT id, reservation_id, user_id, created_at
	           FROM reservation_users WHERE reservation_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.ReservationUser, 0)
	for rows.Next() {
		var ru model.ReservationUser
		if err := rows.Scan(&ru.ID, &ru.ReservationID, &ru.UserID, &ru.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, ru)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Create inserts a membership and populates the generated ID and
// timestamp on the provided record. A second insert for the same
// (reservationID, userID) pair returns ErrDuplicate.
func (r *ReservationUserRepo) Create(ctx context.Context, ru *model.ReservationUser) error {
	const q = `INSERT INTO reservation_users (reservation_id, user_id) VALUES (?, ?)`
	result, err := r.db.ExecContext(ctx, q, ru.ReservationID, ru.UserID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	ru.ID = uint64(id)
	const sel = `SELECT created_at FROM reservation_users WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, ru.ID).Scan(&ru.CreatedAt)
}

// DeleteByReservationAndUser removes the membership matching both the
// reservation and the user, returning the number of rows removed.
// Zero removed rows is not an error; removal is idempotent.
func (r *ReservationUserRepo) DeleteByReservationAndUser(ctx context.Context, reservationID, userID uint64) (int64, error) {
	const q = `DELETE FROM reservation_users WHERE reservation_id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, q, reservationID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
