package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tbrintet/zik.eirb.fr/internal/model"
)

// ReservationRepo provides CRUD operations for reservations. Start and
// end dates are stored in DATETIME columns and always read back with
// DATE_FORMAT so they keep the exact "YYYY-MM-DD HH:mm:ss" wire shape.
// All timestamp fields are assumed to be stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, title,
	DATE_FORMAT(start_date, '%Y-%m-%d %H:%i:%s'),
	DATE_FORMAT(end_date, '%Y-%m-%d %H:%i:%s'),
	owner_id, created_at, updated_at`

// ListAll returns every reservation ordered by start date. When the
// table is empty an empty slice is returned, never nil.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY start_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.Title, &res.StartDate, &res.EndDate,
			&res.OwnerID, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByID returns a single reservation by primary key. When no row
// matches, ErrReservationNotFound is returned.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, id).Scan(&res.ID, &res.Title, &res.StartDate,
		&res.EndDate, &res.OwnerID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// Create inserts a new reservation and populates the generated ID and
// server-assigned timestamps on the provided record.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (title, start_date, end_date, owner_id) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, res.Title, res.StartDate, res.EndDate, res.OwnerID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, res.ID).Scan(&res.ID, &res.Title, &res.StartDate,
		&res.EndDate, &res.OwnerID, &res.CreatedAt, &res.UpdatedAt)
}

// Delete removes a reservation by primary key. Memberships in
// reservation_users are removed by the ON DELETE CASCADE foreign key.
// Deleting an absent row is not an error; callers are expected to have
// resolved the reservation beforehand.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM reservations WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
