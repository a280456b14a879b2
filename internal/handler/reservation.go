package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tbrintet/zik.eirb.fr/internal/middleware"
	"github.com/tbrintet/zik.eirb.fr/internal/model"
	"github.com/tbrintet/zik.eirb.fr/internal/queue"
	"github.com/tbrintet/zik.eirb.fr/internal/repository"
	"github.com/tbrintet/zik.eirb.fr/internal/utils"
	"github.com/tbrintet/zik.eirb.fr/internal/validation"
)

// ReservationStore is the persistence collaborator for reservations.
// The MySQL implementation lives in the repository package; tests use
// in-memory fakes.
type ReservationStore interface {
	ListAll(ctx context.Context) ([]model.Reservation, error)
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	Create(ctx context.Context, res *model.Reservation) error
	Delete(ctx context.Context, id uint64) error
}

// MembershipStore is the persistence collaborator for the
// reservation/user association.
type MembershipStore interface {
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationUser, error)
	Create(ctx context.Context, ru *model.ReservationUser) error
	DeleteByReservationAndUser(ctx context.Context, reservationID, userID uint64) (int64, error)
}

// EventPublisher emits reservation lifecycle events. Publishing is
// best-effort; handlers ignore its errors.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, event queue.ReservationCreatedEvent) error
	PublishReservationDeleted(ctx context.Context, event queue.ReservationDeletedEvent) error
}

// ReservationHandler exposes the reservation operations. Every
// operation is a single-shot read/validate/write sequence: no state is
// shared between requests and every persistence failure is caught,
// logged once and mapped to the operation's generic failure code.
type ReservationHandler struct {
	Reservations ReservationStore
	Members      MembershipStore
	Events       EventPublisher // optional; nil disables events
}

// NewReservationHandler constructs a ReservationHandler. Both stores
// are required; events may be nil.
func NewReservationHandler(reservations ReservationStore, members MembershipStore, events EventPublisher) *ReservationHandler {
	if reservations == nil || members == nil {
		panic("nil store passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, Members: members, Events: events}
}

// persistFail logs a persistence failure once and answers the
// operation's generic failure envelope. Internal detail never reaches
// the caller.
func persistFail(c echo.Context, op string, err error, message, code string) error {
	log.Printf("reservation: %s: %v", op, err)
	return utils.Fail(c, message, code)
}

// notFound answers the shared 404 envelope for missing reservations.
func notFound(c echo.Context) error {
	return utils.Fail(c, "Réservation introuvable !", "RESERVATION/NOT_FOUND", http.StatusNotFound)
}

// resolveReservation parses the :id path parameter and loads the
// matching reservation. A non-numeric id behaves like an unknown one.
// The third return value is a ready-to-send error response; the caller
// returns it as-is when the reservation is nil.
func (h *ReservationHandler) resolveReservation(c echo.Context, op, failMessage, failCode string) (*model.Reservation, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, notFound(c)
	}
	res, err := h.Reservations.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, notFound(c)
		}
		return nil, persistFail(c, op, err, failMessage, failCode)
	}
	return res, nil
}

// List handles GET /v1/reservations. It returns every reservation
// without pagination or filtering.
func (h *ReservationHandler) List(c echo.Context) error {
	list, err := h.Reservations.ListAll(c.Request().Context())
	if err != nil {
		return persistFail(c, "list", err,
			"Erreur lors de la récupération de la liste des réservations", "RESERVATION/LIST_FAILED")
	}
	return utils.Succeed(c, "Liste des réservations", "RESERVATION/LIST", list)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	res, errResp := h.resolveReservation(c, "get",
		"Erreur lors de la récupération de la réservation", "RESERVATION/GET_FAILED")
	if res == nil {
		return errResp
	}
	return utils.Succeed(c, "Détails de la réservation", "RESERVATION/DETAILS", res)
}

// Create handles POST /v1/reservations. The body rules run in a fixed
// order with short-circuit semantics and no persistence call happens
// on a violation. The response carries the persisted record, id and
// timestamps included.
func (h *ReservationHandler) Create(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return utils.Fail(c, "Vous devez être connecté pour créer une réservation",
			"AUTH/NOT_AUTHENTICATED", http.StatusUnauthorized)
	}
	var in validation.CreateReservationInput
	// A malformed body simply leaves the fields nil; the title rule
	// rejects it with its own code.
	_ = c.Bind(&in)
	payload, violation := validation.CheckCreateReservation(in)
	if violation != nil {
		return utils.Fail(c, violation.Message, violation.Code, http.StatusBadRequest)
	}
	res := &model.Reservation{
		Title:     payload.Title,
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
		OwnerID:   ident.ID,
	}
	if err := h.Reservations.Create(c.Request().Context(), res); err != nil {
		return persistFail(c, "create", err,
			"Erreur lors de la création de la réservation!", "RESERVATION/CREATE_FAILED")
	}
	if h.Events != nil {
		_ = h.Events.PublishReservationCreated(c.Request().Context(), queue.ReservationCreatedEvent{
			ReservationID: res.ID,
			OwnerID:       res.OwnerID,
			Title:         res.Title,
			StartDate:     res.StartDate,
			EndDate:       res.EndDate,
			CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		})
	}
	return utils.Succeed(c, "Réservation créée avec succès !", "RESERVATION/CREATED", res)
}

// Delete handles DELETE /v1/reservations/:id. The authentication check
// runs before any lookup; only the owner or an admin may delete. The
// deleted reservation's id is returned as payload.
func (h *ReservationHandler) Delete(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return utils.Fail(c, "Vous devez être connecté pour supprimer une réservation",
			"AUTH/NOT_AUTHENTICATED", http.StatusUnauthorized)
	}
	res, errResp := h.resolveReservation(c, "delete",
		"Erreur lors de la suppression de la réservation", "RESERVATION/DELETE_FAILED")
	if res == nil {
		return errResp
	}
	if res.OwnerID != ident.ID && !ident.IsAdmin {
		return utils.Fail(c, "Vous n'êtes pas autorisé à supprimer cette réservation",
			"RESERVATION/DELETE_NOT_ALLOWED", http.StatusForbidden)
	}
	if err := h.Reservations.Delete(c.Request().Context(), res.ID); err != nil {
		return persistFail(c, "delete", err,
			"Erreur lors de la suppression de la réservation", "RESERVATION/DELETE_FAILED")
	}
	if h.Events != nil {
		_ = h.Events.PublishReservationDeleted(c.Request().Context(), queue.ReservationDeletedEvent{
			ReservationID: res.ID,
			OwnerID:       res.OwnerID,
			DeletedBy:     ident.ID,
			DeletedAt:     time.Now().UTC().Format(time.RFC3339),
		})
	}
	return utils.Succeed(c, "Réservation supprimée avec succès !", "RESERVATION/DELETED", res.ID)
}

// memberReq is the body of the add/remove membership operations. The
// user id is not checked against the users table.
type memberReq struct {
	UserID uint64 `json:"userId"`
}

// ListUsers handles GET /v1/reservations/:id/users and returns the
// reservation's memberships.
func (h *ReservationHandler) ListUsers(c echo.Context) error {
	res, errResp := h.resolveReservation(c, "users",
		"Erreur lors de la récupération de la réservation", "RESERVATION/GET_FAILED")
	if res == nil {
		return errResp
	}
	members, err := h.Members.ListByReservation(c.Request().Context(), res.ID)
	if err != nil {
		return persistFail(c, "users", err,
			"Erreur lors de la récupération des utilisateurs de la réservation!", "RESERVATION/USERS_GET_FAILED")
	}
	return utils.Succeed(c, "Utilisateurs de la réservation", "RESERVATION/USERS", members)
}

// AddUser handles POST /v1/reservations/:id/users. Adding the same
// user twice is rejected by the persistence layer's uniqueness
// constraint and answered with 409.
func (h *ReservationHandler) AddUser(c echo.Context) error {
	res, errResp := h.resolveReservation(c, "add user",
		"Erreur lors de la récupération de la réservation", "RESERVATION/GET_FAILED")
	if res == nil {
		return errResp
	}
	var req memberReq
	_ = c.Bind(&req)
	ru := &model.ReservationUser{ReservationID: res.ID, UserID: req.UserID}
	if err := h.Members.Create(c.Request().Context(), ru); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return utils.Fail(c, "L'utilisateur est déjà membre de la réservation",
				"RESERVATION/USER_ALREADY_ADDED", http.StatusConflict)
		}
		return persistFail(c, "add user", err,
			"Erreur lors de l'ajout de l'utilisateur à la réservation!", "RESERVATION/USER_ADD_FAILED")
	}
	return utils.Succeed(c, "Utilisateur ajouté à la réservation avec succès !", "RESERVATION/USER_ADDED", ru)
}

// RemoveUser handles DELETE /v1/reservations/:id/users. Removing a
// user who is not a member is an idempotent no-op: the success
// envelope reports zero removed rows.
func (h *ReservationHandler) RemoveUser(c echo.Context) error {
	res, errResp := h.resolveReservation(c, "remove user",
		"Erreur lors de la récupération de la réservation", "RESERVATION/GET_FAILED")
	if res == nil {
		return errResp
	}
	var req memberReq
	_ = c.Bind(&req)
	removed, err := h.Members.DeleteByReservationAndUser(c.Request().Context(), res.ID, req.UserID)
	if err != nil {
		return persistFail(c, "remove user", err,
			"Erreur lors du retrait de l'utilisateur de la réservation!", "RESERVATION/USER_REMOVE_FAILED")
	}
	return utils.Succeed(c, "Utilisateur retiré de la réservation avec succès !", "RESERVATION/USER_REMOVED", removed)
}
