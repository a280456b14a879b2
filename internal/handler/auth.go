package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tbrintet/zik.eirb.fr/internal/config"
	"github.com/tbrintet/zik.eirb.fr/internal/repository"
	"github.com/tbrintet/zik.eirb.fr/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID      uint64 `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issueTokens builds an access/refresh pair for a user and stores the
// refresh token hash.
func (h *AuthHandler) issueTokens(ctx context.Context, id uint64, isAdmin bool) (tokenPart, tokenPart, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, isAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, id, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	return tokenPart{Token: access.Token, Expires: access.Exp},
		tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, nil // raw back to client
}

// Register handles POST /v1/auth/register: create the user and return
// tokens immediately. New accounts are never admins; the flag is set
// out of band.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, "Corps de requête invalide", "AUTH/INVALID_BODY", http.StatusBadRequest)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return utils.Fail(c, "Email et mot de passe requis", "AUTH/INVALID_BODY", http.StatusBadRequest)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return utils.Fail(c, "Cet email est déjà utilisé", "AUTH/EMAIL_EXISTS", http.StatusConflict)
		}
		return utils.Fail(c, "Erreur lors de la création du compte", "AUTH/REGISTER_FAILED")
	}

	access, refresh, err := h.issueTokens(ctx, uid, false)
	if err != nil {
		return utils.Fail(c, "Erreur lors de la création du compte", "AUTH/REGISTER_FAILED")
	}
	return utils.Succeed(c, "Compte créé avec succès !", "AUTH/REGISTERED", authResp{
		User:   userPart{ID: uid, Email: req.Email},
		Access: access, Refresh: refresh,
	})
}

// Login handles POST /v1/auth/login: verify credentials and return a
// new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, "Corps de requête invalide", "AUTH/INVALID_BODY", http.StatusBadRequest)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return utils.Fail(c, "Email et mot de passe requis", "AUTH/INVALID_BODY", http.StatusBadRequest)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.Fail(c, "Identifiants invalides", "AUTH/INVALID_CREDENTIALS", http.StatusUnauthorized)
		}
		return utils.Fail(c, "Erreur lors de la connexion", "AUTH/LOGIN_FAILED")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return utils.Fail(c, "Identifiants invalides", "AUTH/INVALID_CREDENTIALS", http.StatusUnauthorized)
	}

	access, refresh, err := h.issueTokens(ctx, u.ID, u.IsAdmin)
	if err != nil {
		return utils.Fail(c, "Erreur lors de la connexion", "AUTH/LOGIN_FAILED")
	}
	return utils.Succeed(c, "Connexion réussie !", "AUTH/LOGGED_IN", authResp{
		User:   userPart{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin},
		Access: access, Refresh: refresh,
	})
}

// Refresh handles POST /v1/auth/refresh: validate by hash, revoke the
// old token and issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return utils.Fail(c, "Jeton de rafraîchissement requis", "AUTH/INVALID_BODY", http.StatusBadRequest)
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		// A replayed token means the rotated-out value leaked; kill
		// every active session of that user.
		if errors.Is(err, repository.ErrTokenReused) {
			_ = h.Tokens.RevokeAllForUser(ctx, userID)
		}
		return utils.Fail(c, "Jeton de rafraîchissement invalide", "AUTH/INVALID_REFRESH", http.StatusUnauthorized)
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return utils.Fail(c, "Erreur lors du rafraîchissement", "AUTH/REFRESH_FAILED")
	}
	access, refresh, err := h.issueTokens(ctx, u.ID, u.IsAdmin)
	if err != nil {
		return utils.Fail(c, "Erreur lors du rafraîchissement", "AUTH/REFRESH_FAILED")
	}
	return utils.Succeed(c, "Jetons renouvelés", "AUTH/REFRESHED", authResp{
		User:   userPart{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin},
		Access: access, Refresh: refresh,
	})
}

// Logout handles POST /v1/auth/logout: validate the provided refresh
// token and revoke it, ending that session.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return utils.Fail(c, "Jeton de rafraîchissement requis", "AUTH/INVALID_BODY", http.StatusBadRequest)
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return utils.Fail(c, "Jeton de rafraîchissement invalide", "AUTH/INVALID_REFRESH", http.StatusUnauthorized)
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return utils.Fail(c, "Erreur lors de la déconnexion", "AUTH/LOGOUT_FAILED")
	}
	return utils.Succeed(c, "Déconnexion réussie !", "AUTH/LOGGED_OUT", nil)
}
