package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/notify"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/service"
	"github.com/iliyamo/venue-booking/internal/utils"
)

// UserStore is the account persistence used by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, nu repository.NewUser) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmailAndPhone(ctx context.Context, email, phone string) (*model.User, error)
	TakenBy(ctx context.Context, email, phone string, exceptID uint64) (bool, bool, error)
	UpdateProfile(ctx context.Context, id uint64, name, email, phone string, newVerification *repository.TokenGrant) error
	SetVerificationToken(ctx context.Context, id uint64, g repository.TokenGrant) error
	MarkVerified(ctx context.Context, email, tokenHash string, now time.Time) error
	SetResetToken(ctx context.Context, id uint64, g repository.TokenGrant) error
	ResetPassword(ctx context.Context, email, tokenHash, passwordHash string, now time.Time) (uint64, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	Delete(ctx context.Context, id uint64) error
}

// TokenStore keeps hashed refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for account and auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Tokens   TokenStore
	Notifier service.Notifier
	Log      *zap.Logger
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore, n service.Notifier, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Notifier: n, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type emailReq struct {
	Email string `json:"email"`
}

type resetReq struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u *model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role, EmailVerified: u.EmailVerified}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

// validLocalPhone accepts exactly ten digits.
func validLocalPhone(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// profileFields validates the fields shared by signup and profile updates.
func profileFields(name, email, phone string) []apperr.FieldError {
	var fields []apperr.FieldError
	if strings.TrimSpace(name) == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "required"})
	}
	if !validEmail(email) {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "must be a valid e-mail address"})
	}
	if !validLocalPhone(phone) {
		fields = append(fields, apperr.FieldError{Field: "phone", Message: "must be exactly 10 digits"})
	}
	return fields
}

func duplicateErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return apperr.Conflict("email_exists", "email already exists").Wrap(err)
	case errors.Is(err, repository.ErrPhoneExists):
		return apperr.Conflict("phone_exists", "phone already exists").Wrap(err)
	}
	return err
}

// Register creates an unverified customer and e-mails a verification link.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	fields := profileFields(req.Name, req.Email, req.Phone)
	if !utils.StrongPassword(req.Password) {
		fields = append(fields, apperr.FieldError{Field: "password", Message: utils.PasswordPolicy})
	}
	if len(fields) > 0 {
		return apperr.InvalidFields("invalid signup", fields)
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, repository.NewUser{
		Name: strings.TrimSpace(req.Name), Email: req.Email, Phone: req.Phone,
		PasswordHash: hash, Role: model.RoleCustomer,
	})
	if err != nil {
		return duplicateErr(err)
	}
	h.Log.Info("user registered", zap.Uint64("user_id", uid))

	u := &model.User{ID: uid, Name: strings.TrimSpace(req.Name), Email: req.Email, Phone: req.Phone, Role: model.RoleCustomer}
	h.sendVerification(ctx, u)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered; check your e-mail to verify your address",
		"user":    toUserPart(u),
	})
}

// sendVerification issues a fresh verification token and mails the link.
// Failures are logged; the user can ask for a new link.
func (h *AuthHandler) sendVerification(ctx context.Context, u *model.User) {
	tok, err := utils.NewLinkToken(utils.VerificationTTL)
	if err != nil {
		h.Log.Error("issue verification token", zap.Uint64("user_id", u.ID), zap.Error(err))
		return
	}
	if err := h.Users.SetVerificationToken(ctx, u.ID, repository.TokenGrant{Hash: tok.Hash, ExpiresAt: tok.ExpiresAt}); err != nil {
		h.Log.Error("store verification token", zap.Uint64("user_id", u.ID), zap.Error(err))
		return
	}
	h.sendLink(ctx, "verify", u, tok)
}

func (h *AuthHandler) sendLink(ctx context.Context, kind string, u *model.User, tok utils.LinkToken) {
	msg, err := notify.LinkMessage(kind, u.Name, u.Email, h.Cfg.AppBaseURL, tok.Raw, time.Until(tok.ExpiresAt).Round(time.Minute))
	if err != nil {
		h.Log.Error("render link message", zap.String("kind", kind), zap.Error(err))
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	h.Notifier.Send(sctx, msg)
}

// VerifyEmail consumes the token from a verification link.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	email := normalizeEmail(c.QueryParam("email"))
	if token == "" || email == "" {
		return apperr.Validation("invalid_token", "token and email are required")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Users.MarkVerified(ctx, email, utils.HashToken(token), time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Validation("invalid_token", "verification link is invalid or has expired")
		}
		return err
	}
	return message(c, http.StatusOK, "email verified")
}

// ResendVerification mails a new link.  The answer does not reveal whether
// the address is registered.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req emailReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	u, err := h.Users.GetByEmail(ctx, normalizeEmail(req.Email))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	case !u.EmailVerified:
		h.sendVerification(ctx, u)
	}
	return message(c, http.StatusOK, "if the address belongs to an unverified account, a new link has been sent")
}

// Login verifies credentials and returns a token pair.  Unverified
// accounts are refused with 403.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return apperr.Validation("invalid_body", "email and password are required")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Unauthorized("invalid credentials")
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperr.Unauthorized("invalid credentials")
	}
	if !u.EmailVerified {
		return &apperr.Error{Kind: apperr.KindForbidden, Code: "email_not_verified", Message: "verify your e-mail address before logging in"}
	}
	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) issuePair(ctx context.Context, u *model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashToken(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

func refreshToken(c echo.Context) (string, error) {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return "", apperr.Validation("invalid_body", "refresh_token required")
	}
	return strings.TrimSpace(req.RefreshToken), nil
}

// Refresh validates by hash, revokes the old token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw, err := refreshToken(c)
	if err != nil {
		return err
	}
	hash := utils.HashToken(raw)
	ctx, cancel := reqContext(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return apperr.Unauthorized("invalid refresh token")
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return err
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Unauthorized("invalid refresh token")
		}
		return err
	}
	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess returns a new access token without rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	raw, err := refreshToken(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, utils.HashToken(raw))
	if err != nil {
		return apperr.Unauthorized("invalid refresh token")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Unauthorized("invalid refresh token")
		}
		return err
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"access": tokenPart{Token: access.Token, Expires: access.Exp}})
}

// Logout revokes the refresh token in the body, or every refresh token of
// the bearer when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			uid, _ = claims.UserID()
		}
	}
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := reqContext(c)
	defer cancel()

	switch {
	case raw != "":
		hash := utils.HashToken(raw)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return apperr.Unauthorized("invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return err
		}
	case uid != 0:
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return err
		}
	default:
		return apperr.Validation("invalid_body", "provide an Authorization header or refresh_token")
	}
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword mails a reset link.  It always answers 200.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, normalizeEmail(req.Email))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		h.Log.Error("forgot password lookup", zap.Error(err))
	default:
		tok, err := utils.NewLinkToken(utils.ResetTTL)
		if err != nil {
			return err
		}
		if err := h.Users.SetResetToken(ctx, u.ID, repository.TokenGrant{Hash: tok.Hash, ExpiresAt: tok.ExpiresAt}); err != nil {
			return err
		}
		h.sendLink(ctx, "reset", u, tok)
	}
	return message(c, http.StatusOK, "if the address is registered, a reset link has been sent")
}

// ResetPassword sets a new password from a reset link and signs the user
// out everywhere.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Token) == "" || req.Email == "" {
		return apperr.Validation("invalid_token", "token and email are required")
	}
	if !utils.StrongPassword(req.Password) {
		return apperr.InvalidFields("invalid password", []apperr.FieldError{{Field: "password", Message: utils.PasswordPolicy}})
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	uid, err := h.Users.ResetPassword(ctx, normalizeEmail(req.Email), utils.HashToken(strings.TrimSpace(req.Token)), hash, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Validation("invalid_token", "reset link is invalid or has expired")
		}
		return err
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		h.Log.Warn("revoke tokens after reset", zap.Uint64("user_id", uid), zap.Error(err))
	}
	return message(c, http.StatusOK, "password updated")
}
