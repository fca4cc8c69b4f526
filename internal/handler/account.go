package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/utils"
)

type profileReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type passwordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Me returns the signed-in user; clients use it as a session check.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Unauthorized("account no longer exists")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// UpdateMe changes name, e-mail and phone.  A new e-mail address has to be
// verified again.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req profileReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if fields := profileFields(req.Name, req.Email, req.Phone); len(fields) > 0 {
		return unprocessable(fields)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("user")
		}
		return err
	}
	emailTaken, phoneTaken, err := h.Users.TakenBy(ctx, req.Email, req.Phone, uid)
	if err != nil {
		return err
	}
	if emailTaken || phoneTaken {
		var fields []apperr.FieldError
		code := "phone_exists"
		if emailTaken {
			code = "email_exists"
			fields = append(fields, apperr.FieldError{Field: "email", Message: "already in use"})
		}
		if phoneTaken {
			fields = append(fields, apperr.FieldError{Field: "phone", Message: "already in use"})
		}
		return &apperr.Error{Kind: apperr.KindConflict, Code: code, Message: "email or phone already in use", Fields: fields}
	}

	var grant *repository.TokenGrant
	var tok utils.LinkToken
	emailChanged := req.Email != u.Email
	if emailChanged {
		if tok, err = utils.NewLinkToken(utils.VerificationTTL); err != nil {
			return err
		}
		grant = &repository.TokenGrant{Hash: tok.Hash, ExpiresAt: tok.ExpiresAt}
	}
	if err := h.Users.UpdateProfile(ctx, uid, req.Name, req.Email, req.Phone, grant); err != nil {
		return duplicateErr(err)
	}

	u.Name, u.Email, u.Phone = strings.TrimSpace(req.Name), req.Email, req.Phone
	if emailChanged {
		u.EmailVerified = false
		h.sendLink(ctx, "verify", u, tok)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated", "user": toUserPart(u), "email_changed": emailChanged})
}

// ChangePassword requires the current password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req passwordReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if !utils.StrongPassword(req.NewPassword) {
		return apperr.InvalidFields("invalid password", []apperr.FieldError{{Field: "new_password", Message: utils.PasswordPolicy}})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("user")
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return apperr.Unauthorized("current password is incorrect")
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
		return err
	}
	return message(c, http.StatusOK, "password changed")
}

// DeleteUser removes an account together with its tokens, OTPs and bookings.
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if self, _ := currentUser(c); self == id {
		return apperr.Validation("cannot_delete_self", "administrators cannot delete their own account")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("user")
		}
		return err
	}
	h.Log.Info("user deleted", zap.Uint64("user_id", id))
	return message(c, http.StatusOK, "user deleted")
}
