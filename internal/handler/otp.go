package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/notify"
	"github.com/iliyamo/venue-booking/internal/service"
	"github.com/iliyamo/venue-booking/internal/utils"
)

// OtpStore keeps one-time codes.
type OtpStore interface {
	Create(ctx context.Context, userID uint64, code string, expiresAt time.Time) error
	FindValid(ctx context.Context, code string, now time.Time) (*model.Otp, error)
	Delete(ctx context.Context, id uint64) error
	DeleteForUser(ctx context.Context, userID uint64) error
}

// OtpUsers is the slice of the user store the OTP flow needs.
type OtpUsers interface {
	FindByEmailAndPhone(ctx context.Context, email, phone string) (*model.User, error)
}

// OtpHandler issues and checks six digit codes sent over e-mail and SMS.
type OtpHandler struct {
	Users       OtpUsers
	Otps        OtpStore
	Notifier    service.Notifier
	CountryCode string
	Log         *zap.Logger
}

func NewOtpHandler(users OtpUsers, otps OtpStore, n service.Notifier, countryCode string, log *zap.Logger) *OtpHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OtpHandler{Users: users, Otps: otps, Notifier: n, CountryCode: countryCode, Log: log}
}

type otpSendReq struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type otpVerifyReq struct {
	Otp string `json:"otp"`
}

// Send stores a new code for the user matching email and phone and delivers
// it on both channels.  It fails only when neither channel delivered.
func (h *OtpHandler) Send(c echo.Context) error {
	var req otpSendReq
	if err := bind(c, &req); err != nil {
		return err
	}
	email, phone := normalizeEmail(req.Email), strings.TrimSpace(req.Phone)
	if email == "" || phone == "" {
		return apperr.Validation("invalid_body", "email and phone are required")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.FindByEmailAndPhone(ctx, email, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("user")
		}
		return err
	}
	code, err := utils.NewOtpCode()
	if err != nil {
		return err
	}
	// a new code replaces any outstanding one
	if err := h.Otps.DeleteForUser(ctx, u.ID); err != nil {
		return err
	}
	if err := h.Otps.Create(ctx, u.ID, code, time.Now().UTC().Add(utils.OtpTTL)); err != nil {
		return err
	}
	msg, err := notify.OtpMessage(u.Name, u.Email, booking.NormalizePhone(u.Phone, h.CountryCode), code, utils.OtpTTL)
	if err != nil {
		return err
	}
	sctx, scancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer scancel()
	rep := h.Notifier.Send(sctx, msg)
	if rep.AllFailed() {
		return fmt.Errorf("otp for user %d not delivered: email=%v sms=%v", u.ID, rep.EmailErr, rep.SMSErr)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "otp sent", "notifications": rep})
}

// Verify consumes a valid code.
func (h *OtpHandler) Verify(c echo.Context) error {
	var req otpVerifyReq
	if err := bind(c, &req); err != nil {
		return err
	}
	code := strings.TrimSpace(req.Otp)
	if code == "" {
		return apperr.Validation("invalid_otp", "otp is required")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	o, err := h.Otps.FindValid(ctx, code, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Validation("invalid_otp", "otp is invalid or has expired")
		}
		return err
	}
	if err := h.Otps.Delete(ctx, o.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "otp verified", "user_id": o.UserID})
}
