package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/surpriselly/authsvc/internal/auth"
	"github.com/surpriselly/authsvc/internal/config"
	"github.com/surpriselly/authsvc/internal/domain/user"
	"github.com/surpriselly/authsvc/internal/http/middlewares"
	"github.com/surpriselly/authsvc/internal/jobs"
	"github.com/surpriselly/authsvc/internal/otp"
	"github.com/surpriselly/authsvc/internal/queue"
	"github.com/surpriselly/authsvc/internal/repo"
	"github.com/surpriselly/authsvc/internal/security"
)

// UserStore is the slice of the users repo the auth flows need.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, name, email, passwordHash string) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// OTPManager issues and validates reset codes.
type OTPManager interface {
	Issue(ctx context.Context, u user.User) (code string, expiresAt time.Time, err error)
	Validate(ctx context.Context, email, code string) (user.User, error)
}

type AuthHandler struct {
	users    UserStore
	otp      OTPManager
	jwt      *auth.Manager
	enqueuer queue.Enqueuer
	cfg      config.Config
	log      *slog.Logger
}

func NewAuthHandler(users UserStore, otpMgr OTPManager, jwtManager *auth.Manager, enqueuer queue.Enqueuer, cfg config.Config, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		otp:      otpMgr,
		jwt:      jwtManager,
		enqueuer: enqueuer,
		cfg:      cfg,
		log:      log,
	}
}

type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, req.Name, req.Email, hash)

	if err != nil {
		if errors.Is(err, repo.ErrEmailAlreadyUsed) {
			RespondBadRequest(ctx, "email_taken", "User already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.jwt.IssueSessionToken(u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"token": token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			// same message as a wrong password, no signal about which emails exist
			RespondUnAuthorized(ctx, "invalid_credentials", "Invalid email or password")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid email or password")
		return
	}

	token, err := h.jwt.IssueSessionToken(foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":    foundUser.ID,
		"name":  foundUser.Name,
		"email": foundUser.Email,
		"token": token,
	})
}

// ForgotPassword issues a reset code and hands delivery to the queue. The
// response never carries the code; in dev mode the notifier logs it.
func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not process request")
		return
	}

	code, expiresAt, err := h.otp.Issue(cctx, u)

	if err != nil {
		RespondInternal(ctx, "Could not process request")
		return
	}

	payload, err := jobs.EncodePayload(jobs.JobSendOTPEmail, jobs.SendOTPEmailPayload{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Code:      code,
		ExpiresAt: expiresAt,
		RequestID: requestIDFrom(ctx),
	})

	if err != nil {
		RespondInternal(ctx, "Could not process request")
		return
	}

	j, err := jobs.NewJob(jobs.JobSendOTPEmail, payload)

	if err != nil {
		RespondInternal(ctx, "Could not process request")
		return
	}

	// delivery is queued, the response does not wait on a mail provider

	err = h.enqueuer.Enqueue(cctx, j)

	if err != nil {
		h.log.Error("enqueue otp email failed", "err", err, "user_id", u.ID)
		RespondInternal(ctx, "Could not process request")
		return
	}

	if h.cfg.OTPDevMode {
		ctx.JSON(http.StatusOK, gin.H{"message": "OTP generated (dev)"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "OTP sent to email"})
}

func (h *AuthHandler) VerifyOTP(ctx *gin.Context) {
	var req VerifyOTPRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.otp.Validate(cctx, req.Email, req.OTP)

	if err != nil {
		if errors.Is(err, otp.ErrInvalidOrExpiredCode) {
			RespondBadRequest(ctx, "invalid_otp", "Invalid or expired OTP", nil)
			return
		}

		RespondInternal(ctx, "Could not verify OTP")
		return
	}

	// the reset token, not the OTP, authorizes the password change

	token, err := h.jwt.IssueResetToken(u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "OTP verified",
		"token":   token,
	})
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	claims, err := h.jwt.VerifyResetToken(req.Token)

	if err != nil {
		RespondBadRequest(ctx, "invalid_token", "Invalid token", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, claims.UserID)

	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			RespondBadRequest(ctx, "invalid_token", "Invalid token", nil)
			return
		}

		RespondInternal(ctx, "Could not reset password")
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, "Could not reset password")
		return
	}

	// also clears any leftover reset code

	err = h.users.UpdatePassword(cctx, u.ID, hash)

	if err != nil {
		RespondInternal(ctx, "Could not reset password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// Me returns the identity behind a session token.
func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			RespondUnAuthorized(ctx, "unauthorized", "Unknown user")
			return
		}

		RespondInternal(ctx, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	})
}
