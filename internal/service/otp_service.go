package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/suteetoe/tenancy-service/internal/apperror"
	"github.com/suteetoe/tenancy-service/internal/model"
	"github.com/suteetoe/tenancy-service/internal/ratelimit"
	"github.com/suteetoe/tenancy-service/internal/sms"
	"github.com/suteetoe/tenancy-service/pkg/jwtutil"
	"github.com/suteetoe/tenancy-service/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	otpMin = 100000
	otpMax = 999999

	// verify attempts share the limiter with sends under their own key
	verifyKeyPrefix = "verify:"
)

var (
	ErrAccountNotFound    = apperror.NotFound("User not found. Please contact admin.")
	ErrAccountDeactivated = apperror.Forbidden("Account is deactivated. Please contact admin.")
	ErrOTPThrottled       = apperror.TooManyRequests("Too many OTP requests. Please try again later.")
	ErrVerifyThrottled    = apperror.TooManyRequests("Too many OTP attempts. Please try again later.")
	ErrUserNotFound       = apperror.NotFound("User not found")
	ErrInvalidOTP         = apperror.Validation("Invalid OTP")
	ErrOTPExpired         = apperror.Validation("OTP has expired. Please request a new one.")
)

// GenerateCode returns a uniformly random six digit code
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// IssuedOTP describes a code that was stored and sent
type IssuedOTP struct {
	MaskedMobile string
	ExpiresAt    time.Time
}

// VerifiedOTP is the session created by a successful verification
type VerifiedOTP struct {
	Token string
	User  model.User
}

// OTPService issues and verifies one-time codes
type OTPService struct {
	db      *gorm.DB
	sender  sms.Sender
	limiter ratelimit.Limiter
	tokens  *jwtutil.JWTUtil
	ttl     time.Duration
	now     Clock
	logger  *zap.Logger
}

// NewOTPService creates an OTPService
func NewOTPService(db *gorm.DB, sender sms.Sender, limiter ratelimit.Limiter, tokens *jwtutil.JWTUtil, ttl time.Duration, logger *zap.Logger) *OTPService {
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	return &OTPService{
		db:      db,
		sender:  sender,
		limiter: limiter,
		tokens:  tokens,
		ttl:     ttl,
		now:     SystemClock,
		logger:  logger,
	}
}

// WithClock replaces the time source
func (s *OTPService) WithClock(now Clock) *OTPService {
	s.now = now
	return s
}

// Issue generates a code for an active user, stores it and sends it by SMS
func (s *OTPService) Issue(ctx context.Context, mobile string) (*IssuedOTP, error) {
	db := s.db.WithContext(ctx)

	var user model.User
	if err := db.Where("mobile = ?", mobile).First(&user).Error; err != nil {
		if isNotFound(err) {
			prometheus.RecordOTPSent("user_not_found")
			return nil, ErrAccountNotFound
		}
		return nil, apperror.Internal("failed to load user", err)
	}

	if !user.IsActive {
		prometheus.RecordOTPSent("inactive")
		return nil, ErrAccountDeactivated
	}

	allowed, err := s.limiter.Allow(ctx, mobile)
	if err != nil {
		// fail open when Redis is unavailable
		s.logger.Warn("OTP rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		prometheus.RecordOTPSent("throttled")
		return nil, ErrOTPThrottled
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, apperror.Internal("failed to generate OTP", err)
	}
	expiresAt := s.now().Add(s.ttl)

	done := prometheus.TrackDBOperation("otp_issue")
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"otp_code":    code,
			"otp_expiry":  expiresAt,
			"is_verified": false,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&model.OTP{
			Mobile:    mobile,
			Code:      code,
			ExpiresAt: expiresAt,
		}).Error
	})
	done()
	if err != nil {
		return nil, apperror.Internal("failed to store OTP", err)
	}

	if err := s.sender.Send(ctx, mobile, sms.OTPMessage(code)); err != nil {
		prometheus.RecordOTPSent("sms_failed")
		return nil, apperror.InternalPublic("Failed to send OTP. Please try again.", err)
	}

	prometheus.RecordOTPSent("success")
	s.logger.Info("OTP issued",
		zap.String("user_id", user.ID),
		zap.Time("expires_at", expiresAt),
	)
	return &IssuedOTP{
		MaskedMobile: model.MaskMobile(mobile),
		ExpiresAt:    expiresAt,
	}, nil
}

// Verify checks a submitted code against the live code on the user. A code
// verifies at most once, and attempts per mobile are throttled.
func (s *OTPService) Verify(ctx context.Context, mobile, code string) (*VerifiedOTP, error) {
	db := s.db.WithContext(ctx)

	var user model.User
	if err := db.Preload("Property").Where("mobile = ?", mobile).First(&user).Error; err != nil {
		if isNotFound(err) {
			prometheus.RecordOTPVerification("user_not_found")
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal("failed to load user", err)
	}

	allowed, err := s.limiter.Allow(ctx, verifyKeyPrefix+mobile)
	if err != nil {
		s.logger.Warn("OTP rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		prometheus.RecordOTPVerification("throttled")
		return nil, ErrVerifyThrottled
	}

	if user.OTPCode == nil || *user.OTPCode != code {
		prometheus.RecordOTPVerification("invalid")
		return nil, ErrInvalidOTP
	}

	if user.OTPExpiry == nil || s.now().After(*user.OTPExpiry) {
		prometheus.RecordOTPVerification("expired")
		return nil, ErrOTPExpired
	}

	done := prometheus.TrackDBOperation("otp_verify")
	err = db.Transaction(func(tx *gorm.DB) error {
		// conditional on the code so a concurrent verify cannot consume it twice
		result := tx.Model(&model.User{}).
			Where("id = ? AND otp_code = ?", user.ID, code).
			Updates(map[string]interface{}{
				"is_verified": true,
				"otp_code":    nil,
				"otp_expiry":  nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidOTP
		}
		return tx.Model(&model.OTP{}).
			Where("mobile = ? AND code = ? AND is_used = ?", mobile, code, false).
			Update("is_used", true).Error
	})
	done()
	if err != nil {
		if apperror.IsKind(err, apperror.KindValidation) {
			prometheus.RecordOTPVerification("invalid")
			return nil, err
		}
		return nil, apperror.Internal("failed to verify OTP", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Mobile, user.PropertyID)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}

	user.IsVerified = true
	user.OTPCode = nil
	user.OTPExpiry = nil

	prometheus.RecordOTPVerification("success")
	s.logger.Info("OTP verified", zap.String("user_id", user.ID))
	return &VerifiedOTP{Token: token, User: user}, nil
}
