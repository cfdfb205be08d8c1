package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/danuarta/identity-service/internal/domain/entity"
	repo "github.com/danuarta/identity-service/internal/domain/repository"
	"github.com/danuarta/identity-service/pkg/helpers"
	"github.com/danuarta/identity-service/pkg/mailer"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailTaken       = errors.New("email already registered")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrNotVerified      = errors.New("account not verified")
	ErrInvalidCode      = errors.New("invalid code")
	ErrMobileRequired   = errors.New("mobile number is required")
	ErrCodeRequired     = errors.New("code is required")
	ErrOTPCooldown      = errors.New("verification recently sent")
)

// OTPVerifier is the port to the SMS one-time-code provider. StartVerification
// initiates a challenge and returns the provider's opaque handle;
// CheckVerification reports whether the code matches the outstanding
// challenge for the number.
type OTPVerifier interface {
	StartVerification(ctx context.Context, mobile string) (string, error)
	CheckVerification(ctx context.Context, mobile, code string) (bool, error)
}

// Service owns the lifecycle of an identity record across the email and
// mobile registration paths, and issues the tokens that authorize subsequent
// requests. Redis and Pub are optional; when nil the resend cooldown and the
// registration email are skipped.
type Service struct {
	Repo           repo.UserRepository
	JWT            *helpers.JWTManager
	Verifier       OTPVerifier
	Redis          *redis.Client
	Logger         *logrus.Logger
	Pub            *helpers.RabbitPublisher
	ResendCooldown time.Duration

	// RequireVerified gates email login on the verification flag. The
	// upstream behavior is to let unverified identities log in, so this
	// defaults to off.
	RequireVerified bool
}

// AuthResult is the outcome of a successful registration or login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
}

func cooldownKey(mobile string) string {
	return "otp:resend:" + mobile
}

// RegisterWithEmail creates an email identity, or replaces the password of an
// existing unverified one. Re-signup against an unverified record is the
// password-reset path for accounts that never completed verification.
func (s *Service) RegisterWithEmail(ctx context.Context, email, password, confirm string) (AuthResult, error) {
	if password != confirm {
		return AuthResult{}, ErrPasswordMismatch
	}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return AuthResult{}, err
	}
	if u != nil && u.IsVerified {
		return AuthResult{}, ErrEmailTaken
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return AuthResult{}, err
	}

	if u == nil {
		u = &entity.User{Email: email, PasswordHash: hash, IsVerified: false}
		if err := s.Repo.Create(ctx, u); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				// lost the race against a concurrent signup
				return AuthResult{}, ErrEmailTaken
			}
			return AuthResult{}, err
		}
		s.enqueueRegistrationEmail(ctx, email)
	} else {
		u.PasswordHash = hash
		u.IsVerified = false
		if err := s.Repo.Update(ctx, u); err != nil {
			return AuthResult{}, err
		}
	}

	return s.issueToken(u)
}

// LoginWithEmail verifies the password against the stored hash and issues a
// token. Unverified identities may log in unless RequireVerified is set.
func (s *Service) LoginWithEmail(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AuthResult{}, ErrUserNotFound
		}
		return AuthResult{}, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return AuthResult{}, ErrInvalidPassword
	}
	if s.RequireVerified && !u.IsVerified {
		return AuthResult{}, ErrNotVerified
	}
	return s.issueToken(u)
}

// SendOTP asks the provider to challenge the number over SMS and returns the
// provider's verification handle. The identity store is not touched.
func (s *Service) SendOTP(ctx context.Context, mobile string) (string, error) {
	if mobile == "" {
		return "", ErrMobileRequired
	}

	if s.Redis != nil && s.ResendCooldown > 0 {
		ok, err := s.Redis.SetNX(ctx, cooldownKey(mobile), "1", s.ResendCooldown).Result()
		if err != nil {
			// fail open, the provider enforces its own limits
			if s.Logger != nil {
				s.Logger.WithError(err).Warn("otp cooldown check failed")
			}
		} else if !ok {
			return "", ErrOTPCooldown
		}
	}

	sid, err := s.Verifier.StartVerification(ctx, mobile)
	if err != nil {
		if s.Redis != nil && s.ResendCooldown > 0 {
			_ = s.Redis.Del(ctx, cooldownKey(mobile)).Err()
		}
		return "", err
	}
	return sid, nil
}

// VerifyOTP checks the code with the provider. On approval the identity for
// the mobile number is created verified, or promoted to verified if it
// already exists. A denied code leaves the store untouched.
func (s *Service) VerifyOTP(ctx context.Context, mobile, code string) (*entity.User, error) {
	if mobile == "" {
		return nil, ErrMobileRequired
	}
	if code == "" {
		return nil, ErrCodeRequired
	}

	approved, err := s.Verifier.CheckVerification(ctx, mobile, code)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, ErrInvalidCode
	}

	u, err := s.Repo.GetByMobile(ctx, mobile)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		u = &entity.User{Mobile: mobile, IsVerified: true}
		if err := s.Repo.Create(ctx, u); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				// concurrent verification created the record first
				return s.promoteByMobile(ctx, mobile)
			}
			return nil, err
		}
		return u, nil
	case err != nil:
		return nil, err
	}

	u.IsVerified = true
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) promoteByMobile(ctx context.Context, mobile string) (*entity.User, error) {
	u, err := s.Repo.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	u.IsVerified = true
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetProfile returns the identity record for a token's user id.
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateName sets the display name on an identity.
func (s *Service) UpdateName(ctx context.Context, userID, name string) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Name = name
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) issueToken(u *entity.User) (AuthResult, error) {
	token, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return AuthResult{}, err
	}
	return AuthResult{Token: token, ExpiresAt: exp, UserID: u.ID}, nil
}

func (s *Service) enqueueRegistrationEmail(ctx context.Context, email string) {
	if s.Pub == nil {
		return
	}
	job := mailer.RegistrationEmail(email)
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("to", email).Warn("enqueue registration email failed")
	}
}
