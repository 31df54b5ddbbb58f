package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/padhai-app/padhai-backend/internal/config"
	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"github.com/padhai-app/padhai-backend/internal/utils"
	"github.com/padhai-app/padhai-backend/pkg/smsgateway"
	"github.com/padhai-app/padhai-backend/pkg/ttlstore"
	"golang.org/x/crypto/bcrypt"
)

// Authentication errors surfaced to handlers.
var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid or expired code")
)

// AuthService handles registration, login and the OTP login flow.
type AuthService struct {
	userRepo repositories.UserRepository
	otpStore ttlstore.Store
	sms      smsgateway.Gateway
	cfg      *config.Config
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserRepository, otpStore ttlstore.Store, sms smsgateway.Gateway, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		otpStore: otpStore,
		sms:      sms,
		cfg:      cfg,
	}
}

// Register creates a new student account with the demo trial subscription
// and a zeroed progression record, and returns a session token.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:        req.Email,
		Password:     string(hashedPassword),
		Name:         req.Name,
		Class:        req.Class,
		Board:        req.Board,
		State:        req.State,
		Subscription: models.NewDemoSubscription(now),
		Progress: models.Progress{
			TotalXP:      0,
			CurrentLevel: 1,
		},
		Stats: models.Stats{
			LastActiveDate: now,
		},
		Role:       models.RoleStudent,
		IsVerified: true,
		LastLogin:  now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role, s.cfg)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login authenticates with email and password and returns a session token.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.LastLogin = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role, s.cfg)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// RequestOTP generates a one-time login code for a registered phone number,
// stores it with a TTL and delivers it through the SMS gateway.
func (s *AuthService) RequestOTP(ctx context.Context, req *models.RequestOTPRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := s.userRepo.FindByPhone(ctx, req.Phone); err != nil {
		return err
	}

	code, err := generateOTP(s.cfg.OTP.Length)
	if err != nil {
		return err
	}

	ttl := time.Duration(s.cfg.OTP.TTLSeconds) * time.Second
	s.otpStore.Set(otpKey(req.Phone), code, ttl)

	message := fmt.Sprintf("Your Padhai login code is %s. It expires in %d minutes.", code, s.cfg.OTP.TTLSeconds/60)
	if _, err := s.sms.SendSMS(req.Phone, message); err != nil {
		s.otpStore.Delete(otpKey(req.Phone))
		return err
	}
	return nil
}

// VerifyOTP exchanges a delivered code for a session token. Codes are
// single-use: a successful verification consumes the stored entry.
func (s *AuthService) VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	stored, ok := s.otpStore.Get(otpKey(req.Phone))
	if !ok || stored != req.Code {
		return nil, ErrInvalidOTP
	}
	s.otpStore.Delete(otpKey(req.Phone))

	user, err := s.userRepo.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, err
	}

	user.LastLogin = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role, s.cfg)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func otpKey(phone string) string {
	return "otp:" + phone
}

func generateOTP(length int) (string, error) {
	if length < 4 {
		length = 6
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
