package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tai-backend/internal/dto"
	"tai-backend/internal/entity"
	"tai-backend/internal/pkg/mailer"
	"tai-backend/internal/repository/specification"
	"tai-backend/internal/repository/unitofwork"
)

type IAuthService interface {
	RegisterInstructor(ctx context.Context, req *dto.RegisterInstructorRequest) (*dto.RegisterInstructorResponse, error)
	VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	RegisterDevice(ctx context.Context, req *dto.RegisterDeviceRequest) (*dto.RegisterDeviceResponse, error)
}

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService) IAuthService {
	return &authService{
		uowFactory:   uowFactory,
		emailService: emailService,
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

func signToken(userId uuid.UUID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"role":    role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	return token.SignedString([]byte(secret))
}

func (s *authService) RegisterInstructor(ctx context.Context, req *dto.RegisterInstructorRequest) (*dto.RegisterInstructorResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, _ := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	otpCode, err := generateOTP()
	if err != nil {
		return nil, err
	}
	otpExpiry := time.Now().Add(15 * time.Minute)

	user := &entity.User{
		Id:           uuid.New(),
		Name:         req.Name,
		Role:         entity.RoleInstructor,
		Email:        &req.Email,
		PasswordHash: &hashStr,
		IsVerified:   false,
		Otp:          &otpCode,
		OtpExpiresAt: &otpExpiry,
		CreatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	// Log to console for dev convenience
	fmt.Printf(">>> [DEBUG OTP] OTP for %s is: %s <<<\n", req.Email, otpCode)

	go func() {
		if emailErr := s.emailService.SendOTP(req.Email, otpCode); emailErr != nil {
			fmt.Printf("Error sending registration email: %v\n", emailErr)
		}
	}()

	return &dto.RegisterInstructorResponse{Id: user.Id, Email: req.Email}, nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return errors.New("user not found")
	}

	if user.IsVerified {
		return nil
	}

	if user.Otp == nil || *user.Otp != req.Otp {
		return errors.New("invalid otp code")
	}
	if user.OtpExpiresAt == nil || time.Now().After(*user.OtpExpiresAt) {
		return errors.New("otp code expired")
	}

	user.IsVerified = true
	user.Otp = nil
	user.OtpExpiresAt = nil
	return uow.UserRepository().Update(ctx, user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return nil, errors.New("invalid credentials")
	}
	if user.PasswordHash == nil {
		return nil, errors.New("invalid credentials")
	}
	if !user.IsVerified {
		return nil, errors.New("email not verified. please check your inbox for the otp code")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	signedToken, err := signToken(user.Id, user.Role)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{Token: signedToken, Role: user.Role}, nil
}

// RegisterDevice creates or retrieves the anonymous student account tied to
// a device identifier. The call is idempotent per device id.
func (s *authService) RegisterDevice(ctx context.Context, req *dto.RegisterDeviceRequest) (*dto.RegisterDeviceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByDeviceID{DeviceID: req.DeviceId})
	if err != nil {
		return nil, err
	}

	if user == nil {
		name := req.Name
		if name == "" {
			name = "Student"
		}
		user = &entity.User{
			Id:        uuid.New(),
			Name:      name,
			Role:      entity.RoleStudent,
			DeviceId:  &req.DeviceId,
			CreatedAt: time.Now(),
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, err
		}
	}

	signedToken, err := signToken(user.Id, user.Role)
	if err != nil {
		return nil, err
	}

	return &dto.RegisterDeviceResponse{Id: user.Id, Token: signedToken, Name: user.Name}, nil
}
