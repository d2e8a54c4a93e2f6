package dto

import (
	"github.com/google/uuid"
)

type RegisterInstructorRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterInstructorResponse struct {
	Id    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Otp   string `json:"otp" validate:"required,len=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// RegisterDeviceRequest identifies a student anonymously by device. Repeat
// calls with the same device id return the same user.
type RegisterDeviceRequest struct {
	DeviceId string `json:"device_id" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,min=2"`
}

type RegisterDeviceResponse struct {
	Id    uuid.UUID `json:"id"`
	Token string    `json:"token"`
	Name  string    `json:"name"`
}

type UserResponse struct {
	Id    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
	Email *string   `json:"email,omitempty"`
}
