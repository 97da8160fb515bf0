package models

import "time"

type UserRole string

const (
	UserRoleUser            UserRole = "user"
	UserRoleSeller          UserRole = "seller"
	UserRoleInstructor      UserRole = "instructor"
	UserRoleServiceProvider UserRole = "serviceProvider"
	UserRoleAdmin           UserRole = "admin"
)

// User is an end-user account. While the account is pending email
// verification, OTP and OTPExpiresAt hold the live one-time code; both are
// cleared the moment the account is verified.
type User struct {
	ID                 string
	Email              string
	PasswordHash       []byte
	Name               string
	Role               UserRole
	Verified           bool
	OTP                *string
	OTPExpiresAt       *time.Time
	SellerApproved     bool
	InstructorApproved bool
	ProviderApproved   bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Shop is a seller account. Shops live in their own namespace: a shop and a
// user may share an email address. The role is implicitly Seller.
type Shop struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         string
	OwnerName    string
	Description  string
	Verified     bool
	OTP          *string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
