package identity

import (
	"strings"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// UserStatus represents the status of a customer account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive" // disabled by an admin
	UserStatusLocked   UserStatus = "locked"   // too many failed logins
)

// IsValid reports whether s is a known status
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusLocked:
		return true
	}
	return false
}

// Login lockout policy
const (
	MaxLoginAttempts = 5
	LockDuration     = 15 * time.Minute
)

// Address is the customer's default shipping address
type Address struct {
	Line1      string `gorm:"column:address_line1;type:varchar(200)" json:"line1"`
	Line2      string `gorm:"column:address_line2;type:varchar(200)" json:"line2"`
	City       string `gorm:"column:city;type:varchar(100)" json:"city"`
	State      string `gorm:"column:state;type:varchar(100)" json:"state"`
	PostalCode string `gorm:"column:postal_code;type:varchar(20)" json:"postal_code"`
	Country    string `gorm:"column:country;type:varchar(2)" json:"country"`
}

// User is a storefront customer. It is the aggregate root for
// authentication, profile, cart, wishlist and order ownership.
type User struct {
	shared.BaseAggregateRoot
	Name              string     `gorm:"type:varchar(100);not null"`
	Email             string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_users_email"`
	Phone             string     `gorm:"type:varchar(30)"`
	PasswordHash      string     `gorm:"type:varchar(100);not null"`
	Address           Address    `gorm:"embedded"`
	Status            UserStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	LastLoginAt       *time.Time
	LastLoginIP       string `gorm:"type:varchar(45)"`
	FailedAttempts    int    `gorm:"not null;default:0"`
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser registers a new active customer
func NewUser(name, email, password string) (*User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Email:             email,
		PasswordHash:      hash,
		Status:            UserStatusActive,
		PasswordChangedAt: &now,
	}
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// UpdateProfile changes the editable profile fields
func (u *User) UpdateProfile(name, phone *string, address *Address) error {
	if name != nil {
		if err := validateName(*name); err != nil {
			return err
		}
		u.Name = strings.TrimSpace(*name)
	}
	if phone != nil {
		p := strings.TrimSpace(*phone)
		if len(p) > 30 {
			return shared.NewValidationError("Phone cannot exceed 30 characters")
		}
		u.Phone = p
	}
	if address != nil {
		a := *address
		a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
		u.Address = a
	}
	u.IncrementVersion()
	return nil
}

// ChangePassword changes the password after verifying the current one
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError(shared.CodeInvalidCredentials, "Current password is incorrect")
	}
	return u.SetPassword(next)
}

// SetPassword sets a new password without checking the old one
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	now := time.Now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	u.IncrementVersion()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return verifyPassword(u.PasswordHash, password)
}

// SetStatus is used by admins to enable or disable an account
func (u *User) SetStatus(status UserStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Invalid user status: %s", status)
	}
	if u.Status == status {
		return nil
	}
	old := u.Status
	u.Status = status
	if status == UserStatusActive {
		u.FailedAttempts = 0
		u.LockedUntil = nil
	}
	u.IncrementVersion()
	u.AddDomainEvent(NewUserStatusChangedEvent(u, old, status))
	return nil
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	if u.Status == UserStatusLocked {
		u.Status = UserStatusActive
		u.LockedUntil = nil
	}
	u.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account got locked by this attempt. A lock that has
// run out is released first, so counting starts over.
func (u *User) RecordLoginFailure() bool {
	if u.Status == UserStatusLocked && !u.IsLocked() {
		u.Status = UserStatusActive
		u.FailedAttempts = 0
		u.LockedUntil = nil
	}
	u.FailedAttempts++
	u.IncrementVersion()
	if u.FailedAttempts >= MaxLoginAttempts && u.Status == UserStatusActive {
		until := time.Now().Add(LockDuration)
		u.Status = UserStatusLocked
		u.LockedUntil = &until
		return true
	}
	return false
}

// IsLocked returns true while a lock is in effect
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	return u.LockedUntil == nil || time.Now().Before(*u.LockedUntil)
}

// CheckCanLogin returns a domain error describing why the user cannot log in
func (u *User) CheckCanLogin() error {
	switch {
	case u.Status == UserStatusInactive:
		return shared.NewDomainError(shared.CodeAccountInactive, "Account has been disabled")
	case u.IsLocked():
		return shared.NewDomainError(shared.CodeAccountLocked, "Account is temporarily locked due to failed login attempts")
	}
	return nil
}
