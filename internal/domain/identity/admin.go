package identity

import (
	"strings"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
)

// AdminRole is the back-office role of an admin
type AdminRole string

const (
	AdminRoleSuperAdmin AdminRole = "super_admin"
	AdminRoleManager    AdminRole = "manager"
	AdminRoleEditor     AdminRole = "editor"
)

// IsValid reports whether r is a known role
func (r AdminRole) IsValid() bool {
	switch r {
	case AdminRoleSuperAdmin, AdminRoleManager, AdminRoleEditor:
		return true
	}
	return false
}

// AdminStatus represents the status of an admin account
type AdminStatus string

const (
	AdminStatusActive   AdminStatus = "active"
	AdminStatusInactive AdminStatus = "inactive"
)

// Admin is a back-office operator
type Admin struct {
	shared.BaseAggregateRoot
	Name         string      `gorm:"type:varchar(100);not null"`
	Email        string      `gorm:"type:varchar(200);not null;uniqueIndex:idx_admins_email"`
	PasswordHash string      `gorm:"type:varchar(100);not null"`
	Role         AdminRole   `gorm:"type:varchar(20);not null;default:'editor'"`
	Status       AdminStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt  *time.Time
	LastLoginIP  string `gorm:"type:varchar(45)"`
}

// TableName returns the table name for GORM
func (Admin) TableName() string {
	return "admins"
}

// NewAdmin creates an active admin
func NewAdmin(name, email, password string, role AdminRole) (*Admin, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("Invalid admin role: %s", role)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return &Admin{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Email:             email,
		PasswordHash:      hash,
		Role:              role,
		Status:            AdminStatusActive,
	}, nil
}

// VerifyPassword verifies if the provided password matches
func (a *Admin) VerifyPassword(password string) bool {
	return verifyPassword(a.PasswordHash, password)
}

// ChangePassword changes the password after verifying the current one
func (a *Admin) ChangePassword(current, next string) error {
	if !a.VerifyPassword(current) {
		return shared.NewDomainError(shared.CodeInvalidCredentials, "Current password is incorrect")
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := hashPassword(next)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	a.PasswordHash = hash
	a.IncrementVersion()
	return nil
}

// IsActive returns true if the admin may log in
func (a *Admin) IsActive() bool {
	return a.Status == AdminStatusActive
}

// RecordLogin records a successful login
func (a *Admin) RecordLogin(ip string) {
	now := time.Now()
	a.LastLoginAt = &now
	a.LastLoginIP = ip
	a.IncrementVersion()
}

// Permissions returns the coarse permission set granted by the role
func (a *Admin) Permissions() []string {
	switch a.Role {
	case AdminRoleSuperAdmin:
		return []string{"*"}
	case AdminRoleManager:
		return []string{"catalog:*", "orders:*", "users:*", "newsletter:*", "contacts:*", "analytics:read", "settings:read"}
	default:
		return []string{"catalog:*", "contacts:read", "analytics:read"}
	}
}
