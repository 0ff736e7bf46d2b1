package domain

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyUsername = errors.New("username is required")
	ErrEmptyPassword = errors.New("password is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrWeakPassword  = errors.New("password must be at least 4 characters")
	ErrInvalidRole   = errors.New("role must be SELLER or MANAGER")
)

// Role grants access to sales operations.
type Role string

const (
	RoleSeller  Role = "SELLER"
	RoleManager Role = "MANAGER"
)

// ParseRole upper-cases the input; an empty role defaults to SELLER.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", RoleSeller:
		return RoleSeller, nil
	case RoleManager:
		return RoleManager, nil
	default:
		return "", ErrInvalidRole
	}
}

// hashCost is lowered by tests in this package.
var hashCost = bcrypt.DefaultCost

// User is a seller account. Only the bcrypt hash of the password is kept.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	CreatedAt    time.Time
}

// NewUser builds a user ensuring required invariants and hashes the password.
func NewUser(id int64, username, password string, role Role) (*User, error) {
	user := &User{ID: id, Role: role}
	if err := user.SetUsername(username); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if user.Role == "" {
		user.Role = RoleSeller
	}
	if _, err := ParseRole(string(user.Role)); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUsername trims and validates the username.
func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	u.Username = username
	return nil
}

// SetPassword validates basic password strength and stores its hash.
func (u *User) SetPassword(password string) error {
	password = strings.TrimSpace(password)
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < 4 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// UpdateProfile applies optional profile fields and validates email if present.
func (u *User) UpdateProfile(firstName, lastName, email, phone string) error {
	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	u.Email = email
	u.Phone = strings.TrimSpace(phone)
	return nil
}

// CheckPassword compares the stored hash with the supplied credentials.
func (u *User) CheckPassword(password string) bool {
	password = strings.TrimSpace(password)
	if password == "" || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if err := u.SetUsername(u.Username); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrEmptyPassword
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return err
	}
	return u.UpdateProfile(u.FirstName, u.LastName, u.Email, u.Phone)
}
