package mapper

import (
	"fmt"

	userdomain "github.com/Apurer/sales-inventory-api/internal/domains/users/domain"
)

// RegisterRequest is the body of POST /v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries the session token issued on login.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
}

// User is the transport representation of a seller. The password hash never
// leaves the domain.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
}

// UserRoles renders users as "username -> ROLE" lines.
func UserRoles(users []*userdomain.User) []string {
	result := make([]string, 0, len(users))
	for _, user := range users {
		result = append(result, fmt.Sprintf("%s -> %s", user.Username, user.Role))
	}
	return result
}
