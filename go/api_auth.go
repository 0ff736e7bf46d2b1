package salesserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/sales-inventory-api/internal/domains/users/adapters/http/mapper"
	userdomain "github.com/Apurer/sales-inventory-api/internal/domains/users/domain"
	userports "github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/sales-inventory-api/internal/shared/errors"
)

const (
	bearerPrefix   = "Bearer "
	currentUserKey = "salesserver.currentUser"
)

// Guard resolves bearer tokens to users through the users service.
type Guard struct {
	users userports.Service
}

func NewGuard(users userports.Service) Guard {
	return Guard{users: users}
}

func (g Guard) chain(access Access) []gin.HandlerFunc {
	switch access {
	case Authenticated:
		return []gin.HandlerFunc{g.Authenticate}
	case ManagerOnly:
		return []gin.HandlerFunc{g.Authenticate, RequireRole(userdomain.RoleManager)}
	default:
		return nil
	}
}

// Authenticate aborts with 401 unless the request carries a live session token.
func (g Guard) Authenticate(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok || g.users == nil {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail(userports.ErrUnauthenticated.Error()))
		c.Abort()
		return
	}
	user, err := g.users.ResolveIdentity(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, err)
		c.Abort()
		return
	}
	c.Set(currentUserKey, user)
	c.Next()
}

// RequireRole aborts with 403 when the authenticated user lacks role.
func RequireRole(role userdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail(userports.ErrUnauthenticated.Error()))
			c.Abort()
			return
		}
		if user.Role != role {
			respondProblem(c, apierrors.ErrForbidden.WithDetail("role "+string(role)+" required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *gin.Context) (*userdomain.User, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*userdomain.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// AuthAPI serves registration and session endpoints.
type AuthAPI struct {
	service userports.Service
}

func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /v1/auth/register
// Register a seller account
func (api *AuthAPI) Register(c *gin.Context) {
	var payload userhttpmapper.RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	user, err := api.service.Register(c.Request.Context(), payload.Username, payload.Password, userdomain.Role(payload.Role))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainUser(user))
}

// Post /v1/auth/login
// Issue a session token
func (api *AuthAPI) Login(c *gin.Context) {
	var payload userhttpmapper.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	token, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.TokenResponse{Token: token, TokenType: strings.TrimSpace(bearerPrefix)})
}

// Post /v1/auth/logout
// Revoke the caller's session
func (api *AuthAPI) Logout(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondServiceError(c, userports.ErrUnauthenticated)
		return
	}
	if err := api.service.Logout(c.Request.Context(), user.Username); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/auth/users
// List accounts with their roles
func (api *AuthAPI) ListUsers(c *gin.Context) {
	users, err := api.service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.UserRoles(users))
}

// callerID returns the authenticated seller's id or writes a 401.
func callerID(c *gin.Context) (int64, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		respondServiceError(c, userports.ErrUnauthenticated)
		return 0, false
	}
	return user.ID, true
}
