package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/userbase/internal/entities"
)

// TokenHeader carries the session token on every authenticated call. The
// browser client sends a bare token in this custom header rather than an
// Authorization: Bearer scheme.
const TokenHeader = "x-auth-token"

const contextKeyUser = "auth_user"

// Middleware gates protected routes: it extracts and verifies the token,
// loads the corresponding user and binds it to the request context. Every
// rejection is a 401 with a stable message; bad signature, expiry and a
// vanished user are not distinguishable to the caller beyond the messages
// below, and the detailed cause goes to the server log only.
type Middleware struct {
	service *Service
	tokens  *TokenService
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, tokens *TokenService) *Middleware {
	return &Middleware{
		service: service,
		tokens:  tokens,
	}
}

// Handler returns a gin middleware that authenticates the request.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)
		if token == "" {
			m.reject(c, "No token, authorization denied", nil)
			return
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			m.reject(c, "Token is not valid", err)
			return
		}

		// The account could have vanished after the token was issued;
		// a dangling token must not authorize anything.
		user, err := m.service.GetUserByID(userID)
		if err != nil {
			m.reject(c, "User not found", err)
			return
		}

		c.Set(contextKeyUser, user)
		c.Next()
	}
}

func (m *Middleware) reject(c *gin.Context, message string, err error) {
	if err != nil {
		log.Printf("auth: rejected %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}

// CurrentUser returns the user bound to the context by the middleware.
// Handlers behind the gate receive the identity through this accessor,
// never by re-reading headers.
func CurrentUser(c *gin.Context) (*entities.User, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entities.User)
	return user, ok
}
