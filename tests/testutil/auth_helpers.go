package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/inventory-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing. Scopes go
// into the scope claim and permissions into the RBAC permissions claim.
func MockValidatedClaims(subject, issuer string, scopes, permissions []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope:       strings.Join(scopes, " "),
			Permissions: permissions,
		},
	}
}

// MockAuth returns a handler that installs claims the way
// middleware.EnsureValidToken does for a verified token.
func MockAuth(subject string, scopes ...string) gin.HandlerFunc {
	claims := MockValidatedClaims(subject, "https://test.auth0.com/", scopes, nil)
	return func(c *gin.Context) {
		c.Set("user_id", subject)
		c.Set("validated_claims", claims)
		c.Next()
	}
}
