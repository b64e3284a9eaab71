package middleware

import (
	"strings"

	"reelhub/internal/core/domain"
	"reelhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	credentialKey = "credential"
	claimsKey     = "claims"
)

// Authenticator verifies a bearer credential.
type Authenticator interface {
	Authenticate(credential string) (*domain.ClaimSet, error)
}

// bearerToken returns the credential carried by the Authorization header.
// A missing or malformed header yields "", which verification rejects as malformed.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CredentialMiddleware extracts the bearer credential for handlers that pass
// it on to the gateway. It never rejects a request by itself.
func CredentialMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(credentialKey, bearerToken(c.GetHeader("Authorization")))
		c.Next()
	}
}

// AuthMiddleware rejects requests without a valid credential and stores the
// verified claims for the handler.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := bearerToken(c.GetHeader("Authorization"))
		claims, err := auth.Authenticate(credential)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(credentialKey, credential)
		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithSubjectID(c.Request.Context(), claims.SubjectID))
		c.Next()
	}
}

// Credential returns the bearer credential of the request, possibly "".
func Credential(c *gin.Context) string {
	if v, ok := c.Get(credentialKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return bearerToken(c.GetHeader("Authorization"))
}

// Claims returns the claims stored by AuthMiddleware.
func Claims(c *gin.Context) (*domain.ClaimSet, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.ClaimSet)
	return claims, ok
}
