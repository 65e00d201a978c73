package handlers

import (
	"strconv"
	"strings"

	"github.com/emergent-labs/emergent-server/internal/authz"
	"github.com/gin-gonic/gin"
)

// PrincipalKey is the gin context key holding the authenticated principal.
const PrincipalKey = "principal"

// CurrentPrincipal returns the principal placed in the context by the auth
// middleware.
func CurrentPrincipal(c *gin.Context) (authz.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return authz.Principal{}, false
	}
	principal, ok := v.(authz.Principal)
	return principal, ok
}

// mustPrincipal returns the principal or aborts with 401. Routes behind the
// auth middleware always have one; the abort covers misregistration.
func mustPrincipal(c *gin.Context) (authz.Principal, bool) {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(401, gin.H{"error": "not authenticated"})
	}
	return principal, ok
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil || id == 0 {
		return 0, false
	}
	return id, true
}
