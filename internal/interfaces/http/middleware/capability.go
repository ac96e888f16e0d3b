package middleware

import (
	"net/http"

	"github.com/edgepos/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CapabilityConfig holds configuration for capability middleware
type CapabilityConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when a capability check fails (optional)
	OnDenied func(c *gin.Context, required []string)
}

// RequireCapability creates middleware that requires a specific capability
// This is a convenience function for single capability requirement
func RequireCapability(capability string) gin.HandlerFunc {
	return RequireAnyCapability(capability)
}

// RequireCapabilityWithConfig creates middleware with custom config
func RequireCapabilityWithConfig(capability string, cfg CapabilityConfig) gin.HandlerFunc {
	return RequireAnyCapabilityWithConfig(cfg, capability)
}

// RequireAnyCapability creates middleware that requires any of the specified capabilities
// The token must carry at least one of the listed capabilities to proceed
func RequireAnyCapability(capabilities ...string) gin.HandlerFunc {
	return RequireAnyCapabilityWithConfig(CapabilityConfig{}, capabilities...)
}

// RequireAnyCapabilityWithConfig creates middleware that requires any of the specified capabilities with custom config
func RequireAnyCapabilityWithConfig(cfg CapabilityConfig, capabilities ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleCapabilityDenied(c, cfg, capabilities, "No authentication claims found")
			return
		}

		if !claims.HasAnyCapability(capabilities...) {
			handleCapabilityDenied(c, cfg, capabilities, "Token lacks required capability")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Capability check passed",
				zap.String("user_id", claims.UserID),
				zap.Strings("required_any", capabilities),
				zap.Strings("token_capabilities", claims.Capabilities),
			)
		}

		c.Next()
	}
}

// RequireAllCapabilities creates middleware that requires all of the specified capabilities
// The token must carry every listed capability to proceed
func RequireAllCapabilities(capabilities ...string) gin.HandlerFunc {
	return RequireAllCapabilitiesWithConfig(CapabilityConfig{}, capabilities...)
}

// RequireAllCapabilitiesWithConfig creates middleware that requires all capabilities with custom config
func RequireAllCapabilitiesWithConfig(cfg CapabilityConfig, capabilities ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleCapabilityDenied(c, cfg, capabilities, "No authentication claims found")
			return
		}

		if !claims.HasAllCapabilities(capabilities...) {
			handleCapabilityDenied(c, cfg, capabilities, "Token lacks one or more required capabilities")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("All capabilities check passed",
				zap.String("user_id", claims.UserID),
				zap.Strings("required_all", capabilities),
				zap.Strings("token_capabilities", claims.Capabilities),
			)
		}

		c.Next()
	}
}

// RequireRole creates middleware that requires one of the specified staff roles.
// Role checks apply to staff tokens; terminal agent tokens carry no role and are denied.
func RequireRole(roles ...string) gin.HandlerFunc {
	return RequireRoleWithConfig(CapabilityConfig{}, roles...)
}

// RequireRoleWithConfig creates role middleware with custom config
func RequireRoleWithConfig(cfg CapabilityConfig, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleCapabilityDenied(c, cfg, roles, "No authentication claims found")
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		handleCapabilityDenied(c, cfg, roles, "Token role not permitted")
	}
}

// RequireTerminal creates middleware that only admits terminal agent tokens.
// Agent endpoints reject staff tokens so a cashier credential cannot drain print queues.
func RequireTerminal() gin.HandlerFunc {
	return RequireTerminalWithConfig(CapabilityConfig{})
}

// RequireTerminalWithConfig creates terminal middleware with custom config
func RequireTerminalWithConfig(cfg CapabilityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleCapabilityDenied(c, cfg, nil, "No authentication claims found")
			return
		}

		if claims.TerminalID == "" {
			handleCapabilityDenied(c, cfg, nil, "Token is not bound to a terminal")
			return
		}

		c.Next()
	}
}

// handleCapabilityDenied handles capability denied scenarios
func handleCapabilityDenied(c *gin.Context, cfg CapabilityConfig, required []string, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, required)
		return
	}

	if cfg.Logger != nil {
		claims := GetJWTClaims(c)
		userID := ""
		tokenCaps := []string{}
		if claims != nil {
			userID = claims.UserID
			tokenCaps = claims.Capabilities
		}

		cfg.Logger.Warn("Capability denied",
			zap.String("reason", reason),
			zap.String("user_id", userID),
			zap.Strings("required_capabilities", required),
			zap.Strings("token_capabilities", tokenCaps),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "Access denied: insufficient capabilities",
		},
	})
}

// HasCapability is a helper function to check capability in handlers
// Returns true if the token carries the specified capability
func HasCapability(c *gin.Context, capability string) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasCapability(capability)
}

// HasAnyCapability is a helper function to check if the token carries any of the capabilities
func HasAnyCapability(c *gin.Context, capabilities ...string) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasAnyCapability(capabilities...)
}

// HasAllCapabilities is a helper function to check if the token carries all of the capabilities
func HasAllCapabilities(c *gin.Context, capabilities ...string) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasAllCapabilities(capabilities...)
}

// MustHaveCapability aborts the request if the token lacks the capability
// Returns true if the capability is present, false if aborted
func MustHaveCapability(c *gin.Context, capability string) bool {
	if !HasCapability(c, capability) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ERR_FORBIDDEN",
				"message": "Access denied: insufficient capabilities",
			},
		})
		return false
	}
	return true
}

// CheckCapabilityFunc is a function type for custom capability checking
type CheckCapabilityFunc func(claims *auth.Claims, c *gin.Context) bool

// RequireCustomCapability creates middleware with a custom capability check function
// This allows for checks that can't be expressed with capability strings alone
func RequireCustomCapability(checkFunc CheckCapabilityFunc) gin.HandlerFunc {
	return RequireCustomCapabilityWithConfig(checkFunc, CapabilityConfig{})
}

// RequireCustomCapabilityWithConfig creates custom capability middleware with config
func RequireCustomCapabilityWithConfig(checkFunc CheckCapabilityFunc, cfg CapabilityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleCapabilityDenied(c, cfg, []string{"custom"}, "No authentication claims found")
			return
		}

		if !checkFunc(claims, c) {
			handleCapabilityDenied(c, cfg, []string{"custom"}, "Custom capability check failed")
			return
		}

		c.Next()
	}
}
