package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hntran/reelist/internal/domain/session"
	"github.com/hntran/reelist/internal/domain/user"
	"github.com/hntran/reelist/pkg/apperror"
	"github.com/hntran/reelist/pkg/auth"
	"github.com/hntran/reelist/pkg/logger"
)

const (
	GinContextKeyUserID = "userID"
)

func AuthMiddleware(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeyUserID, claims.UserID)

		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid bearer token is
// present and lets the request through as the current local identity when
// none is. Invalid tokens are still rejected outright.
//
// The server holds one session.Provider, single-install by design: a
// tokenless request keeps whatever identity the session last held until
// a session endpoint or an authenticated request switches it.
func OptionalAuth(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeyUserID, claims.UserID)

		c.Next()
	}
}

// BlockGuard rejects requests from blocked accounts and drops their session
// back to guest, which re-hydrates the stores without the cloud identity.
func BlockGuard(userRepo user.Repository, provider *session.Provider, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserIDFromGinContext(c)
		if !ok {
			c.Next()
			return
		}

		u, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			log.Warn("block check failed, letting request through", zap.Error(err))
			c.Next()
			return
		}
		if u.Blocked {
			if current, _ := provider.Current(); current.Role == session.RoleUser && current.UserID == userID {
				provider.Switch(session.Guest())
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Your account has been blocked"})
			return
		}
		c.Next()
	}
}

// SessionMiddleware lines the store-facing session identity up with the
// authenticated caller, triggering re-hydration on a change.
func SessionMiddleware(provider *session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := GetUserIDFromGinContext(c); ok {
			current, _ := provider.Current()
			if current.Role != session.RoleUser || current.UserID != userID {
				provider.Switch(session.User(userID))
			}
		}
		c.Next()
	}
}

// AdminGuard only lets the admin identity through.
func AdminGuard(provider *session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := provider.Current()
		if identity.Role != session.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

// ErrorMiddleware renders the first collected error with the apperror
// status mapping.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status := apperror.ToHTTPStatus(appErr)
			if status >= http.StatusInternalServerError {
				log.Error("request failed", err, zap.String("path", c.FullPath()))
			}
			c.JSON(status, appErr.ToJSON())
			return
		}

		log.Error("unhandled request error", err, zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func GetUserIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(GinContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	userIDUUID, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return userIDUUID, true
}
