package middleware

import (
	"net/http"
	"strings"

	"pricely/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextToken  = "token"
)

// BlacklistKey is the Redis key marking a revoked token.
// respondAbort stops the chain with the standard error envelope.
func respondAbort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"result": nil, "success": false, "error": msg})
}

func BlacklistKey(token string) string {
	return "blacklist:" + token
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// authenticate validates the bearer token and stores the claims on the context.
func authenticate(c *gin.Context, rdb *redis.Client, secret string) (int, string) {
	token := bearerToken(c)
	if token == "" {
		return http.StatusUnauthorized, "Missing or invalid Authorization header"
	}

	revoked, err := rdb.Exists(c.Request.Context(), BlacklistKey(token)).Result()
	if err != nil {
		utils.LogError(err, "token blacklist lookup")
		return http.StatusServiceUnavailable, "Authentication backend unavailable"
	}
	if revoked > 0 {
		return http.StatusUnauthorized, "Token has been revoked"
	}

	claims, err := utils.ParseJWT(token, secret)
	if err != nil {
		return http.StatusUnauthorized, "Invalid or expired token"
	}
	c.Set(ContextUserID, int(claims.UserID))
	c.Set(ContextRole, claims.Role)
	c.Set(ContextToken, token)
	return 0, ""
}

func JWTAuthMiddleware(rdb *redis.Client, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if status, msg := authenticate(c, rdb, secret); status != 0 {
			respondAbort(c, status, msg)
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the user when a valid token is present and never rejects the request.
func OptionalAuth(rdb *redis.Client, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) != "" {
			if status, _ := authenticate(c, rdb, secret); status != 0 {
				c.Set(ContextUserID, 0)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	return uint(c.GetInt(ContextUserID))
}
