package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/requestdata"
	"github.com/prepdeck/prepdeck-backend/internal/utils"
)

// UserKeyMiddleware resolves the acting user key for each request. There is
// no auth layer; the key comes from the X-User-ID header and falls back to a
// configured default so single-user deployments need no client changes.
type UserKeyMiddleware struct {
	log         *logger.Logger
	defaultUser string
}

func NewUserKeyMiddleware(log *logger.Logger) *UserKeyMiddleware {
	return &UserKeyMiddleware{
		log:         log.With("Middleware", "UserKeyMiddleware"),
		defaultUser: utils.GetEnv("DEFAULT_USER_ID", "default", log),
	}
}

func (um *UserKeyMiddleware) ResolveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			userID = um.defaultUser
		}
		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
