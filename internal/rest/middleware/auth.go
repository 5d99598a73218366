package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/flexprice/ticketing/internal/config"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/gin-gonic/gin"
)

// CronAuthMiddleware guards the sweep triggers with the shared cron secret.
// The secret is read from X-Cron-Secret or an Authorization bearer token.
// An unset secret locks the routes instead of opening them.
func CronAuthMiddleware(cfg *config.Configuration, log *logger.Logger) gin.HandlerFunc {
	secret := cfg.Cron.Secret
	if secret == "" {
		log.Warnw("cron secret is not configured, cron routes will reject every request")
	}

	return func(c *gin.Context) {
		provided := c.GetHeader(types.HeaderCronSecret)
		if provided == "" {
			provided, _ = strings.CutPrefix(c.GetHeader(types.HeaderAuthorization), "Bearer ")
		}

		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			log.Debugw("rejected cron request",
				"path", c.FullPath(),
				"has_secret", provided != "")
			_ = c.Error(ierr.NewError("invalid cron secret").
				WithHint("Unauthorized").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		c.Next()
	}
}
