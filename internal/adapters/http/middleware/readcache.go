package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/hourly-quotes/internal/app/readcache"
)

// ReadCache gives each request its own read cache, so one page render reads
// every store key at most once.
func ReadCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := readcache.WithContext(c.Request.Context(), readcache.New())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
