package middleware

import (
	"github.com/gin-gonic/gin"
	"microblog/internal/utils"
)

// DetectLocale stores the best supported language for the Accept-Language header of the request.
func DetectLocale(matcher *utils.LocaleMatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.LocaleKey.String(), matcher.Match(c.GetHeader("Accept-Language")))
		c.Next()
	}
}
