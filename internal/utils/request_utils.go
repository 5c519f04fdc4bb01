package utils

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"microblog/internal/schemas"
)

// WriteAndLogResponse encodes the response object to JSON and writes it with the provided status code.
func WriteAndLogResponse(c *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(c, "info", "Returning response")
	c.JSON(statusCode, response)
}

// WriteAndLogError logs the provided error and sends an error response with the specified status code and error details.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	LogMessageWithFieldsAndError(c, "error", "Returning "+customErr.Code+" / "+customErr.Message, err)
	c.AbortWithStatusJSON(statusCode, &schemas.ErrorDTO{
		Error: *customErr,
	})
}

// CurrentUser returns the authenticated user of the request, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *schemas.User {
	user, _ := c.Value(CurrentUserKey.String()).(*schemas.User)
	return user
}

// FormErrors returns the validation messages the form binding middleware stored, keyed by form field.
func FormErrors(c *gin.Context) map[string]string {
	errs, _ := c.Value(FormErrorsKey.String()).(map[string]string)
	if errs == nil {
		errs = map[string]string{}
	}
	return errs
}

// IsSafeRedirect accepts only site-relative targets, so a crafted next parameter cannot send users elsewhere.
func IsSafeRedirect(target string) bool {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return false
	}
	u, err := url.Parse(target)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// Payload returns the request payload the binding middleware stored, or nil if there is none.
func Payload[T any](c *gin.Context) *T {
	payload, _ := c.Value(SanitizedPayloadKey.String()).(*T)
	return payload
}

// Locale returns the language negotiated for the request.
func Locale(c *gin.Context) string {
	return c.GetString(LocaleKey.String())
}
