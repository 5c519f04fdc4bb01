package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"microblog/internal/schemas"
	"microblog/internal/utils"
)

// BindForm binds a submitted HTML form into a fresh T, trims it and validates it. The payload and the
// per-field messages are stored on the context; the handler decides whether to re-render the form.
// Requests other than POST pass through untouched.
func BindForm[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		obj := new(T)
		validator := utils.GetValidator()
		formErrors := map[string]string{}

		if err := c.ShouldBindWith(obj, binding.Form); err != nil {
			formErrors = utils.FieldErrors(err)
		} else if err := validator.SanitizeData(obj); err != nil {
			formErrors = utils.FieldErrors(err)
		} else if err := validator.Validate.Struct(obj); err != nil {
			formErrors = utils.FieldErrors(err)
		}

		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Set(utils.FormErrorsKey.String(), formErrors)
		c.Next()
	}
}

// ValidateAndSanitizeStruct binds a JSON or form body into a fresh T and aborts with 400 when it is invalid.
func ValidateAndSanitizeStruct[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := new(T)
		if err := c.ShouldBind(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
		validator := utils.GetValidator()
		// Sanitize the data
		if err := validator.SanitizeData(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}

		if err := validator.Validate.Struct(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
		// Set the sanitized object in the context
		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}
