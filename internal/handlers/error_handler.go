package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"microblog/internal/repositories"
	"microblog/internal/schemas"
	"microblog/internal/utils"
)

type ErrorHdl interface {
	NotFound(c *gin.Context)
	Recover(c *gin.Context, recovered any)
	Health(c *gin.Context)
}

type ErrorHandler struct {
	page
	Store repositories.Store
}

func NewErrorHandler(cookies *utils.Cookies, store repositories.Store) ErrorHdl {
	return &ErrorHandler{
		page:  page{Cookies: cookies},
		Store: store,
	}
}

func (handler *ErrorHandler) NotFound(c *gin.Context) {
	handler.notFound(c)
}

// Recover renders the 500 page for a panicking handler. It is installed through gin.CustomRecovery.
func (handler *ErrorHandler) Recover(c *gin.Context, recovered any) {
	handler.internalError(c, fmt.Errorf("panic: %v", recovered))
}

// Health reports whether the store answers.
func (handler *ErrorHandler) Health(c *gin.Context) {
	if err := handler.Store.Ping(c); err != nil {
		utils.LogMessageWithFieldsAndError(c, "error", "Health check failed", err)
		c.JSON(http.StatusServiceUnavailable, &schemas.HealthDTO{Status: "unavailable"})
		return
	}
	c.JSON(http.StatusOK, &schemas.HealthDTO{Status: "ok"})
}
