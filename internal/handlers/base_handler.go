// Package handlers implements the pages and actions of the microblog on top of gin.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"microblog/internal/utils"
)

// page is the base handler every page handler embeds. It renders templates with the data every
// page needs: title, current user, pending flashes and locale.
type page struct {
	Cookies *utils.Cookies
}

func (p *page) render(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["CurrentUser"] = utils.CurrentUser(c)
	data["Flashes"] = p.Cookies.Flashes(c)
	data["Locale"] = utils.Locale(c)
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = utils.FormErrors(c)
	}
	c.HTML(status, name, data)
}

// redirect queues message, if any, and redirects to location.
func (p *page) redirect(c *gin.Context, location, message string) {
	if message != "" {
		p.Cookies.AddFlash(c, message)
	}
	c.Redirect(http.StatusFound, location)
}

// notFound renders the 404 page and stops the chain.
func (p *page) notFound(c *gin.Context) {
	p.render(c, http.StatusNotFound, "404.html", "Not Found", nil)
	c.Abort()
}

// internalError logs err and renders the 500 page. Transactions have already been rolled back by then.
func (p *page) internalError(c *gin.Context, err error) {
	utils.LogMessageWithFieldsAndError(c, "error", "Returning internal server error page", err)
	_ = c.Error(err)
	p.render(c, http.StatusInternalServerError, "500.html", "Error", nil)
	c.Abort()
}
