package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"microblog/internal/metrics"
	"microblog/internal/repositories"
	"microblog/internal/schemas"
	"microblog/internal/utils"
)

type FollowHdl interface {
	Follow(c *gin.Context)
	Unfollow(c *gin.Context)
}

type FollowHandler struct {
	page
	Store   repositories.Store
	Metrics *metrics.Metrics
}

func NewFollowHandler(cookies *utils.Cookies, store repositories.Store, m *metrics.Metrics) FollowHdl {
	return &FollowHandler{
		page:    page{Cookies: cookies},
		Store:   store,
		Metrics: m,
	}
}

// target loads the user named in the path. Unknown users and the current user are answered with a
// flash and a redirect, in which case target returns nil.
func (handler *FollowHandler) target(c *gin.Context, selfMessage string) *schemas.User {
	username := c.Param(utils.UsernameKey)
	user, err := handler.Store.Users().GetByUsername(c, username)
	if errors.Is(err, repositories.ErrNotFound) {
		handler.redirect(c, "/index", fmt.Sprintf("User %s not found.", username))
		return nil
	}
	if err != nil {
		handler.internalError(c, err)
		return nil
	}

	if user.ID == utils.CurrentUser(c).ID {
		handler.redirect(c, "/user/"+user.Username, selfMessage)
		return nil
	}
	return user
}

func (handler *FollowHandler) Follow(c *gin.Context) {
	user := handler.target(c, "You cannot follow yourself!")
	if user == nil {
		handler.Metrics.FollowRequests.WithLabelValues("rejected").Inc()
		return
	}

	followerID := utils.CurrentUser(c).ID
	err := handler.Store.WithTx(c, func(tx repositories.Store) error {
		return tx.Followers().Follow(c, followerID, user.ID)
	})
	if err != nil {
		handler.internalError(c, err)
		return
	}

	handler.Metrics.FollowRequests.WithLabelValues("success").Inc()
	handler.redirect(c, "/user/"+user.Username, fmt.Sprintf("You are following %s!", user.Username))
}

func (handler *FollowHandler) Unfollow(c *gin.Context) {
	user := handler.target(c, "You cannot unfollow yourself!")
	if user == nil {
		handler.Metrics.UnfollowRequests.WithLabelValues("rejected").Inc()
		return
	}

	followerID := utils.CurrentUser(c).ID
	err := handler.Store.WithTx(c, func(tx repositories.Store) error {
		return tx.Followers().Unfollow(c, followerID, user.ID)
	})
	if err != nil {
		handler.internalError(c, err)
		return
	}

	handler.Metrics.UnfollowRequests.WithLabelValues("success").Inc()
	handler.redirect(c, "/user/"+user.Username, fmt.Sprintf("You are not following %s.", user.Username))
}
