package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"microblog/internal/metrics"
	"microblog/internal/repositories"
	"microblog/internal/schemas"
	"microblog/internal/utils"
)

const profileSavedMessage = "Your changes have been saved."

type UserHdl interface {
	Profile(c *gin.Context)
	ShowEditProfile(c *gin.Context)
	EditProfile(c *gin.Context)
}

type UserHandler struct {
	page
	Store        repositories.Store
	Metrics      *metrics.Metrics
	PostsPerPage int
}

func NewUserHandler(cookies *utils.Cookies, store repositories.Store, m *metrics.Metrics, postsPerPage int) UserHdl {
	return &UserHandler{
		page:         page{Cookies: cookies},
		Store:        store,
		Metrics:      m,
		PostsPerPage: postsPerPage,
	}
}

// Profile shows a user with follower counts and a page of the user's posts. Unknown users get the 404 page.
func (handler *UserHandler) Profile(c *gin.Context) {
	user, err := handler.Store.Users().GetByUsername(c, c.Param(utils.UsernameKey))
	if errors.Is(err, repositories.ErrNotFound) {
		handler.notFound(c)
		return
	}
	if err != nil {
		handler.internalError(c, err)
		return
	}

	currentUser := utils.CurrentUser(c)
	profile := &schemas.ProfileDTO{User: user, IsSelf: currentUser.ID == user.ID}

	followers := handler.Store.Followers()
	if profile.Followers, err = followers.FollowerCount(c, user.ID); err != nil {
		handler.internalError(c, err)
		return
	}
	if profile.Following, err = followers.FollowingCount(c, user.ID); err != nil {
		handler.internalError(c, err)
		return
	}
	if !profile.IsSelf {
		if profile.IsFollowing, err = followers.IsFollowing(c, currentUser.ID, user.ID); err != nil {
			handler.internalError(c, err)
			return
		}
	}

	pagination := utils.NewPagination(utils.ParsePageParam(c), handler.PostsPerPage, 0)
	posts, total, err := handler.Store.Posts().ListByAuthor(c, user.ID, pagination.Offset(), pagination.PerPage)
	if err != nil {
		handler.internalError(c, err)
		return
	}

	handler.render(c, http.StatusOK, "user.html", user.Username, gin.H{
		"Profile":    profile,
		"Posts":      posts,
		"Pagination": utils.NewPagination(pagination.Page, pagination.PerPage, total),
		"PagePath":   "/user/" + user.Username,
	})
}

func (handler *UserHandler) ShowEditProfile(c *gin.Context) {
	currentUser := utils.CurrentUser(c)
	handler.render(c, http.StatusOK, "edit_profile.html", "Edit Profile", gin.H{
		"Form": &schemas.EditProfileRequest{Username: currentUser.Username, AboutMe: currentUser.AboutMe},
	})
}

// EditProfile changes username and biography. Keeping the current username is never a conflict.
func (handler *UserHandler) EditProfile(c *gin.Context) {
	currentUser := utils.CurrentUser(c)
	editRequest := utils.Payload[schemas.EditProfileRequest](c)
	formErrors := utils.FormErrors(c)

	if len(formErrors) == 0 && editRequest.Username != currentUser.Username {
		taken, err := handler.Store.Users().UsernameTaken(c, editRequest.Username)
		if err != nil {
			handler.internalError(c, err)
			return
		}
		if taken {
			formErrors["username"] = usernameTakenMessage
		}
	}

	if len(formErrors) == 0 {
		err := handler.Store.WithTx(c, func(tx repositories.Store) error {
			return tx.Users().UpdateProfile(c, currentUser.ID, editRequest.Username, editRequest.AboutMe)
		})
		switch {
		case errors.Is(err, repositories.ErrConflict):
			formErrors["username"] = usernameTakenMessage
		case err != nil:
			handler.internalError(c, err)
			return
		default:
			handler.redirect(c, "/edit_profile", profileSavedMessage)
			return
		}
	}

	handler.render(c, http.StatusBadRequest, "edit_profile.html", "Edit Profile", gin.H{
		"Form":   editRequest,
		"Errors": formErrors,
	})
}
