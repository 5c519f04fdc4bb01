package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"microblog/internal/managers"
	"microblog/internal/repositories"
	"microblog/internal/utils"
)

const loginRequiredMessage = "Please log in to access this page."

// LoadSession resolves the logged in user from the session cookie and stores it on the context.
// Authenticated requests refresh the user's last seen timestamp; a failure to do so is only logged.
func LoadSession(cookies *utils.Cookies, sessions managers.SessionMgr, store repositories.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := cookies.SessionID(c)
		if sid == "" {
			c.Next()
			return
		}

		userID, err := sessions.Get(c, sid)
		if err != nil {
			utils.LogMessageWithFieldsAndError(c, "error", "Error loading session", err)
			c.Next()
			return
		}
		if userID == uuid.Nil {
			cookies.ClearSessionID(c)
			c.Next()
			return
		}

		user, err := store.Users().GetByID(c, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				_ = sessions.Delete(c, sid)
				cookies.ClearSessionID(c)
			} else {
				utils.LogMessageWithFieldsAndError(c, "error", "Error loading session user", err)
			}
			c.Next()
			return
		}

		now := time.Now().UTC()
		if err := store.WithTx(c, func(tx repositories.Store) error {
			return tx.Users().TouchLastSeen(c, user.ID, now)
		}); err != nil {
			utils.LogMessageWithFieldsAndError(c, "warn", "Error updating last seen", err)
		} else {
			user.LastSeen = now
		}

		c.Set(utils.CurrentUserKey.String(), user)
		c.Set(utils.SessionIdKey.String(), sid)
		c.Next()
	}
}

// RequireLogin sends anonymous users to the login page and remembers where they wanted to go.
func RequireLogin(cookies *utils.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.CurrentUser(c) != nil {
			c.Next()
			return
		}

		cookies.AddFlash(c, loginRequiredMessage)
		c.Redirect(http.StatusFound, "/login?"+url.Values{utils.NextParamKey: {c.Request.URL.RequestURI()}}.Encode())
		c.Abort()
	}
}
