package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	cookieName     = "microblog"
	sessionIdValue = "sid"
)

// Cookies wraps the signed browser cookie. It carries the server-side session id and the flash messages.
type Cookies struct {
	store *sessions.CookieStore
}

// NewCookies creates the cookie store signed with secret. Secure cookies are only sent over HTTPS.
func NewCookies(secret string, secure bool) *Cookies {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Cookies{store: store}
}

// session never fails: a tampered or stale cookie is replaced by a fresh session.
func (ck *Cookies) session(c *gin.Context) *sessions.Session {
	session, err := ck.store.Get(c.Request, cookieName)
	if err != nil {
		LogMessageWithFields(c, "debug", "Discarding unreadable session cookie: "+err.Error())
	}
	return session
}

func (ck *Cookies) save(c *gin.Context, session *sessions.Session) {
	if err := session.Save(c.Request, c.Writer); err != nil {
		LogMessageWithFieldsAndError(c, "error", "Error saving session cookie", err)
	}
}

// SessionID returns the server-side session id stored in the cookie, or "".
func (ck *Cookies) SessionID(c *gin.Context) string {
	sid, _ := ck.session(c).Values[sessionIdValue].(string)
	return sid
}

// SetSessionID stores sid in the cookie. A maxAge of 0 makes it a browser session cookie.
func (ck *Cookies) SetSessionID(c *gin.Context, sid string, maxAge int) {
	session := ck.session(c)
	session.Values[sessionIdValue] = sid
	session.Options.MaxAge = maxAge
	ck.save(c, session)
}

// ClearSessionID removes the session id but keeps pending flashes.
func (ck *Cookies) ClearSessionID(c *gin.Context) {
	session := ck.session(c)
	delete(session.Values, sessionIdValue)
	session.Options.MaxAge = 0
	ck.save(c, session)
}

// AddFlash queues a message for the next rendered page.
func (ck *Cookies) AddFlash(c *gin.Context, message string) {
	session := ck.session(c)
	session.AddFlash(message)
	ck.save(c, session)
}

// Flashes consumes the queued messages.
func (ck *Cookies) Flashes(c *gin.Context) []string {
	session := ck.session(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}

	messages := make([]string, 0, len(raw))
	for _, flash := range raw {
		if message, ok := flash.(string); ok {
			messages = append(messages, message)
		}
	}
	ck.save(c, session)
	return messages
}
