package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"microblog/internal/config"
	"microblog/internal/managers"
	"microblog/internal/metrics"
	"microblog/internal/repositories"
	"microblog/internal/schemas"
	"microblog/internal/utils"
)

const (
	invalidCredentialsMessage = "Invalid username or password"
	registeredMessage         = "Congratulations, you are now a registered user!"
	resetRequestedMessage     = "Check your email for the instructions to reset your password"
	passwordResetMessage      = "Your password has been reset."
	usernameTakenMessage      = "Please use a different username."
	emailTakenMessage         = "Please use a different email address."
	invalidEmailMessage       = "Please use a valid email address."
)

type AuthHdl interface {
	ShowLogin(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	ShowRegister(c *gin.Context)
	Register(c *gin.Context)
	ShowResetPasswordRequest(c *gin.Context)
	ResetPasswordRequest(c *gin.Context)
	ShowResetPassword(c *gin.Context)
	ResetPassword(c *gin.Context)
}

type AuthHandler struct {
	page
	Store          repositories.Store
	JWTManager     managers.JWTMgr
	MailManager    managers.MailMgr
	SessionManager managers.SessionMgr
	Metrics        *metrics.Metrics
	Validator      *utils.Validator
	config         *config.Config
}

func NewAuthHandler(cookies *utils.Cookies, store repositories.Store, jwtManager managers.JWTMgr, mailManager managers.MailMgr,
	sessionManager managers.SessionMgr, m *metrics.Metrics, cfg *config.Config) AuthHdl {
	return &AuthHandler{
		page:           page{Cookies: cookies},
		Store:          store,
		JWTManager:     jwtManager,
		MailManager:    mailManager,
		SessionManager: sessionManager,
		Metrics:        m,
		Validator:      utils.GetValidator(),
		config:         cfg,
	}
}

// redirectAuthenticated sends users who are already logged in to their feed.
func (handler *AuthHandler) redirectAuthenticated(c *gin.Context) bool {
	if utils.CurrentUser(c) == nil {
		return false
	}
	c.Redirect(http.StatusFound, "/index")
	return true
}

func (handler *AuthHandler) nextTarget(c *gin.Context) string {
	next := c.Query(utils.NextParamKey)
	if next == "" {
		next = c.PostForm(utils.NextParamKey)
	}
	return next
}

func (handler *AuthHandler) ShowLogin(c *gin.Context) {
	if handler.redirectAuthenticated(c) {
		return
	}
	handler.render(c, http.StatusOK, "login.html", "Sign In", gin.H{"Next": handler.nextTarget(c)})
}

// Login checks the credentials and starts a server-side session. Unknown users and wrong passwords
// get the same answer.
func (handler *AuthHandler) Login(c *gin.Context) {
	if handler.redirectAuthenticated(c) {
		return
	}

	loginRequest := utils.Payload[schemas.LoginRequest](c)
	if formErrors := utils.FormErrors(c); len(formErrors) > 0 {
		handler.render(c, http.StatusBadRequest, "login.html", "Sign In", gin.H{
			"Form": loginRequest,
			"Next": handler.nextTarget(c),
		})
		return
	}

	user, err := handler.Store.Users().GetByUsername(c, loginRequest.Username)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		handler.internalError(c, err)
		return
	}
	if user == nil || !user.CheckPassword(loginRequest.Password) {
		utils.LogMessageWithFields(c, "info", "Rejected login attempt")
		handler.redirect(c, "/login", invalidCredentialsMessage)
		return
	}

	ttl, maxAge := handler.config.SessionTTL, 0
	if loginRequest.Remember() {
		ttl = handler.config.RememberTTL
		maxAge = int(ttl / time.Second)
	}

	sid, err := handler.SessionManager.Create(c, user.ID, ttl)
	if err != nil {
		handler.internalError(c, err)
		return
	}
	handler.Cookies.SetSessionID(c, sid, maxAge)
	utils.LogMessageWithFields(c, "info", "User "+user.Username+" logged in")

	next := handler.nextTarget(c)
	if !utils.IsSafeRedirect(next) {
		next = "/index"
	}
	c.Redirect(http.StatusFound, next)
}

// Logout ends the server-side session and forgets it in the cookie.
func (handler *AuthHandler) Logout(c *gin.Context) {
	if sid := handler.Cookies.SessionID(c); sid != "" {
		if err := handler.SessionManager.Delete(c, sid); err != nil {
			utils.LogMessageWithFieldsAndError(c, "warn", "Error deleting session", err)
		}
	}
	handler.Cookies.ClearSessionID(c)
	c.Redirect(http.StatusFound, "/index")
}

func (handler *AuthHandler) ShowRegister(c *gin.Context) {
	if handler.redirectAuthenticated(c) {
		return
	}
	handler.render(c, http.StatusOK, "register.html", "Register", nil)
}

// Register creates a new account. Taken usernames or emails re-render the form with field errors.
func (handler *AuthHandler) Register(c *gin.Context) {
	if handler.redirectAuthenticated(c) {
		return
	}

	registrationRequest := utils.Payload[schemas.RegistrationRequest](c)
	formErrors := utils.FormErrors(c)
	if len(formErrors) == 0 {
		if !handler.Validator.VerifyEmail(registrationRequest.Email) {
			formErrors["email"] = invalidEmailMessage
		}
		if err := handler.checkUsernameEmailTaken(c, registrationRequest.Username, registrationRequest.Email, formErrors); err != nil {
			handler.internalError(c, err)
			return
		}
	}
	if len(formErrors) > 0 {
		handler.render(c, http.StatusBadRequest, "register.html", "Register", gin.H{
			"Form":   registrationRequest,
			"Errors": formErrors,
		})
		return
	}

	now := time.Now().UTC()
	user := &schemas.User{
		ID:        uuid.New(),
		Username:  registrationRequest.Username,
		Email:     schemas.NormalizeEmail(registrationRequest.Email),
		LastSeen:  now,
		CreatedAt: now,
	}
	if err := user.SetPassword(registrationRequest.Password); err != nil {
		handler.internalError(c, err)
		return
	}

	err := handler.Store.WithTx(c, func(tx repositories.Store) error {
		return tx.Users().Create(c, user)
	})
	if errors.Is(err, repositories.ErrConflict) {
		// Lost a race against a concurrent registration, find out which field collided.
		conflicts := map[string]string{}
		if checkErr := handler.checkUsernameEmailTaken(c, user.Username, user.Email, conflicts); checkErr != nil || len(conflicts) == 0 {
			conflicts["username"] = usernameTakenMessage
		}
		handler.render(c, http.StatusBadRequest, "register.html", "Register", gin.H{
			"Form":   registrationRequest,
			"Errors": conflicts,
		})
		return
	}
	if err != nil {
		handler.internalError(c, err)
		return
	}

	utils.LogMessageWithFields(c, "info", "Registered user "+user.Username)
	handler.redirect(c, "/login", registeredMessage)
}

func (handler *AuthHandler) checkUsernameEmailTaken(c *gin.Context, username, email string, formErrors map[string]string) error {
	usernameTaken, err := handler.Store.Users().UsernameTaken(c, username)
	if err != nil {
		return err
	}
	if usernameTaken {
		formErrors["username"] = usernameTakenMessage
	}

	emailTaken, err := handler.Store.Users().EmailTaken(c, email)
	if err != nil {
		return err
	}
	if emailTaken {
		formErrors["email"] = emailTakenMessage
	}
	return nil
}

func (handler *AuthHandler) ShowResetPasswordRequest(c *gin.Context) {
	if handler.redirectAuthenticated(c) {
		return
	}
	handler.render(c, http.StatusOK, "reset_password_request.html", "Reset Password", nil)
}

// ResetPasswordRequest mails a reset link when the address belongs to a user. The answer is the same
// either way, so the form cannot be used to probe for registered addresses.
func (handler *AuthHandler) ResetPasswordRequest(c *gin.Context) {
	if handler.redirectAuthenticated(c) {
		return
	}

	resetRequest := utils.Payload[schemas.ResetPasswordRequestRequest](c)
	if formErrors := utils.FormErrors(c); len(formErrors) > 0 {
		handler.render(c, http.StatusBadRequest, "reset_password_request.html", "Reset Password", gin.H{"Form": resetRequest})
		return
	}

	user, err := handler.Store.Users().GetByEmail(c, resetRequest.Email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		utils.LogMessageWithFields(c, "info", "Password reset requested for unknown email")
	case err != nil:
		handler.internalError(c, err)
		return
	default:
		handler.sendResetMail(c, user)
	}

	handler.redirect(c, "/login", resetRequestedMessage)
}

func (handler *AuthHandler) sendResetMail(c *gin.Context, user *schemas.User) {
	token, err := handler.JWTManager.IssueResetToken(user, handler.config.ResetTokenTTL)
	if err != nil {
		utils.LogMessageWithFieldsAndError(c, "error", "Error issuing reset token", err)
		return
	}

	resetURL := strings.TrimRight(handler.config.BaseURL, "/") + "/reset_password/" + token
	if err := handler.MailManager.SendPasswordResetMail(user.Email, user.Username, resetURL); err != nil {
		utils.LogMessageWithFieldsAndError(c, "warn", "Error queueing password reset mail", err)
		return
	}
	handler.Metrics.PasswordResets.WithLabelValues("requested").Inc()
}

// resetTarget resolves the user a reset token belongs to. Tokens for unknown users or for a password
// that has changed since they were issued are treated like forged ones.
func (handler *AuthHandler) resetTarget(c *gin.Context) (*schemas.User, bool) {
	token, err := handler.JWTManager.VerifyResetToken(c.Param(utils.TokenKey))
	if err != nil {
		utils.LogMessageWithFieldsAndError(c, "info", "Rejected password reset token", err)
		return nil, false
	}

	user, err := handler.Store.Users().GetByID(c, token.UserID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			utils.LogMessageWithFieldsAndError(c, "error", "Error loading user for password reset", err)
		}
		return nil, false
	}
	if user.PasswordFingerprint() != token.Fingerprint {
		utils.LogMessageWithFields(c, "info", "Rejected password reset token that was already used")
		return nil, false
	}
	return user, true
}

func (handler *AuthHandler) ShowResetPassword(c *gin.Context) {
	if handler.redirectAuthenticated(c) {
		return
	}
	if _, ok := handler.resetTarget(c); !ok {
		c.Redirect(http.StatusFound, "/index")
		return
	}
	handler.render(c, http.StatusOK, "reset_password.html", "Reset Password", gin.H{"Token": c.Param(utils.TokenKey)})
}

func (handler *AuthHandler) ResetPassword(c *gin.Context) {
	if handler.redirectAuthenticated(c) {
		return
	}
	user, ok := handler.resetTarget(c)
	if !ok {
		c.Redirect(http.StatusFound, "/index")
		return
	}

	resetRequest := utils.Payload[schemas.ResetPasswordRequest](c)
	if formErrors := utils.FormErrors(c); len(formErrors) > 0 {
		handler.render(c, http.StatusBadRequest, "reset_password.html", "Reset Password", gin.H{"Token": c.Param(utils.TokenKey)})
		return
	}

	oldHash := user.PasswordHash
	if err := user.SetPassword(resetRequest.Password); err != nil {
		handler.internalError(c, err)
		return
	}
	err := handler.Store.WithTx(c, func(tx repositories.Store) error {
		return tx.Users().UpdatePassword(c, user.ID, oldHash, user.PasswordHash)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		// a concurrent reset with the same token won
		utils.LogMessageWithFields(c, "info", "Rejected password reset token that was already used")
		c.Redirect(http.StatusFound, "/index")
		return
	}
	if err != nil {
		handler.internalError(c, err)
		return
	}

	handler.Metrics.PasswordResets.WithLabelValues("completed").Inc()
	handler.redirect(c, "/login", passwordResetMessage)
}
