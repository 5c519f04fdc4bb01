// Package schemas defines the request structures for various operations in the application.
package schemas

// RegistrationRequest is a struct that represents a registration form
// Username is required, at most 64 characters and restricted to username characters
// Email is required and must be a valid email of at most 120 characters
// Password is required and at most 72 bytes, the bcrypt input limit
// Password2 must repeat Password
type RegistrationRequest struct {
	Username  string `form:"username" validate:"required,max=64,username_validation"`
	Email     string `form:"email" validate:"required,max=120,email"`
	Password  string `form:"password" validate:"required,password_validation" sanitize:"skip"`
	Password2 string `form:"password2" validate:"required,eqfield=Password" sanitize:"skip"`
}

// LoginRequest is a struct that represents a login form
type LoginRequest struct {
	Username   string `form:"username" validate:"required,max=64"`
	Password   string `form:"password" validate:"required,password_validation" sanitize:"skip"`
	RememberMe string `form:"remember_me"`
}

// Remember reports whether the remember me box was ticked.
func (r *LoginRequest) Remember() bool {
	return r.RememberMe != "" && r.RememberMe != "false"
}

// ResetPasswordRequestRequest is a struct that represents the form asking for a reset mail
type ResetPasswordRequestRequest struct {
	Email string `form:"email" validate:"required,max=120,email"`
}

// ResetPasswordRequest is a struct that represents the form setting a new password
type ResetPasswordRequest struct {
	Password  string `form:"password" validate:"required,password_validation" sanitize:"skip"`
	Password2 string `form:"password2" validate:"required,eqfield=Password" sanitize:"skip"`
}

// CreatePostRequest is a struct that represents a post submission
// Post is required, at most 140 characters and valid UTF-8
type CreatePostRequest struct {
	Post string `form:"post" validate:"required,post_validation"`
}

// EditProfileRequest is a struct that represents a profile edit
type EditProfileRequest struct {
	Username string `form:"username" validate:"required,max=64,username_validation"`
	AboutMe  string `form:"about_me" validate:"max=140"`
}

// TranslateRequest is a struct that represents a translation request
type TranslateRequest struct {
	Text           string `form:"text" json:"text" validate:"required"`
	SourceLanguage string `form:"source_language" json:"source_language" validate:"required,max=10"`
	DestLanguage   string `form:"dest_language" json:"dest_language" validate:"required,max=10"`
}
