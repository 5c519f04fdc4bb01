package utils

const (
	// UsernameKey is the key for username used in routing parameters.
	UsernameKey = "username"

	// TokenKey is the key for the password reset token used in routing parameters.
	TokenKey = "token"

	// PageParamKey is the key for the page number used in pagination query parameters.
	PageParamKey = "page"

	// NextParamKey is the key of the post-login redirect target.
	NextParamKey = "next"
)
