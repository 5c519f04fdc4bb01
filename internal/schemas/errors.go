package schemas

// CustomError is a struct that represents a custom error
// Code is the error code
// Message is the error message
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The request body is invalid. Please check the request body and try again.",
	}
	UsernameTaken = &CustomError{
		Code:    "ERR-002",
		Message: "The username is already taken. Please try another username.",
	}
	EmailTaken = &CustomError{
		Code:    "ERR-003",
		Message: "The email is already taken. Please try another email.",
	}
	UserNotFound = &CustomError{
		Code:    "ERR-004",
		Message: "The user was not found. Please check the username and try again.",
	}
	Unauthorized = &CustomError{
		Code:    "ERR-005",
		Message: "You are not logged in. Please log in and try again.",
	}
	InvalidToken = &CustomError{
		Code:    "ERR-006",
		Message: "The token is invalid or has expired.",
	}
	PostTooLong = &CustomError{
		Code:    "ERR-007",
		Message: "The post exceeds the maximum length of 140 characters.",
	}
	TranslationUnavailable = &CustomError{
		Code:    "ERR-008",
		Message: "The translation service is not available.",
	}
	DatabaseError = &CustomError{
		Code:    "ERR-009",
		Message: "A database error occurred. Please try again later.",
	}
	InternalServerError = &CustomError{
		Code:    "ERR-010",
		Message: "An unexpected error occurred. Please try again later.",
	}
)
