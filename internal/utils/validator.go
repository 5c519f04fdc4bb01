package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/truemail-rb/truemail-go"
)

type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool
}

var (
	instance      *Validator
	once          sync.Once
	configuration *truemail.Configuration
	configureMu   sync.RWMutex
)

// MaxPasswordBytes is the longest input bcrypt hashes.
const MaxPasswordBytes = 72

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9.\-_]+$`)

// GetValidator returns the process wide validator with the custom validations registered.
func GetValidator() *Validator {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		registerCustomValidators(v)

		instance = &Validator{
			Validate:    v,
			VerifyEmail: validateEmail,
		}
	})

	return instance
}

// ConfigureEmailVerification selects how registration emails are verified. The regex check needs no network,
// the mx check resolves the domain's mail exchangers.
func ConfigureEmailVerification(verifierEmail string, checkMX bool) error {
	validationType := "regex"
	if checkMX {
		validationType = "mx"
	}

	cfg, err := truemail.NewConfiguration(truemail.ConfigurationAttr{
		VerifierEmail:         verifierEmail,
		ValidationTypeDefault: validationType,
		SmtpFailFast:          true,
	})
	if err != nil {
		return err
	}

	configureMu.Lock()
	configuration = cfg
	configureMu.Unlock()
	return nil
}

func validateEmail(email string) bool {
	configureMu.RLock()
	cfg := configuration
	configureMu.RUnlock()

	// Without a configuration only the validator's email tag applies.
	if cfg == nil {
		return true
	}
	return truemail.IsValid(email, cfg)
}

func registerCustomValidators(v *validator.Validate) {
	if err := v.RegisterValidation("username_validation", usernameValidation); err != nil {
		LogMessage("error", "Error registering username validation: "+err.Error())
	}

	if err := v.RegisterValidation("post_validation", postValidation); err != nil {
		LogMessage("error", "Error registering post validation: "+err.Error())
	}

	if err := v.RegisterValidation("password_validation", passwordValidation); err != nil {
		LogMessage("error", "Error registering password validation: "+err.Error())
	}
}

// usernameValidation allows a-z, A-Z, 0-9, '.', '-' and '_'.
func usernameValidation(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func postValidation(fl validator.FieldLevel) bool {
	return ValidatePostBody(fl.Field().String()) == nil
}

// passwordValidation counts bytes, not runes. bcrypt rejects anything longer than MaxPasswordBytes.
func passwordValidation(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}

// SanitizeData trims surrounding whitespace from every string field of the struct obj points to.
// Fields tagged `sanitize:"skip"`, such as passwords, are left untouched.
func (v *Validator) SanitizeData(obj interface{}) error {
	value := reflect.ValueOf(obj)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return errors.New("sanitize: expected a pointer to a struct")
	}

	value = value.Elem()
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if field.Kind() != reflect.String || !field.CanSet() {
			continue
		}
		if value.Type().Field(i).Tag.Get("sanitize") == "skip" {
			continue
		}
		field.SetString(strings.TrimSpace(field.String()))
	}
	return nil
}

// FieldErrors turns validation errors into one human readable message per form field.
func FieldErrors(err error) map[string]string {
	messages := map[string]string{}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		if err != nil {
			messages["form"] = "The submitted form is invalid."
		}
		return messages
	}

	for _, fe := range validationErrors {
		if _, exists := messages[fe.Field()]; exists {
			continue
		}
		messages[fe.Field()] = fieldMessage(fe)
	}
	return messages
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Please use a valid email address."
	case "max":
		return "Field cannot be longer than " + fe.Param() + " characters."
	case "eqfield":
		return "Field must be equal to " + strings.ToLower(fe.Param()) + "."
	case "username_validation":
		return "Usernames may only contain letters, digits, '.', '-' and '_'."
	case "password_validation":
		return "Passwords cannot be longer than 72 bytes."
	case "post_validation":
		return "Posts must contain between 1 and 140 characters."
	default:
		return "This field is invalid."
	}
}
