package auth

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Credentials is the login form.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up form. Confirm never leaves the client.
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Confirm  string `json:"confirm" validate:"eqfield=Password"`
}

// FormError is a validation failure with a message fit for inline display.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string { return e.Message }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("username", validateUsername)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateUsername(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// ValidateCredentials checks the login form before any network call.
func ValidateCredentials(c Credentials) error {
	return check(c)
}

// ValidateRegistration checks the sign-up form before any network call.
// A password mismatch is reported ahead of a short password.
func ValidateRegistration(r Registration) error {
	if r.Password != r.Confirm {
		return &FormError{Field: "confirm", Message: "Passwords do not match"}
	}
	return check(r)
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &FormError{Field: fe.Field(), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	switch fe.Field() + "." + fe.Tag() {
	case "username.required":
		return "Username is required"
	case "username.min":
		return "Username must be at least 3 characters"
	case "username.max":
		return "Username must be at most 50 characters"
	case "username.username":
		return "Username must not contain spaces"
	case "email.required":
		return "Email is required"
	case "email.email":
		return "Email address is invalid"
	case "password.required":
		return "Password is required"
	case "password.min":
		return "Password must be at least 6 characters"
	case "confirm.eqfield":
		return "Passwords do not match"
	}
	return fe.Error()
}
