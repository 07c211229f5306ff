// Package validate holds the declarative rule sets for the registration,
// login and message forms. Each form either yields the accepted, trimmed
// values or an ordered list of field errors, never both.
package validate

import (
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single user-correctable validation failure, surfaced
// verbatim for re-display next to the form.
type FieldError struct {
	Field   string
	Message string
}

// RegisterForm carries the accepted registration fields. The membership
// secret is free text; it is verified against the configured hash by the
// auth service, not here.
type RegisterForm struct {
	FullName         string `form:"fullName" validate:"full_name"`
	Username         string `form:"username" validate:"email"`
	Password         string `form:"password" validate:"login_password"`
	MemberStatus     string `form:"memberStatus" validate:"omitempty,bool_shaped"`
	AdminStatus      string `form:"adminStatus" validate:"omitempty,bool_shaped"`
	MembershipSecret string `form:"membershipSecret"`
}

// Member reports the submitted member flag ("true"/"false" post-validation).
func (f *RegisterForm) Member() bool { return f.MemberStatus == "true" }

// Admin reports the submitted admin flag.
func (f *RegisterForm) Admin() bool { return f.AdminStatus == "true" }

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type MessageForm struct {
	Title   string `form:"messageTitle" validate:"required,min=2,max=60"`
	Content string `form:"messageContent" validate:"required,min=2,max=5000"`
}

var (
	validate     *validator.Validate
	fullNameRE   = regexp.MustCompile(`^[A-Za-z\s]+$`)
	passwordSyms = "#?!@$%^&*-"
)

func init() {
	validate = validator.New()

	// Report errors under the form field name, not the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})

	validate.RegisterValidation("full_name", validateFullName)
	validate.RegisterValidation("login_password", validateLoginPassword)
	validate.RegisterValidation("bool_shaped", validateBoolShaped)
}

func validateFullName(fl validator.FieldLevel) bool {
	return fullNameRE.MatchString(fl.Field().String())
}

// validateLoginPassword checks the password policy: at least 8 characters
// with one uppercase letter, one lowercase letter, one digit, and one
// symbol from #?!@$%^&*-.
func validateLoginPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len([]rune(password)) < 8 {
		return false
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	hasSymbol := false
	for _, char := range password {
		switch {
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		case char >= 'a' && char <= 'z':
			hasLower = true
		case char >= '0' && char <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSyms, char):
			hasSymbol = true
		}
		if hasUpper && hasLower && hasDigit && hasSymbol {
			return true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

func validateBoolShaped(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return v == "true" || v == "false"
}

// Register validates a registration submission.
func Register(values url.Values) (*RegisterForm, []FieldError) {
	var form RegisterForm
	bindForm(values, &form)
	if errs := check(&form); errs != nil {
		return nil, errs
	}
	return &form, nil
}

// Login validates a login submission.
func Login(values url.Values) (*LoginForm, []FieldError) {
	var form LoginForm
	bindForm(values, &form)
	if errs := check(&form); errs != nil {
		return nil, errs
	}
	return &form, nil
}

// Message validates a new-message submission.
func Message(values url.Values) (*MessageForm, []FieldError) {
	var form MessageForm
	bindForm(values, &form)
	if errs := check(&form); errs != nil {
		return nil, errs
	}
	return &form, nil
}

// bindForm fills dst (a pointer to a form struct) from submitted values.
// When a field name was submitted more than once — the checkbox plus
// hidden-fallback convention — the last value wins. Values are trimmed
// before validation; callers keep the raw submission for re-display.
func bindForm(values url.Values, dst any) {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("form")
		if name == "" {
			continue
		}
		vals := values[name]
		if len(vals) == 0 {
			continue
		}
		v.Field(i).SetString(strings.TrimSpace(vals[len(vals)-1]))
	}
}

func check(form any) []FieldError {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: "invalid submission"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

// fieldMessage maps a failed rule to its user-facing text. The texts are
// part of the UI contract and are asserted by tests; do not reword
// casually.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "fullName":
		return "Full name must only contain letters."
	case "username":
		if fe.Tag() == "required" {
			return "Username cannot be empty."
		}
		return "Username must be an email following the pattern: handle@domain.com."
	case "password":
		if fe.Tag() == "required" {
			return "Password cannot be empty."
		}
		return "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character."
	case "memberStatus":
		return "Member status must be true or false."
	case "adminStatus":
		return "Admin status must be true or false."
	case "messageTitle":
		if fe.Tag() == "required" {
			return "Message title cannot be empty."
		}
		return "Message title must be between 2-60 characters long."
	case "messageContent":
		if fe.Tag() == "required" {
			return "Message content cannot be empty."
		}
		return "Message content must be between 2 and 5000 characters long."
	default:
		return fe.Field() + " is invalid"
	}
}
