package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their form name instead of the Go field name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

// maxBytes limits the encoded length of a string, unlike max which counts
// characters.  bcrypt inputs are bounded in bytes.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

// FieldErrors maps a form field name to a message describing why its value
// was rejected.  It doubles as the error returned for invalid submissions.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// Get returns the message for field, or "".
func (fe FieldErrors) Get(field string) string { return fe[field] }

// CommentForm is raw comment input as submitted by a browser.  It may hold
// any values, including invalid ones, so it can be redisplayed.
type CommentForm struct {
	Nickname string `form:"nickname"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Text     string `form:"text"`
}

// CommentInput is a validated comment submission.
type CommentInput struct {
	Nickname string `form:"nickname" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,maxbytes=72"`
	Text     string `form:"text" validate:"required,max=5000"`
}

// Redisplay returns the form as it should be shown again after a failed
// submission: the password is never echoed back.
func (f CommentForm) Redisplay() CommentForm {
	f.Password = ""
	return f
}

// ValidateCommentForm trims the submitted values and checks them.  It
// returns either a valid input or the per-field errors, never both.
func ValidateCommentForm(f CommentForm) (CommentInput, FieldErrors) {
	in := CommentInput{
		Nickname: strings.TrimSpace(f.Nickname),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Text:     strings.TrimSpace(f.Text),
	}
	if errs := ValidateStruct(in); errs != nil {
		return CommentInput{}, errs
	}
	return in, nil
}

// ValidateStruct runs the validate tags of v and converts failures into
// FieldErrors.  It returns nil when v is valid.
func ValidateStruct(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url", "http_url":
		return "Enter a valid URL."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Ensure this value is at most %s bytes long.", fe.Param())
	case "datetime":
		return "Enter a valid date (YYYY-MM-DD)."
	default:
		return fmt.Sprintf("Failed the %q check.", fe.Tag())
	}
}
