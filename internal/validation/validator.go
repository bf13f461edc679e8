package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/farellandr/thm-registration/internal/models"
)

const MaxScreenshotBytes = 5 * 1024 * 1024

var (
	global *validator.Validate

	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+91[6-9]\d{9}$`)
)

// submission pairs the form with its file so one pass reports both.
type submission struct {
	models.RegistrationForm
	Attachment *models.Attachment `validate:"required"`
}

// Messages are emitted in this order regardless of the order the validator
// reports failures in.
var fieldOrder = []string{
	"FullName",
	"Email",
	"Phone",
	"College",
	"Branch",
	"Year",
	"Gender",
	"Accommodation",
	"FoodPreference",
	"IEEEStatus",
	"IEEEMembershipID",
	"TicketType",
	"AgreeToTerms",
	"Attachment",
	"ContentType",
	"Size",
}

var messages = map[string]string{
	"FullName":         "Full name must be at least 2 characters",
	"Email":            "Please provide a valid email address",
	"Phone":            "Please provide a valid Indian phone number (+91XXXXXXXXXX)",
	"College":          "College name must be at least 2 characters",
	"Branch":           "Branch must be at least 2 characters",
	"Year":             "Year must be 1, 2, 3, or 4",
	"Gender":           "Gender must be male, female, or other",
	"Accommodation":    "Accommodation must be yes or no",
	"FoodPreference":   "Food preference must be veg or non-veg",
	"IEEEStatus":       "IEEE status must be member or non-member",
	"IEEEMembershipID": "IEEE membership ID is required for IEEE members (at least 5 characters)",
	"TicketType":       "Ticket type must be ieee or non-ieee",
	"AgreeToTerms":     "You must agree to the terms and conditions",
	"Attachment":       "Transaction screenshot is required",
	"ContentType":      "Transaction screenshot must be a JPEG, PNG, or WebP image",
	"Size":             "Transaction screenshot must not exceed 5MB",
}

func init() {
	v, err := New()
	if err != nil {
		panic(err)
	}
	SetValidator(v)
}

func New() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	rules := []struct {
		tag string
		fn  validator.Func
	}{
		{"trimmed_min", validateTrimmedMin},
		{"oneof_fold", validateOneOfFold},
		{"email_shape", validateEmailShape},
		{"indian_mobile", validateIndianMobile},
	}
	for _, r := range rules {
		if err := v.RegisterValidation(r.tag, r.fn); err != nil {
			return nil, fmt.Errorf("register %s: %w", r.tag, err)
		}
	}
	v.RegisterStructValidation(validateMembership, models.RegistrationForm{})
	return v, nil
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

// Validate checks a submission and returns every violation found, or nil
// when the submission is acceptable. att may be nil when no file was sent.
func Validate(form models.RegistrationForm, att *models.Attachment) []string {
	err := Validator().Struct(submission{RegistrationForm: form, Attachment: att})
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		// InvalidValidationError only happens when handed a non-struct.
		panic(err)
	}

	failed := make(map[string]bool, len(vErrs))
	for _, fe := range vErrs {
		failed[fe.StructField()] = true
	}

	out := make([]string, 0, len(failed))
	for _, field := range fieldOrder {
		if failed[field] {
			out = append(out, messages[field])
		}
	}
	return out
}

func validateTrimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

func validateOneOfFold(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, opt := range strings.Fields(fl.Param()) {
		if strings.EqualFold(val, opt) {
			return true
		}
	}
	return false
}

func validateEmailShape(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateIndianMobile(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// validateMembership requires a membership id of at least five trimmed
// characters, but only from IEEE members.
func validateMembership(sl validator.StructLevel) {
	form := sl.Current().Interface().(models.RegistrationForm)
	if form.IEEEStatus != models.IEEEMember {
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(form.IEEEMembershipID)) < 5 {
		sl.ReportError(form.IEEEMembershipID, "ieeeMembershipId", "IEEEMembershipID", "membership", "")
	}
}
