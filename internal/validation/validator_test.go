package validation

import (
	"strings"
	"testing"

	"github.com/farellandr/thm-registration/internal/models"
)

func validForm() models.RegistrationForm {
	return models.RegistrationForm{
		FullName:       "Jane Doe",
		Email:          "jane@x.com",
		Phone:          "+919876543210",
		College:        "ABC",
		Branch:         "CS",
		Year:           "2",
		Gender:         "female",
		Accommodation:  "no",
		FoodPreference: "veg",
		IEEEStatus:     "non-member",
		TicketType:     "non-ieee",
		AgreeToTerms:   "true",
	}
}

func validAttachment() *models.Attachment {
	return &models.Attachment{
		Filename:    "proof.jpg",
		ContentType: "image/jpeg",
		Size:        2 * 1024 * 1024,
	}
}

func containsMessage(msgs []string, fragment string) bool {
	for _, m := range msgs {
		if strings.Contains(strings.ToLower(m), strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}

func TestValidateAcceptsValidSubmission(t *testing.T) {
	if errs := Validate(validForm(), validAttachment()); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateRejectsFieldViolations(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.RegistrationForm)
		fragment string
	}{
		{"short name", func(f *models.RegistrationForm) { f.FullName = " J " }, "full name"},
		{"missing email", func(f *models.RegistrationForm) { f.Email = "" }, "email"},
		{"email without tld", func(f *models.RegistrationForm) { f.Email = "jane@x" }, "email"},
		{"email with space", func(f *models.RegistrationForm) { f.Email = "ja ne@x.com" }, "email"},
		{"phone leading five", func(f *models.RegistrationForm) { f.Phone = "+915876543210" }, "phone"},
		{"phone without country code", func(f *models.RegistrationForm) { f.Phone = "9876543210" }, "phone"},
		{"phone too long", func(f *models.RegistrationForm) { f.Phone = "+9198765432101" }, "phone"},
		{"short college", func(f *models.RegistrationForm) { f.College = "A" }, "college"},
		{"short branch", func(f *models.RegistrationForm) { f.Branch = "" }, "branch"},
		{"year out of range", func(f *models.RegistrationForm) { f.Year = "5" }, "year"},
		{"unknown gender", func(f *models.RegistrationForm) { f.Gender = "robot" }, "gender"},
		{"accommodation casing", func(f *models.RegistrationForm) { f.Accommodation = "Yes" }, "accommodation"},
		{"food preference", func(f *models.RegistrationForm) { f.FoodPreference = "vegan" }, "food preference"},
		{"ieee status", func(f *models.RegistrationForm) { f.IEEEStatus = "" }, "ieee status"},
		{"ticket type", func(f *models.RegistrationForm) { f.TicketType = "vip" }, "ticket type"},
		{"terms false", func(f *models.RegistrationForm) { f.AgreeToTerms = "false" }, "terms"},
		{"terms missing", func(f *models.RegistrationForm) { f.AgreeToTerms = "" }, "terms"},
		{"member without id", func(f *models.RegistrationForm) { f.IEEEStatus = "member" }, "membership"},
		{"member short id", func(f *models.RegistrationForm) {
			f.IEEEStatus = "member"
			f.IEEEMembershipID = "  1234  "
		}, "membership"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			errs := Validate(form, validAttachment())
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if !containsMessage(errs, tt.fragment) {
				t.Fatalf("expected a message about %q, got %v", tt.fragment, errs)
			}
		})
	}
}

func TestValidateGenderIsCaseInsensitive(t *testing.T) {
	form := validForm()
	form.Gender = "FeMale"
	if errs := Validate(form, validAttachment()); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateMembershipIDOnlyForMembers(t *testing.T) {
	form := validForm()
	form.IEEEMembershipID = "x"
	if errs := Validate(form, validAttachment()); errs != nil {
		t.Fatalf("non-member with junk id should pass, got %v", errs)
	}

	form.IEEEStatus = "member"
	form.IEEEMembershipID = "98765432"
	if errs := Validate(form, validAttachment()); errs != nil {
		t.Fatalf("member with id should pass, got %v", errs)
	}
}

func TestValidateAttachment(t *testing.T) {
	if errs := Validate(validForm(), nil); !containsMessage(errs, "required") {
		t.Fatalf("expected missing screenshot error, got %v", errs)
	}

	att := validAttachment()
	att.ContentType = "image/gif"
	if errs := Validate(validForm(), att); !containsMessage(errs, "jpeg") {
		t.Fatalf("expected content type error, got %v", errs)
	}

	att = validAttachment()
	att.Size = MaxScreenshotBytes + 1
	if errs := Validate(validForm(), att); !containsMessage(errs, "5MB") {
		t.Fatalf("expected size error, got %v", errs)
	}

	att = validAttachment()
	att.Size = MaxScreenshotBytes
	att.ContentType = "image/webp"
	if errs := Validate(validForm(), att); errs != nil {
		t.Fatalf("expected webp at the limit to pass, got %v", errs)
	}
}

func TestValidateReportsEveryViolationInOrder(t *testing.T) {
	errs := Validate(models.RegistrationForm{}, nil)

	// Every field except the membership id (not a member) fails.
	if len(errs) != 13 {
		t.Fatalf("expected 13 errors, got %d: %v", len(errs), errs)
	}
	if errs[0] != messages["FullName"] {
		t.Fatalf("expected full name first, got %q", errs[0])
	}
	if errs[len(errs)-1] != messages["Attachment"] {
		t.Fatalf("expected attachment last, got %q", errs[len(errs)-1])
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	form := validForm()
	form.Phone = "123"
	form.Year = "0"
	first := Validate(form, nil)
	second := Validate(form, nil)
	if strings.Join(first, "|") != strings.Join(second, "|") {
		t.Fatalf("expected identical verdicts, got %v and %v", first, second)
	}
}

func TestNewRegistersCustomRules(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	tests := []struct {
		value string
		tag   string
	}{
		{"Jane", "trimmed_min=2"},
		{"Female", "oneof_fold=male female other"},
		{"jane@x.com", "email_shape"},
		{"+919876543210", "indian_mobile"},
	}
	for _, tt := range tests {
		if err := v.Var(tt.value, tt.tag); err != nil {
			t.Fatalf("%s: expected %q to pass, got %v", tt.tag, tt.value, err)
		}
	}
}
