package models

// RegistrationForm is the multipart submission as sent by the client.
// Every value arrives as a string; normalization happens when a
// TicketRecord is built from it.
type RegistrationForm struct {
	FullName         string `validate:"trimmed_min=2"`
	Email            string `validate:"email_shape"`
	Phone            string `validate:"indian_mobile"`
	College          string `validate:"trimmed_min=2"`
	Branch           string `validate:"trimmed_min=2"`
	Year             string `validate:"oneof=1 2 3 4"`
	Gender           string `validate:"oneof_fold=male female other"`
	Accommodation    string `validate:"oneof=yes no"`
	FoodPreference   string `validate:"oneof=veg non-veg"`
	IEEEStatus       string `validate:"oneof=member non-member"`
	IEEEMembershipID string
	TicketType       string `validate:"oneof=ieee non-ieee"`
	AgreeToTerms     string `validate:"eq=true"`
}

// Attachment is the uploaded payment proof. ContentType is sniffed from the
// file body, not taken from the client's header.
type Attachment struct {
	Filename    string
	ContentType string `validate:"oneof=image/jpeg image/png image/jpg image/webp"`
	Size        int64  `validate:"max=5242880"`
	Data        []byte
}
