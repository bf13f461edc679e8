package helpers

import (
	"github.com/gin-gonic/gin"

	"github.com/farellandr/thm-registration/internal/models"
)

// ParseRegistrationForm reads the registration fields as submitted. Values
// are left untouched; normalization happens once the submission is valid.
func ParseRegistrationForm(c *gin.Context) models.RegistrationForm {
	return models.RegistrationForm{
		FullName:         c.PostForm("fullName"),
		Email:            c.PostForm("email"),
		Phone:            c.PostForm("phone"),
		College:          c.PostForm("college"),
		Branch:           c.PostForm("branch"),
		Year:             c.PostForm("year"),
		Gender:           c.PostForm("gender"),
		Accommodation:    c.PostForm("accommodation"),
		FoodPreference:   c.PostForm("foodPreference"),
		IEEEStatus:       c.PostForm("ieeeStatus"),
		IEEEMembershipID: c.PostForm("ieeeMembershipId"),
		TicketType:       c.PostForm("ticketType"),
		AgreeToTerms:     c.PostForm("agreeToTerms"),
	}
}
