package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/thm-registration/internal/helpers"
	"github.com/farellandr/thm-registration/internal/imagestore"
	"github.com/farellandr/thm-registration/internal/intake"
	"github.com/farellandr/thm-registration/internal/middleware"
	"github.com/farellandr/thm-registration/internal/models"
	"github.com/farellandr/thm-registration/internal/store"
)

const ScreenshotField = "transactionScreenshot"

func Register(c *gin.Context) {
	pipeline := middleware.GetIntake(c)
	if pipeline == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Registration failed", "Registration service not available.")
		return
	}

	// The file is read first so an oversized body is reported as such rather
	// than as a form with every field missing.
	var att *models.Attachment
	fileHeader, err := c.FormFile(ScreenshotField)
	switch {
	case err == nil:
		att, err = helpers.ReadImageFile(fileHeader)
		if err != nil {
			var fcErr *helpers.FileConstraintError
			if errors.As(err, &fcErr) {
				helpers.RespondWithError(c, http.StatusBadRequest, "Invalid file", fcErr.Reason)
				return
			}
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid file", "Unable to read the uploaded file.")
			return
		}
	case isBodyTooLarge(err):
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid file", "file size exceeds maximum limit of 5 MB")
		return
	}

	form := helpers.ParseRegistrationForm(c)

	result, err := pipeline.Register(c.Request.Context(), form, att)
	if err != nil {
		respondWithIntakeError(c, err)
		return
	}

	helpers.RespondWithData(c, http.StatusCreated, "Registration successful", result)
}

func GetRegistration(c *gin.Context) {
	pipeline := middleware.GetIntake(c)
	if pipeline == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve registration", "Registration service not available.")
		return
	}

	record, err := pipeline.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve registration", err.Error())
		return
	}
	if record == nil {
		helpers.RespondWithMessage(c, http.StatusNotFound, "Registration not found")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, "Registration found", record)
}

func respondWithIntakeError(c *gin.Context, err error) {
	var (
		validationErr *intake.ValidationError
		dupEmailErr   *intake.DuplicateEmailError
		dupKeyErr     *store.DuplicateKeyError
		uploadErr     *imagestore.UploadError
	)
	status := intake.HTTPStatus(err)

	switch {
	case errors.As(err, &validationErr):
		helpers.RespondWithValidationErrors(c, validationErr.Violations)
	case errors.As(err, &dupEmailErr):
		helpers.RespondWithError(c, status, "Email already registered", dupEmailErr.Error())
	case errors.As(err, &dupKeyErr):
		if dupKeyErr.Field == store.FieldEmail {
			helpers.RespondWithError(c, status, "Email already registered", "a registration with this email already exists")
			return
		}
		helpers.RespondWithError(c, status, "Duplicate registration", "a registration with this ticket id already exists, please try again")
	case errors.As(err, &uploadErr):
		helpers.RespondWithError(c, status, "Registration failed", uploadErr.Error())
	default:
		helpers.RespondWithError(c, status, "Registration failed", err.Error())
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
