package services

import (
	"errors"
	"fmt"
	"strings"

	"reelhub/internal/core/domain"
	"reelhub/pkg/validation"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

var ErrInvalidSubmission = errors.New("invalid submission")

// SubmissionValidator checks the shape of content submissions before they
// reach storage: field rules, the category cross-field rule and the attached image.
type SubmissionValidator struct {
	validate      *validator.Validate
	maxImageBytes int64
}

func NewSubmissionValidator(maxImageBytes int64) *SubmissionValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(showCategoryRule, domain.ShowSubmission{})
	// The stock url tag admits any scheme; playable links must be http(s).
	_ = v.RegisterValidation("http_url", func(fl validator.FieldLevel) bool {
		return validation.ValidateURL(fl.Field().String()) == nil
	})

	return &SubmissionValidator{
		validate:      v,
		maxImageBytes: maxImageBytes,
	}
}

// showCategoryRule: a Movie needs a playable link, a Series must not carry one.
func showCategoryRule(sl validator.StructLevel) {
	show := sl.Current().Interface().(domain.ShowSubmission)

	switch show.Category {
	case domain.CategoryMovie:
		if show.MovieLink == "" {
			sl.ReportError(show.MovieLink, "MovieLink", "MovieLink", "required_for_movie", "")
		}
	case domain.CategorySeries:
		if show.MovieLink != "" {
			sl.ReportError(show.MovieLink, "MovieLink", "MovieLink", "excluded_for_series", "")
		}
	}
}

func (v *SubmissionValidator) Validate(sub domain.Submission) error {
	if sub == nil {
		return fmt.Errorf("%w: empty payload", ErrInvalidSubmission)
	}
	sub.Normalize()

	if err := v.validate.Struct(sub); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %s", ErrInvalidSubmission, describeFieldErrors(fieldErrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	return v.validateImage(sub.Upload())
}

func (v *SubmissionValidator) validateImage(upload *domain.MediaUpload) error {
	if upload == nil || upload.Size() == 0 {
		return fmt.Errorf("%w: image is required", ErrInvalidSubmission)
	}
	if upload.Size() > v.maxImageBytes {
		return fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidSubmission, v.maxImageBytes)
	}
	if !strings.HasPrefix(strings.ToLower(upload.ContentType), "image/") {
		return fmt.Errorf("%w: image content type must be image/*", ErrInvalidSubmission)
	}

	detected := mimetype.Detect(upload.Data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return fmt.Errorf("%w: image content is not a recognised image format", ErrInvalidSubmission)
	}
	return nil
}

func describeFieldErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "required_for_movie":
			parts = append(parts, fmt.Sprintf("%s is required for movies", fe.Field()))
		case "excluded_for_series":
			parts = append(parts, fmt.Sprintf("%s must be empty for series", fe.Field()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s is too long (max %s)", fe.Field(), fe.Param()))
		case "http_url":
			parts = append(parts, fmt.Sprintf("%s must be a valid http(s) URL", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
