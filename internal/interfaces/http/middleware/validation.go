package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/brewline/storefront/internal/domain/catalog"
	"github.com/brewline/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator configures gin's validator: JSON field names in errors and the
// storefront's custom tags
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidations(v)
	}
}

// RegisterValidations installs the tag name function and custom tags on v
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	// amount: a non-negative decimal string such as "19.50"
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, ok := parseAmount(fl.Field().String())
		return ok && !d.IsNegative()
	})
	// modifier: any decimal string, negative allowed
	_ = v.RegisterValidation("modifier", func(fl validator.FieldLevel) bool {
		_, ok := parseAmount(fl.Field().String())
		return ok
	})
}

func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Round(catalog.MaxPricePlaces).Equal(d) {
		return decimal.Decimal{}, false
	}
	return d, true
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
				Tag:     e.Tag(),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "ne":
		return "Must not be " + e.Param()
	case "url":
		return "Invalid URL format"
	case "hexcolor":
		return "Must be a hex color such as #aabbcc"
	case "amount":
		return "Must be a non-negative decimal amount with at most 3 decimal places"
	case "modifier":
		return "Must be a decimal amount with at most 3 decimal places"
	default:
		return "Invalid value"
	}
}
