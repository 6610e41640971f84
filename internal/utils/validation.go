package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"hospital-app-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the custom tags used in request structs to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			return models.ValidMobile(fl.Field().String())
		})
		_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
			return models.Department(fl.Field().String()).Valid()
		})
	})
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "mobile":
			messages = append(messages, fmt.Sprintf("%s must be 9 to 15 digits, optionally prefixed by +", e.Field()))
		case "oneof", "department":
			messages = append(messages, fmt.Sprintf("%s has an unsupported value %q", e.Field(), e.Value()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed on the '%s' rule", e.Field(), e.Tag()))
		}
	}
	return strings.Join(messages, ", ")
}

// BindAndValidate binds the JSON body into obj and runs its binding tags.
// On failure it writes a 400 response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	RegisterValidators()
	if err := c.ShouldBindJSON(obj); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			code := "InvalidInput"
			for _, e := range errs {
				if e.Tag() == "required" {
					code = "MissingRequiredField"
					break
				}
			}
			Fail(c, http.StatusBadRequest, code, "Validation failed: "+FormatValidationError(err))
			return false
		}
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}
