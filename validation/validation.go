package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/meghashyamc/docsearch/services/viewer"
)

type Validator struct {
	validator                *validator.Validate
	logger                   logger.Logger
	tagValidationDetailsOnce sync.Once
	tagValidationDetailsMap  map[string]tagValidationDetails
}

type tagValidationDetails struct {
	validatorFunc validator.Func
	err           error
}

func New(logger logger.Logger) (*Validator, error) {
	validator := &Validator{validator: validator.New(), logger: logger}
	validator.validator.RegisterTagNameFunc(useJSONFieldNames)
	if err := validator.registerCustomValidatorsForTags(); err != nil {
		return nil, err
	}

	return validator, nil
}

func (v *Validator) Validate(i any) error {

	if err := v.validator.Struct(i); err != nil {
		v.logger.Warn("validation failed", "err", err.Error())
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {

			tagValidationDetails, ok := v.getTagValidationDetails()[validationErrs[0].Tag()]
			if ok {
				return tagValidationDetails.err
			}

			switch validationErrs[0].Tag() {
			case "required":
				return fmt.Errorf("missing required field '%s'", validationErrs[0].Field())

			case "min", "max":
				return fmt.Errorf("value or length of field '%s' is not in the expected range", validationErrs[0].Field())

			}
		}
		return errors.New("invalid request")
	}
	return nil
}
func (v *Validator) getTagValidationDetails() map[string]tagValidationDetails {
	v.tagValidationDetailsOnce.Do(func() {
		v.tagValidationDetailsMap = map[string]tagValidationDetails{
			"valid_query":     {validatorFunc: v.isValidQuery, err: errors.New("invalid query")},
			"valid_view_mode": {validatorFunc: v.isValidViewMode, err: errors.New("invalid view mode")},
		}
	})
	return v.tagValidationDetailsMap
}

func (v *Validator) registerCustomValidatorsForTags() error {

	tagValidationDetailsMap := v.getTagValidationDetails()

	for tag, tagValidationDetails := range tagValidationDetailsMap {
		if err := v.validator.RegisterValidation(tag, tagValidationDetails.validatorFunc); err != nil {
			v.logger.Error("failed to register custom validator function", "err", err.Error())
			return err
		}
	}
	return nil
}

func useJSONFieldNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// isValidQuery accepts the empty query, which searches nothing. Length is
// enforced by the search engine.
func (v *Validator) isValidQuery(fl validator.FieldLevel) bool {
	query := fl.Field().String()
	if !utf8.ValidString(query) {
		v.logger.Warn("query is not valid UTF-8")
		return false
	}
	if strings.ContainsRune(query, 0) {
		v.logger.Warn("query has null byte")
		return false
	}

	return true
}

func (v *Validator) isValidViewMode(fl validator.FieldLevel) bool {
	mode := fl.Field().String()
	if len(mode) == 0 {
		return true
	}
	if !viewer.Mode(mode).IsValid() {
		v.logger.Warn("unknown view mode", "mode", mode)
		return false
	}

	return true
}
