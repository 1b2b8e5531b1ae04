package validation

import (
	"regexp"

	"sourcing-system/internal/entities"

	"github.com/go-playground/validator/v10"
)

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// registerRules регистрирует кастомные правила для DTO.
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("currency_code", isCurrencyCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("relationship", isRelationship); err != nil {
		return err
	}
	if err := v.RegisterValidation("role_name", isKnownRole); err != nil {
		return err
	}
	return nil
}

func isCurrencyCode(fl validator.FieldLevel) bool {
	return currencyRe.MatchString(fl.Field().String())
}

func isRelationship(fl validator.FieldLevel) bool {
	return entities.Relationship(fl.Field().String()).Valid()
}

func isKnownRole(fl validator.FieldLevel) bool {
	_, ok := entities.NormalizeRole(fl.Field().String())
	return ok
}
