package config

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	apperrors "pos-migrate/internal/app/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"env", "yaml"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
		_ = validate.RegisterValidation("postgres_dsn", validatePostgresDSN)
	})
	return validate
}

// validatePostgresDSN accepts postgres:// URLs and keyword/value strings.
func validatePostgresDSN(fl validator.FieldLevel) bool {
	dsn := strings.TrimSpace(fl.Field().String())
	if dsn == "" {
		return false
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		return err == nil && u.Host != ""
	}
	return strings.Contains(dsn, "=")
}

// Validate checks struct tags and turns the first failure into an
// ErrInvalidConfig or ErrMissingConfig error naming the offending setting.
func Validate(v interface{}) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return apperrors.Mark(err, apperrors.ErrInvalidConfig)
	}

	messages := make([]string, 0, len(validationErrs))
	missing := false
	for _, fieldError := range validationErrs {
		name := fieldError.Namespace()
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		switch fieldError.Tag() {
		case "required":
			missing = true
			messages = append(messages, apperrors.RequiredField(name).Error())
		case "min":
			messages = append(messages, apperrors.InvalidField(name, fmt.Sprintf("needs at least %s entries", fieldError.Param())).Error())
		case "postgres_dsn":
			messages = append(messages, apperrors.InvalidField(name, "not a PostgreSQL connection string").Error())
		default:
			messages = append(messages, apperrors.InvalidField(name, fieldError.Tag()).Error())
		}
	}

	sentinel := apperrors.ErrInvalidConfig
	if missing {
		sentinel = apperrors.ErrMissingConfig
	}
	return apperrors.Mark(fmt.Errorf("%s", strings.Join(messages, "; ")), sentinel)
}
