package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"sms-ledger/internal/currencyutils"
	"sms-ledger/internal/dateutils"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyutils.IsCurrencyCode(fl.Field().String())
	})
	_ = v.RegisterValidation("ledgertime", func(fl validator.FieldLevel) bool {
		_, err := dateutils.ParseDateTime(fl.Field().String())
		return err == nil
	})
	return v
}

// validateStruct returns the first failing field as a readable message.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		return fmt.Errorf("field %s failed '%s' validation", fe.Field(), fe.Tag())
	}
	return err
}
