package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"

	"mindmap/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their config file keys
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("connstyle", func(fl validator.FieldLevel) bool {
		return domain.StyleID(fl.Field().String()).Valid()
	})
	v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		var lvl zapcore.Level
		return lvl.UnmarshalText([]byte(fl.Field().String())) == nil
	})
	return v
}

// describe turns the first validation failure into a config key and reason
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	key := fe.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}

	switch fe.Tag() {
	case "hexcolor":
		return fmt.Errorf("%s: %q is not a hex color", key, fe.Value())
	case "connstyle":
		return fmt.Errorf("%s: unknown style %q", key, fe.Value())
	case "loglevel":
		return fmt.Errorf("%s: unknown level %q", key, fe.Value())
	case "gte":
		return fmt.Errorf("%s must not be negative", key)
	}
	return fmt.Errorf("%s: failed %s check", key, fe.Tag())
}
