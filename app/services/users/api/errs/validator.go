package errs

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/hamidoujand/user-service/business/domain/user"
	"github.com/hamidoujand/user-service/business/fault"
)

// ValidationMessage is the top level message of a rejected payload.
const ValidationMessage = "Exception in validation attributes"

// AppValidator represents the validator used for model validation
type AppValidator struct {
	validate   *validator.Validate
	translator ut.Translator
	messages   map[string]string
}

// NewAppValidator creates and setup a validator and a translator
func NewAppValidator() (*AppValidator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	//english translator
	translator, _ := ut.New(en.New(), en.New()).GetTranslator("en")

	if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
		return nil, fmt.Errorf("registering default translator: %w", err)
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	//register custom validators
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return nil, fmt.Errorf("registering notblank: %w", err)
	}

	if err := v.RegisterValidation("profile", validProfile); err != nil {
		return nil, fmt.Errorf("registering profile: %w", err)
	}

	profileMsg := "Profile must be one of " + strings.Join(user.ProfileNames(), ", ")

	//keyed by StructField.tag
	messages := map[string]string{
		"Name.notblank":     "Name cannot be empty",
		"Name.min":          "Name must contain between 3 and 50 characters",
		"Name.max":          "Name must contain between 3 and 50 characters",
		"Email.notblank":    "Email cannot be empty",
		"Email.email":       "Invalid email",
		"Password.notblank": "Password cannot be empty",
		"Password.min":      "Password must contain between 6 and 50 characters",
		"Password.max":      "Password must contain between 6 and 50 characters",
		"Profiles.required": "Profiles cannot be null",
		"Profiles.profile":  profileMsg,
	}

	return &AppValidator{
		validate:   v,
		translator: translator,
		messages:   messages,
	}, nil
}

// Check validates val and returns the rejected fields in declaration order.
func (av *AppValidator) Check(val any) ([]fault.FieldError, bool) {
	err := av.validate.Struct(val)
	if err == nil {
		return nil, true
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return nil, false
	}

	fields := make([]fault.FieldError, 0, len(vErrs))

	for _, vErr := range vErrs {
		//"Profiles[1]" shares the message of "Profiles"
		structField := strings.SplitN(vErr.StructField(), "[", 2)[0]

		msg, ok := av.messages[structField+"."+vErr.Tag()]
		if !ok {
			msg = vErr.Translate(av.translator)
		}

		fields = append(fields, fault.FieldError{
			FieldName: vErr.Field(),
			Message:   msg,
		})
	}
	return fields, false
}

//==============================================================================
// Custom Validators

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return !field.IsZero()
	}
	return strings.TrimSpace(field.String()) != ""
}

func validProfile(fl validator.FieldLevel) bool {
	_, err := user.ParseProfile(fl.Field().String())
	return err == nil
}
