package errs

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors represents a collection of field errors.
type FieldErrors []FieldError

// NewFieldErrors creates a field errors value with a single field.
func NewFieldErrors(field string, err error) FieldErrors {
	return FieldErrors{{Field: field, Err: err.Error()}}
}

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, fld := range fe {
		msgs = append(msgs, fld.Field+": "+fld.Err)
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the field errors keyed by field name.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, fld := range fe {
		m[fld.Field] = fld.Err
	}
	return m
}

// validate holds the settings and caches for validating request struct values.
var validate *validator.Validate

// translator is a cache of locale and translation information.
var translator ut.Translator

// messages overrides the stock translations where a friendlier sentence
// exists.
var messages = map[string]string{
	"email":    "Please provide a valid email address",
	"required": "{0} is required",
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")

	en_translations.RegisterDefaultTranslations(validate, translator)

	for tag, text := range messages {
		registerMessage(tag, text)
	}

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func registerMessage(tag, text string) {
	_ = validate.RegisterTranslation(tag, translator,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return t
		},
	)
}

// FieldMessager is implemented by request models that word some failures
// themselves. Keys are "<json field>.<tag>", for example "email.required".
type FieldMessager interface {
	FieldMessages() map[string]string
}

// Check validates the provided model against its declared tags. Messages
// supplied through FieldMessager replace the translated ones.
func Check(val any) error {
	if err := validate.Struct(val); err != nil {
		var verrors validator.ValidationErrors
		if !errors.As(err, &verrors) {
			return err
		}

		var overrides map[string]string
		if fm, ok := val.(FieldMessager); ok {
			overrides = fm.FieldMessages()
		}

		fields := make(FieldErrors, 0, len(verrors))
		for _, verror := range verrors {
			msg, ok := overrides[verror.Field()+"."+verror.Tag()]
			if !ok {
				msg = verror.Translate(translator)
			}
			fields = append(fields, FieldError{
				Field: verror.Field(),
				Err:   msg,
			})
		}

		return fields
	}

	return nil
}
