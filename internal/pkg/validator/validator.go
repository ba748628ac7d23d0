package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// Validate struct fields, keyed by json name.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	errors := make(map[string]string, len(verrs))
	for _, err := range verrs {
		errors[err.Field()] = err.Tag()
	}
	return errors
}

func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && validate.Var(s, "required,email") == nil
}
