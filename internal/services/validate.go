package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tausug-confession/confession-backend/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	return v
}

// validateStruct runs the struct's validate tags and turns failures into a
// KindValidation error whose message is the first failing field.
func validateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Kind: KindValidation, Message: "Invalid request", Err: err}
	}
	out := &Error{Kind: KindValidation, Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		msg := fieldMessage(fe)
		if out.Message == "" {
			out.Message = msg
		}
		out.Fields[fieldPath(fe)] = msg
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	// drop the struct name prefix: "CreateConfessionRequest.tags[0]" -> "tags[0]"
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	name := fieldPath(fe)
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "url":
		return name + " must be a valid URL"
	case "uuid":
		return name + " must be a valid id"
	case "username":
		return name + " may only contain letters, numbers and underscores"
	case "category":
		return fmt.Sprintf("%s must be one of %s", name, joinCategories())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must have at least %s items", name, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must have at most %s items", name, fe.Param())
	}
	return name + " is invalid"
}

func joinCategories() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
