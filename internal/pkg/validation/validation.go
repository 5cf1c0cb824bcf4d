package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names (items[0].price) instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates dst and converts validator errors into *domain.ValidationError
func Struct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &domain.ValidationError{Fields: map[string]string{"_": err.Error()}}
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldKey(fe.Namespace())] = messageForTag(fe.Tag(), fe.Param())
	}
	return &domain.ValidationError{Fields: fields}
}

// DecodeStrict decodes a JSON body rejecting unknown properties, then validates it
func DecodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	// trailing garbage after the first JSON value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &domain.ValidationError{Fields: map[string]string{"_": "body must contain a single JSON object"}}
	}

	return Struct(dst)
}

func decodeError(err error) error {
	msg := err.Error()
	if field, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		field = strings.Trim(field, `"`)
		return &domain.ValidationError{Fields: map[string]string{field: fmt.Sprintf("property %s should not exist", field)}}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		key := typeErr.Field
		if key == "" {
			key = "_"
		}
		return &domain.ValidationError{Fields: map[string]string{key: "must be a " + typeErr.Type.String()}}
	}

	return &domain.ValidationError{Fields: map[string]string{"_": "invalid JSON body"}}
}

// fieldKey strips the root struct name: PaymentSession.items[0].price -> items[0].price
func fieldKey(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "min":
		return "must contain at least " + param + " elements"
	case "gt":
		return "must be greater than " + param
	default:
		return "is invalid"
	}
}
