// Package validation holds the single rule-set for submission requests.
// The same Validator runs in the HTTP handlers (authoritative check) and in
// the intake client (optimistic pre-flight check); its rules are derived
// from the validate tags of schemas.SubmissionRequest.
package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/Bessima/botform-intake/internal/customerror"
	"github.com/Bessima/botform-intake/internal/handlers/schemas"
	"github.com/go-playground/validator/v10"
)

const (
	MessageServerAssigned = "This field is assigned by the server"
	MessageInvalidBody    = "Request body must be a JSON object"
	bodyField             = "body"
)

// fieldMessages overrides the per-tag default for a specific field.
var fieldMessages = map[string]string{
	"requesterName.min":    "Name must be at least 2 characters",
	"requesterEmail.email": "Please enter a valid email address",
}

var tagMessages = map[string]string{
	"required": "Required",
	"min":      "Too short",
	"email":    "Invalid email",
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return &Validator{validate: v}
}

// Parse decodes a raw request body and validates it. Every problem found is
// reported in the returned *customerror.ValidationError, keyed by JSON field.
func (v *Validator) Parse(body []byte) (*schemas.SubmissionRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, customerror.NewValidationError(map[string]string{bodyField: MessageInvalidBody})
	}

	fields := make(map[string]string)
	for _, name := range schemas.ServerAssignedFields {
		if _, ok := raw[name]; ok {
			fields[name] = MessageServerAssigned
		}
	}

	req := schemas.SubmissionRequest{}
	value := reflect.ValueOf(&req).Elem()
	for i := 0; i < value.NumField(); i++ {
		name := jsonName(value.Type().Field(i))
		data, ok := raw[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(data, value.Field(i).Addr().Interface()); err != nil {
			fields[name] = "Expected " + describeType(value.Type().Field(i).Type)
		}
	}

	if err := v.collect(req, fields); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, customerror.NewValidationError(fields)
	}
	return &req, nil
}

// ValidateRequest checks an already typed request.
func (v *Validator) ValidateRequest(req schemas.SubmissionRequest) error {
	fields := make(map[string]string)
	if err := v.collect(req, fields); err != nil {
		return err
	}
	if len(fields) > 0 {
		return customerror.NewValidationError(fields)
	}
	return nil
}

func (v *Validator) collect(req schemas.SubmissionRequest, fields map[string]string) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	for _, fe := range validationErrors {
		if _, exists := fields[fe.Field()]; exists {
			continue
		}
		fields[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return nil
}

// Rules describes the rule-set in a serializable form.
func (v *Validator) Rules() schemas.SchemaResponse {
	t := reflect.TypeOf(schemas.SubmissionRequest{})
	rules := make([]schemas.FieldRule, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		rule := schemas.FieldRule{
			Field: jsonName(field),
			Type:  describeType(field.Type),
		}
		if tag := field.Tag.Get("validate"); tag != "" {
			for _, r := range strings.Split(tag, ",") {
				if r == "required" {
					rule.Required = true
				}
				rule.Rules = append(rule.Rules, r)
				tagName, _, _ := strings.Cut(r, "=")
				rule.Messages = append(rule.Messages, message(rule.Field, tagName))
			}
		}
		rules = append(rules, rule)
	}

	serverAssigned := make([]string, len(schemas.ServerAssignedFields))
	copy(serverAssigned, schemas.ServerAssignedFields)

	return schemas.SchemaResponse{Fields: rules, ServerAssigned: serverAssigned}
}

func message(field, tag string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := tagMessages[tag]; ok {
		return msg
	}
	return "Invalid value"
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func describeType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Ptr:
		return describeType(t.Elem())
	case reflect.Slice:
		return "array of " + describeType(t.Elem()) + "s"
	default:
		return t.Kind().String()
	}
}
