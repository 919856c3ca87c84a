package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ValidationError describes the first schema violation found in a record.
type ValidationError struct {
	Index   int
	Path    []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("record %d: %s", e.Index, e.Message)
	}
	return fmt.Sprintf("record %d: %s: %s", e.Index, strings.Join(e.Path, " -> "), e.Message)
}

// Property names in schema order; violations are reported in this order.
var (
	sessionFields = []string{
		"session_id", "date", "venue", "source_sheet", "ingested_at", "events", "requests",
	}
	eventFields = map[EventType][]string{
		EventBreak: {"position", "type"},
		EventSong:  {"position", "type", "page", "song", "artist", "requested_by_code"},
	}
)

// sessionRecord and eventRecord carry the value rules of the dataset schema.
// Presence and unknown properties are checked before decoding into them.
type sessionRecord struct {
	SessionID   string            `json:"session_id" validate:"notblank"`
	Date        string            `json:"date" validate:"datetime=2006-01-02"`
	Venue       *string           `json:"venue"`
	SourceSheet string            `json:"source_sheet"`
	IngestedAt  string            `json:"ingested_at" validate:"datetime=2006-01-02T15:04:05Z07:00"`
	Events      []json.RawMessage `json:"events" validate:"required"`
	Requests    []json.RawMessage `json:"requests" validate:"required"`
}

type eventRecord struct {
	Position    int       `json:"position" validate:"min=1"`
	Type        EventType `json:"type"`
	Page        string    `json:"page"`
	Song        string    `json:"song"`
	Artist      string    `json:"artist"`
	RequestedBy *string   `json:"requested_by_code" validate:"omitnil,oneof=A G O"`
}

var schemaValidator = newSchemaValidator()

func newSchemaValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		return name
	})
	return v
}

// ValidateRecord checks one encoded session against the dataset schema.
// index is reported back in the error to locate the record in its file.
func ValidateRecord(index int, data []byte) error {
	fail := func(msg string, path ...string) error {
		return &ValidationError{Index: index, Path: path, Message: msg}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fail("expected a JSON object: " + err.Error())
	}
	if key, msg := checkProperties(raw, sessionFields); key != "" {
		return fail(msg, key)
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fail(decodeMessage(err), decodeField(err)...)
	}
	if err := schemaValidator.Struct(record); err != nil {
		return fail(ruleMessage(err), ruleField(err)...)
	}

	for i, rawEvent := range record.Events {
		at := func(key ...string) []string {
			return append([]string{"events", fmt.Sprint(i)}, key...)
		}
		var props map[string]json.RawMessage
		if err := json.Unmarshal(rawEvent, &props); err != nil || props == nil {
			return fail("must be an object", at()...)
		}
		var typ EventType
		if err := json.Unmarshal(props["type"], &typ); err != nil {
			return fail("must be a string", at("type")...)
		}
		fields, ok := eventFields[typ]
		if !ok {
			return fail(fmt.Sprintf("unknown event type %q", typ), at("type")...)
		}
		if key, msg := checkProperties(props, fields); key != "" {
			return fail(msg, at(key)...)
		}

		var event eventRecord
		if err := json.Unmarshal(rawEvent, &event); err != nil {
			return fail(decodeMessage(err), at(decodeField(err)...)...)
		}
		if err := schemaValidator.Struct(event); err != nil {
			return fail(ruleMessage(err), at(ruleField(err)...)...)
		}
		if event.Position != i+1 {
			return fail(fmt.Sprintf("position %d, want %d", event.Position, i+1), at("position")...)
		}
	}
	return nil
}

// checkProperties returns the first missing property in schema order, then
// the first unexpected one in lexical order.
func checkProperties(props map[string]json.RawMessage, fields []string) (string, string) {
	for _, key := range fields {
		if _, ok := props[key]; !ok {
			return key, "required property missing"
		}
	}
	var extra []string
	for key := range props {
		if !slices.Contains(fields, key) {
			extra = append(extra, key)
		}
	}
	if len(extra) == 0 {
		return "", ""
	}
	sort.Strings(extra)
	return extra[0], "unexpected property"
}

func decodeField(err error) []string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []string{typeErr.Field}
	}
	return nil
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("must be %s, got %s", jsonKind(typeErr.Type), typeErr.Value)
	}
	return err.Error()
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int64:
		return "an integer"
	case reflect.Slice:
		return "an array"
	}
	return t.String()
}

func firstFieldError(err error) (validator.FieldError, bool) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return errs[0], true
	}
	return nil, false
}

func ruleField(err error) []string {
	if fe, ok := firstFieldError(err); ok {
		return []string{fe.Field()}
	}
	return nil
}

func ruleMessage(err error) string {
	fe, ok := firstFieldError(err)
	if !ok {
		return err.Error()
	}
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return "must be an array"
		}
		return "must not be empty"
	case "notblank":
		return "must be a non-empty string"
	case "datetime":
		if fe.Field() == "date" {
			return "must be a YYYY-MM-DD date"
		}
		return "must be an ISO-8601 timestamp"
	case "oneof":
		value := fe.Value()
		if p, ok := value.(*string); ok && p != nil {
			value = *p
		}
		return fmt.Sprintf("%q is not one of %s", fmt.Sprint(value), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return "must be at least " + fe.Param()
	}
	return fmt.Sprintf("failed %q rule", fe.Tag())
}
