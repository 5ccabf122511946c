// Package form holds the editable state behind a create/edit dialog. A Form
// is driven by a Schema describing the entity's fields; it seeds itself from
// an existing record (edit) or from defaults (create) and normalizes the
// edited strings into a typed payload on submit. It performs no I/O.
package form

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
	"github.com/clinicdesk/clinic-admin/internal/display"
)

// Kind is the editing widget a field uses.
type Kind int

const (
	Text Kind = iota
	LongText
	Date
	DateTime
	Choice
	Reference
	Decimal
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case LongText:
		return "long-text"
	case Date:
		return "date"
	case DateTime:
		return "date-time"
	case Choice:
		return "choice"
	case Reference:
		return "reference"
	case Decimal:
		return "decimal"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Editing formats expected by date and date-time inputs.
const (
	DateInputLayout     = "2006-01-02"
	DateTimeInputLayout = "2006-01-02T15:04"
)

// Option is one selectable value of a Choice or Reference field.
type Option struct {
	Value string
	Label string
}

// Field describes one editable field. Name is the JSON key of the payload.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Default  string
	Options  []Option
	Source   clinicapi.Endpoint
}

// Schema describes an entity form.
type Schema struct {
	Entity   string
	Identity string
	Fields   []Field
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Mode is the form state.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

var (
	ErrUnknownField     = errors.New("unknown field")
	ErrRequired         = errors.New("required field is empty")
	ErrInvalidReference = errors.New("invalid reference")
	ErrInvalidChoice    = errors.New("value is not one of the options")
)

// FieldError ties a validation failure to a field.
type FieldError struct {
	Field string
	Label string
	Err   error
}

func (e *FieldError) Error() string {
	name := e.Label
	if name == "" {
		name = e.Field
	}
	return fmt.Sprintf("%s: %v", name, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Form is the view-model of one entity dialog.
type Form[T clinicapi.Record] struct {
	schema  Schema
	mode    Mode
	id      *int64
	values  map[string]string
	options map[string][]Option
}

// New returns a form in create mode.
func New[T clinicapi.Record](schema Schema) *Form[T] {
	f := &Form[T]{schema: schema, options: make(map[string][]Option)}
	f.reset()
	return f
}

func (f *Form[T]) reset() {
	f.mode = ModeCreate
	f.id = nil
	f.values = make(map[string]string, len(f.schema.Fields))
	for _, fld := range f.schema.Fields {
		f.values[fld.Name] = fld.Default
	}
}

// Open reseeds the form. A nil record, or one that was never persisted,
// puts the form in create mode; a persisted record puts it in edit mode.
func (f *Form[T]) Open(rec *T) error {
	f.reset()
	if rec == nil {
		return nil
	}

	raw := map[string]interface{}{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &raw,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(*rec); err != nil {
		return fmt.Errorf("seed %s form: %w", f.schema.Entity, err)
	}

	for _, fld := range f.schema.Fields {
		v := editString(fld.Kind, raw[fld.Name])
		if v == "" {
			v = fld.Default
		}
		f.values[fld.Name] = v
	}
	if id, ok := (*rec).Identity(); ok {
		f.mode = ModeEdit
		f.id = &id
	}
	return nil
}

func (f *Form[T]) Mode() Mode { return f.mode }

func (f *Form[T]) Schema() Schema { return f.schema }

// ID returns the identity being edited, if any.
func (f *Form[T]) ID() (int64, bool) {
	if f.id == nil {
		return 0, false
	}
	return *f.id, true
}

// Value returns the editing value of a field.
func (f *Form[T]) Value(name string) string { return f.values[name] }

// Values returns a copy of all editing values.
func (f *Form[T]) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Set edits a field. Choice fields accept an option value or its label
// (case-insensitive) and store the value.
func (f *Form[T]) Set(name, value string) error {
	fld, ok := f.schema.Field(name)
	if !ok {
		return &FieldError{Field: name, Err: ErrUnknownField}
	}
	if fld.Kind == Choice && value != "" {
		opt, ok := matchOption(fld.Options, value)
		if !ok {
			return &FieldError{Field: name, Label: fld.Label, Err: ErrInvalidChoice}
		}
		value = opt.Value
	}
	f.values[name] = value
	return nil
}

// SetOptions supplies the selectable values of a Reference field, typically
// built from a lookup collection.
func (f *Form[T]) SetOptions(name string, opts []Option) error {
	fld, ok := f.schema.Field(name)
	if !ok || fld.Kind != Reference {
		return &FieldError{Field: name, Err: ErrUnknownField}
	}
	f.options[name] = append([]Option(nil), opts...)
	return nil
}

// Options returns the selectable values of a Choice or Reference field.
func (f *Form[T]) Options(name string) []Option {
	fld, ok := f.schema.Field(name)
	if !ok {
		return nil
	}
	if fld.Kind == Choice {
		return fld.Options
	}
	return f.options[name]
}

// Label resolves the current value of a field to the label of its option.
// Values with no matching option are returned unchanged.
func (f *Form[T]) Label(name string) string {
	v := f.values[name]
	for _, o := range f.Options(name) {
		if o.Value == v {
			return o.Label
		}
	}
	return v
}

// Validate checks required fields.
func (f *Form[T]) Validate() error {
	var errs []error
	for _, fld := range f.schema.Fields {
		if fld.Required && strings.TrimSpace(f.values[fld.Name]) == "" {
			errs = append(errs, &FieldError{Field: fld.Name, Label: fld.Label, Err: ErrRequired})
		}
	}
	return errors.Join(errs...)
}

// Submit validates and normalizes the form into a payload. The identity is
// attached only in edit mode. The form itself is left untouched.
func (f *Form[T]) Submit() (T, error) {
	var out T
	if err := f.Validate(); err != nil {
		return out, err
	}

	payload := make(map[string]interface{}, len(f.schema.Fields)+1)
	for _, fld := range f.schema.Fields {
		v, err := normalize(fld, f.values[fld.Name])
		if err != nil {
			return out, err
		}
		payload[fld.Name] = v
	}
	if f.mode == ModeEdit && f.id != nil {
		payload[f.schema.Identity] = *f.id
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(payload); err != nil {
		return out, fmt.Errorf("build %s payload: %w", f.schema.Entity, err)
	}
	return out, nil
}

func normalize(fld Field, raw string) (interface{}, error) {
	v := strings.TrimSpace(raw)
	switch fld.Kind {
	case Reference:
		if v == "" {
			if fld.Required {
				return nil, &FieldError{Field: fld.Name, Label: fld.Label, Err: ErrInvalidReference}
			}
			return nil, nil
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			if fld.Required {
				return nil, &FieldError{Field: fld.Name, Label: fld.Label, Err: ErrInvalidReference}
			}
			return nil, nil
		}
		return id, nil
	case Decimal:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			return float64(0), nil
		}
		return n, nil
	case Date, DateTime:
		if v == "" {
			return nil, nil
		}
		return v, nil
	default:
		return raw, nil
	}
}

// editString converts a record value into its editing representation.
func editString(kind Kind, v interface{}) string {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}

	var s string
	switch rv.Kind() {
	case reflect.String:
		s = rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s = strconv.FormatInt(rv.Int(), 10)
	case reflect.Float32, reflect.Float64:
		s = strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	default:
		s = fmt.Sprint(rv.Interface())
	}

	switch kind {
	case Date:
		if t, ok := display.ParseTime(s); ok {
			return t.Format(DateInputLayout)
		}
	case DateTime:
		if t, ok := display.ParseTime(s); ok {
			return t.Format(DateTimeInputLayout)
		}
	case Reference:
		if s == "0" {
			return ""
		}
	}
	return s
}

func matchOption(opts []Option, value string) (Option, bool) {
	for _, o := range opts {
		if o.Value == value {
			return o, true
		}
	}
	for _, o := range opts {
		if strings.EqualFold(o.Label, value) || strings.EqualFold(o.Value, value) {
			return o, true
		}
	}
	return Option{}, false
}
