package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"
)

// Field kinds rendered by the portal templates.
const (
	KindText     = "text"
	KindTel      = "tel"
	KindEmail    = "email"
	KindNumber   = "number"
	KindSelect   = "select"
	KindPassword = "password"
)

// Field describes one input of a form.
type Field struct {
	Name     string
	Label    string
	Kind     string
	Required bool
	Options  []string
}

// Schema is the ordered list of inputs declared by a form struct.
type Schema struct {
	Fields []Field
}

var schemaCache sync.Map // reflect.Type -> Schema

// Describe builds the schema of a form struct from its tags:
//
//	json:"loanAmount" validate:"required" label:"Loan Amount" kind:"number" options:"a|b"
//
// Only string fields carrying a label tag are inputs. Describe panics when form
// is not a struct or pointer to struct.
func Describe(form any) Schema {
	typ := reflect.TypeOf(form)
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("validation.Describe: %T is not a struct", form))
	}

	if cached, ok := schemaCache.Load(typ); ok {
		return cached.(Schema)
	}

	var schema Schema
	for i := 0; i < typ.NumField(); i++ {
		structField := typ.Field(i)
		label, ok := structField.Tag.Lookup("label")
		if !ok || structField.Type.Kind() != reflect.String {
			continue
		}
		name := fieldName(structField)
		if name == "" {
			continue
		}

		field := Field{
			Name:     name,
			Label:    label,
			Kind:     structField.Tag.Get("kind"),
			Required: hasRule(structField.Tag.Get("validate"), "required"),
		}
		if field.Kind == "" {
			field.Kind = KindText
		}
		if options := structField.Tag.Get("options"); options != "" {
			field.Options = strings.Split(options, "|")
		}
		schema.Fields = append(schema.Fields, field)
	}

	schemaCache.Store(typ, schema)
	return schema
}

// Field looks up an input by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Required returns the names of the required inputs in declaration order.
func (s Schema) Required() []string {
	var names []string
	for _, field := range s.Fields {
		if field.Required {
			names = append(names, field.Name)
		}
	}
	return names
}

// Bind copies submitted form values into the string fields of dst, matched by
// json key. Values are taken as entered; absent keys leave the field empty.
func Bind(values url.Values, dst any) error {
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind form: expected pointer to struct, got %T", dst)
	}
	target = target.Elem()
	typ := target.Type()

	for i := 0; i < typ.NumField(); i++ {
		structField := typ.Field(i)
		if !structField.IsExported() || structField.Type.Kind() != reflect.String {
			continue
		}
		if _, ok := structField.Tag.Lookup("label"); !ok {
			continue
		}
		name := fieldName(structField)
		if name == "" {
			continue
		}
		target.Field(i).SetString(values.Get(name))
	}
	return nil
}

// Values returns the current input values of a form keyed by field name, for
// re-rendering a form with what the user entered.
func Values(form any) map[string]string {
	value := reflect.ValueOf(form)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return map[string]string{}
		}
		value = value.Elem()
	}

	result := make(map[string]string)
	for _, field := range Describe(form).Fields {
		for i := 0; i < value.NumField(); i++ {
			if fieldName(value.Type().Field(i)) == field.Name {
				result[field.Name] = value.Field(i).String()
				break
			}
		}
	}
	return result
}

func hasRule(tag, rule string) bool {
	for _, part := range strings.Split(tag, ",") {
		if strings.TrimSpace(part) == rule {
			return true
		}
	}
	return false
}
