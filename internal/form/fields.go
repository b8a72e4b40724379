package form

import (
	"reflect"
	"strings"
)

// jsonFieldName resolves a struct field to its wire name so validation
// messages line up with what the UI binds to.
func jsonFieldName(v any, structField string) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	field, ok := t.FieldByName(structField)
	if !ok {
		return structField
	}

	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return structField
	}

	if comma := strings.IndexByte(tag, ','); comma >= 0 {
		tag = tag[:comma]
	}

	return tag
}
