// Package records resolves the identifier of an application record.
package records

import (
	"fmt"
	"reflect"
)

// IDField is the struct field consulted when a record does not implement
// Identifier.
const IDField = "Id"

// Identifier is implemented by records that expose their identifier
// directly. Prefer it over the reflection fallback in ID.
type Identifier interface {
	RecordID() string
}

// ID returns the identifier of record.
//
// Records implementing Identifier are asked directly. Otherwise ID
// dereferences pointers and reads the exported struct field named Id. The
// field is dereferenced too: strings are returned as-is, other kinds are
// formatted with fmt.Sprint. ok is false when record or its Id is nil, or
// when there is no readable Id field. ID never panics.
func ID(record any) (id string, ok bool) {
	if record == nil {
		return "", false
	}

	v := reflect.ValueOf(record)
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return "", false
	}
	if r, isID := record.(Identifier); isID {
		return r.RecordID(), true
	}

	v, ok = deref(v)
	if !ok || v.Kind() != reflect.Struct {
		return "", false
	}

	sf, found := v.Type().FieldByName(IDField)
	if !found || !sf.IsExported() {
		return "", false
	}
	f, err := v.FieldByIndexErr(sf.Index)
	if err != nil {
		// Id is promoted through a nil embedded pointer.
		return "", false
	}

	f, ok = deref(f)
	if !ok {
		return "", false
	}
	if f.Kind() == reflect.String {
		return f.String(), true
	}
	return fmt.Sprint(f.Interface()), true
}

// deref follows pointers and interfaces. ok is false on a nil link.
func deref(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, true
}
