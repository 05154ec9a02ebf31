package barter

import "reflect"

// assign copies the value of src into dst, which must be a pointer to a
// value of the same type (or a pointer to a pointer, when src is a
// pointer). Returns false if types do not match.
func assign(src, dst interface{}) bool {
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return false
	}
	sv := reflect.ValueOf(src)
	if sv.Type() == dv.Type() {
		dv.Elem().Set(sv.Elem())
		return true
	}
	if sv.Type() == dv.Elem().Type() {
		dv.Elem().Set(sv)
		return true
	}
	return false
}
