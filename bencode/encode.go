package bencode

import (
	"bytes"
	"io"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Encode returns the canonical encoding of v. Dictionary keys are written in ascending raw-byte order no
// matter what order the dictionary was decoded in.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the canonical encoding of v to out, for example straight into a hash.
func EncodeTo(out io.Writer, v Value) error {
	w := newWriter(out)
	return w.writeValue(v)
}

// Marshal encodes Go values using `bencode:"key"` struct tags. Struct fields and map keys are written in
// sorted order, so a struct describing a dictionary encodes to the same bytes as the equivalent Dictionary.
// Values of type Value embedded anywhere are written with the canonical encoder.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	w := newWriter(&buf)
	if err := w.writeReflect(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type writer struct {
	out     io.Writer
	scratch []byte
}

func newWriter(out io.Writer) writer {
	return writer{out: out}
}

func (w *writer) writeByte(b byte) error {
	w.scratch = append(w.scratch[:0], b)
	_, err := w.out.Write(w.scratch)
	return err
}

func (w *writer) writeBytes(b []byte) error {
	w.scratch = strconv.AppendInt(w.scratch[:0], int64(len(b)), 10)
	w.scratch = append(w.scratch, bytesLengthSep)
	if _, err := w.out.Write(w.scratch); err != nil {
		return err
	}
	if _, err := w.out.Write(b); err != nil {
		return err
	}
	return nil
}

func (w *writer) writeSignedNumber(n int64) error {
	w.scratch = append(w.scratch[:0], numberStart)
	w.scratch = strconv.AppendInt(w.scratch, n, 10)
	w.scratch = append(w.scratch, bencodeEnd)
	_, err := w.out.Write(w.scratch)
	return err
}

func (w *writer) writeUnsignedNumber(n uint64) error {
	w.scratch = append(w.scratch[:0], numberStart)
	w.scratch = strconv.AppendUint(w.scratch, n, 10)
	w.scratch = append(w.scratch, bencodeEnd)
	_, err := w.out.Write(w.scratch)
	return err
}

func (w *writer) writeValue(v Value) error {
	switch val := v.(type) {
	case Integer:
		return w.writeSignedNumber(int64(val))
	case ByteString:
		return w.writeBytes(val)
	case List:
		if err := w.writeByte(listStart); err != nil {
			return err
		}
		for _, item := range val {
			if err := w.writeValue(item); err != nil {
				return err
			}
		}
		return w.writeByte(bencodeEnd)
	case Dictionary:
		if err := w.writeByte(dictStart); err != nil {
			return err
		}
		for _, e := range val.SortedEntries() {
			if err := w.writeBytes(e.Key); err != nil {
				return err
			}
			if err := w.writeValue(e.Value); err != nil {
				return err
			}
		}
		return w.writeByte(bencodeEnd)
	case nil:
		return newEncodeError("nil value")
	default:
		return newEncodeError("unrecognized value type %T", v)
	}
}

var valueType = reflect.TypeOf((*Value)(nil)).Elem()

func (w *writer) writeReflect(v reflect.Value) error {
	if !v.IsValid() {
		return newEncodeError("nil value")
	}
	if v.Kind() != reflect.Pointer && v.Type().Implements(valueType) && v.CanInterface() {
		if v.Kind() == reflect.Interface && v.IsNil() {
			return newEncodeError("nil %s", v.Type())
		}
		return w.writeValue(v.Interface().(Value))
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return w.writeUnsignedNumber(1)
		}
		return w.writeUnsignedNumber(0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return w.writeSignedNumber(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return w.writeUnsignedNumber(v.Uint())
	case reflect.String:
		return w.writeBytes([]byte(v.String()))
	case reflect.Array, reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return w.writeBytes(byteSlice(v))
		}
		if err := w.writeByte(listStart); err != nil {
			return err
		}
		for i := 0; i != v.Len(); i++ {
			if err := w.writeReflect(v.Index(i)); err != nil {
				return err
			}
		}
		return w.writeByte(bencodeEnd)
	case reflect.Map:
		return w.writeMap(v)
	case reflect.Struct:
		return w.writeStruct(v)
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return newEncodeError("nil %s", v.Type())
		}
		return w.writeReflect(v.Elem())
	default:
		return newEncodeError("unrecognized value type %s", v.Type())
	}
}

func byteSlice(v reflect.Value) []byte {
	b := make([]byte, v.Len())
	reflect.Copy(reflect.ValueOf(b), v)
	return b
}

type mapEntry struct {
	key []byte
	val reflect.Value
}

func (w *writer) writeMap(v reflect.Value) error {
	kt := v.Type().Key()
	var keyBytes func(reflect.Value) []byte
	switch {
	case kt.Kind() == reflect.String:
		keyBytes = func(k reflect.Value) []byte { return []byte(k.String()) }
	case kt.Kind() == reflect.Array && kt.Elem().Kind() == reflect.Uint8:
		keyBytes = byteSlice
	default:
		return newEncodeError("cannot use %s as a dictionary key", kt)
	}

	entries := make([]mapEntry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		entries = append(entries, mapEntry{key: keyBytes(iter.Key()), val: iter.Value()})
	}
	slices.SortFunc(entries, func(a, b mapEntry) int {
		return bytes.Compare(a.key, b.key)
	})

	if err := w.writeByte(dictStart); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.writeBytes(e.key); err != nil {
			return err
		}
		if err := w.writeReflect(e.val); err != nil {
			return err
		}
	}
	return w.writeByte(bencodeEnd)
}

type structField struct {
	name      string
	index     int
	omitEmpty bool
}

func (w *writer) writeStruct(v reflect.Value) error {
	ty := v.Type()
	fields := make([]structField, 0, ty.NumField())
	for i := 0; i != ty.NumField(); i++ {
		f := ty.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("bencode")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			return newEncodeError("field %s.%s has no bencode tag", ty, f.Name)
		}
		fields = append(fields, structField{name: name, index: i, omitEmpty: opts == "omitempty"})
	}
	slices.SortFunc(fields, func(a, b structField) int {
		return strings.Compare(a.name, b.name)
	})
	for i := 1; i < len(fields); i++ {
		if fields[i].name == fields[i-1].name {
			return newEncodeError("key %q used by more than one field of %s", fields[i].name, ty)
		}
	}

	if err := w.writeByte(dictStart); err != nil {
		return err
	}
	for _, f := range fields {
		field := v.Field(f.index)
		if f.omitEmpty && field.IsZero() {
			continue
		}
		if err := w.writeBytes([]byte(f.name)); err != nil {
			return err
		}
		if err := w.writeReflect(field); err != nil {
			return err
		}
	}
	return w.writeByte(bencodeEnd)
}
