package bencode

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"unicode/utf8"
)

// RenderJSON renders v as JSON for display. Integers become numbers and byte strings become strings, so i3e
// and 1:3 stay distinguishable. A byte string that is not valid UTF-8 is rendered as {"$binary":"<hex>"}
// rather than being lossily converted; a non UTF-8 dictionary key becomes "$binary:<hex>". Dictionary keys
// appear in ascending raw-byte order.
func RenderJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case Integer:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case ByteString:
		if !utf8.Valid(val) {
			buf.WriteString(`{"$binary":"`)
			buf.WriteString(hex.EncodeToString(val))
			buf.WriteString(`"}`)
			return nil
		}
		return renderText(buf, string(val))
	case List:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := renderValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Dictionary:
		buf.WriteByte('{')
		for i, e := range val.SortedEntries() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key := string(e.Key)
			if !utf8.Valid(e.Key) {
				key = "$binary:" + hex.EncodeToString(e.Key)
			}
			if err := renderText(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := renderValue(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return newEncodeError("cannot render %T", v)
	}
	return nil
}

func renderText(buf *bytes.Buffer, s string) error {
	var quoted bytes.Buffer
	enc := json.NewEncoder(&quoted)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(quoted.Bytes(), []byte("\n")))
	return nil
}
