package bencode

import (
	"bytes"
	"strconv"
)

type Decoder struct {
	strictKeyOrder bool
	maxDepth       int
}

type DecoderOption func(*Decoder)

// WithStrictKeyOrder makes the decoder reject dictionaries whose keys are not in ascending raw-byte order.
func WithStrictKeyOrder(strict bool) DecoderOption {
	return func(d *Decoder) {
		d.strictKeyOrder = strict
	}
}

func WithMaxDepth(n int) DecoderOption {
	return func(d *Decoder) {
		d.maxDepth = n
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		strictKeyOrder: false,
		maxDepth:       MaxDepth,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode parses exactly one value from buf. Bytes left over after the value are an error.
func Decode(buf []byte) (Value, error) {
	return defaultDecoder.Decode(buf)
}

// DecodePrefix parses one value from the start of buf and returns how many bytes it used.
func DecodePrefix(buf []byte) (Value, int, error) {
	return defaultDecoder.DecodePrefix(buf)
}

func (d *Decoder) Decode(buf []byte) (Value, error) {
	v, n, err := d.DecodePrefix(buf)
	if err != nil {
		return nil, err
	}
	if n != len(buf) {
		return nil, newDecodeError(ErrTrailingData, int64(n), "%d bytes left after value", len(buf)-n)
	}
	return v, nil
}

func (d *Decoder) DecodePrefix(buf []byte) (Value, int, error) {
	r := newReader(buf, d)
	v, err := r.readValue(0)
	if err != nil {
		return nil, 0, err
	}
	return v, int(r.pos), nil
}

// reader is a cursor over a borrowed buffer. pos only ever moves forward.
type reader struct {
	buf            []byte
	pos            int64
	strictKeyOrder bool
	maxDepth       int
}

func newReader(buf []byte, d *Decoder) reader {
	return reader{
		buf:            buf,
		pos:            0,
		strictKeyOrder: d.strictKeyOrder,
		maxDepth:       d.maxDepth,
	}
}

func (r *reader) isAtEnd() bool {
	return r.pos >= int64(len(r.buf))
}

func (r *reader) remaining() []byte {
	return r.buf[r.pos:]
}

func (r *reader) peek(what string) (byte, error) {
	if r.isAtEnd() {
		return 0, newDecodeError(ErrUnexpectedEnd, r.pos, "expected %s, but no more bytes left", what)
	}
	return r.buf[r.pos], nil
}

func (r *reader) expectByte(b byte) error {
	if r.isAtEnd() {
		return newDecodeError(ErrUnexpectedEnd, r.pos, "expected 0x%x, but no more bytes left", b)
	}
	c := r.buf[r.pos]
	if c != b {
		return newDecodeError(ErrUnknownMarker, r.pos, "expected 0x%x got 0x%x", b, c)
	}
	r.pos++
	return nil
}

func (r *reader) readValue(depth int) (Value, error) {
	c, err := r.peek("a value")
	if err != nil {
		return nil, err
	}
	switch {
	case isDigit(c):
		b, err := r.readBytes()
		if err != nil {
			return nil, err
		}
		return ByteString(b), nil
	case c == numberStart:
		n, err := r.readInt()
		if err != nil {
			return nil, err
		}
		return Integer(n), nil
	case c == listStart:
		return r.readList(depth + 1)
	case c == dictStart:
		return r.readDict(depth + 1)
	default:
		return nil, newDecodeError(ErrUnknownMarker, r.pos, "unexpected byte 0x%x", c)
	}
}

// parseNumeral accepts an optional leading minus (when signed), then one or more digits with no leading zero
// unless the whole numeral is 0. Negative zero is rejected.
func parseNumeral(s []byte, signed bool) (int64, string) {
	digits := s
	neg := false
	if signed && len(digits) > 0 && digits[0] == minusSign {
		neg = true
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return 0, "expected 1 or more digits"
	}
	for _, c := range digits {
		if !isDigit(c) {
			return 0, "unexpected non-digit 0x" + strconv.FormatUint(uint64(c), 16)
		}
	}
	if digits[0] == 0x30 {
		if neg {
			return 0, "negative 0 not allowed"
		}
		if len(digits) > 1 {
			return 0, "leading zero not allowed"
		}
	}
	val, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return 0, "does not fit in 64 bits"
	}
	return val, ""
}

// i<numeral>e
func (r *reader) readInt() (int64, error) {
	if err := r.expectByte(numberStart); err != nil {
		return 0, err
	}
	start := r.pos
	end := bytes.IndexByte(r.remaining(), bencodeEnd)
	if end < 0 {
		return 0, newDecodeError(ErrUnexpectedEnd, start, "unterminated integer")
	}
	val, problem := parseNumeral(r.buf[start:start+int64(end)], true)
	if problem != "" {
		return 0, newDecodeError(ErrInvalidNumeral, start, "integer %q: %s", r.buf[start:start+int64(end)], problem)
	}
	r.pos = start + int64(end) + 1
	return val, nil
}

// <length>:<bytes>. The returned slice is a copy, so the decoded tree never aliases the input buffer.
func (r *reader) readBytes() ([]byte, error) {
	start := r.pos
	sep := bytes.IndexByte(r.remaining(), bytesLengthSep)
	if sep < 0 {
		return nil, newDecodeError(ErrUnexpectedEnd, start, "string length is not followed by 0x%x", bytesLengthSep)
	}
	numSlice := r.buf[start : start+int64(sep)]
	l, problem := parseNumeral(numSlice, false)
	if problem != "" {
		return nil, newDecodeError(ErrInvalidNumeral, start, "string length %q: %s", numSlice, problem)
	}
	dataStart := start + int64(sep) + 1
	if l > int64(len(r.buf))-dataStart {
		return nil, newDecodeError(ErrUnexpectedEnd, dataStart, "string wants %d bytes, only %d left", l, int64(len(r.buf))-dataStart)
	}
	b := make([]byte, l)
	copy(b, r.buf[dataStart:dataStart+l])
	r.pos = dataStart + l
	return b, nil
}

func (r *reader) enter(depth int) error {
	if depth > r.maxDepth {
		return newDecodeError(ErrDepthExceeded, r.pos, "more than %d nested containers", r.maxDepth)
	}
	return nil
}

func (r *reader) readList(depth int) (Value, error) {
	if err := r.enter(depth); err != nil {
		return nil, err
	}
	if err := r.expectByte(listStart); err != nil {
		return nil, err
	}
	list := List{}
	for {
		c, err := r.peek("a list element or end of list")
		if err != nil {
			return nil, err
		}
		if c == bencodeEnd {
			r.pos++
			return list, nil
		}
		item, err := r.readValue(depth)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
}

func (r *reader) readDict(depth int) (Value, error) {
	if err := r.enter(depth); err != nil {
		return nil, err
	}
	if err := r.expectByte(dictStart); err != nil {
		return nil, err
	}
	var (
		entries []DictEntry
		prev    ByteString
	)
	seen := make(map[string]struct{})
	for {
		c, err := r.peek("a dictionary key or end of dictionary")
		if err != nil {
			return nil, err
		}
		if c == bencodeEnd {
			r.pos++
			return makeDictionary(entries), nil
		}

		keyPos := r.pos
		k, err := r.readValue(depth)
		if err != nil {
			return nil, err
		}
		key, ok := k.(ByteString)
		if !ok {
			return nil, newDecodeError(ErrKeyType, keyPos, "got %s key", k.Kind())
		}
		if _, dup := seen[string(key)]; dup {
			return nil, newDecodeError(ErrDuplicateKey, keyPos, "key %q already present", key)
		}
		seen[string(key)] = struct{}{}
		if prev != nil && bytes.Compare(prev, key) > 0 && r.strictKeyOrder {
			return nil, newDecodeError(ErrUnsortedKeys, keyPos, "key %q follows %q", key, prev)
		}
		prev = key

		c, err = r.peek("a value for key " + strconv.Quote(string(key)))
		if err != nil {
			return nil, err
		}
		if c == bencodeEnd {
			return nil, newDecodeError(ErrUnexpectedEnd, r.pos, "dictionary ended before value for key %q", key)
		}
		val, err := r.readValue(depth)
		if err != nil {
			return nil, err
		}
		entries = append(entries, DictEntry{Key: key, Value: val})
	}
}
