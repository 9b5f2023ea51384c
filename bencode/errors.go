package bencode

import "fmt"

// ErrorKind classifies a decode or encode failure. Every kind is itself an error, so callers can test for it
// with errors.Is(err, bencode.ErrInvalidNumeral).
type ErrorKind int

const (
	// A string, integer, list or dictionary was not terminated before the buffer ended.
	ErrUnexpectedEnd ErrorKind = iota + 1
	// A length or integer was not a canonical decimal numeral, or did not fit in 64 bits.
	ErrInvalidNumeral
	// The leading byte of a value is not a recognised type tag.
	ErrUnknownMarker
	// A dictionary key decoded to something other than a byte string.
	ErrKeyType
	// A dictionary contained the same key twice.
	ErrDuplicateKey
	// A top-level decode left bytes after a complete value.
	ErrTrailingData
	// A dictionary's keys were not in ascending order while strict key order was required.
	ErrUnsortedKeys
	// Lists and dictionaries were nested deeper than the decoder allows.
	ErrDepthExceeded
	// The encoder was handed something it cannot represent.
	ErrUnencodable
)

var kindNames = map[ErrorKind]string{
	ErrUnexpectedEnd:  "unexpected end of input",
	ErrInvalidNumeral: "invalid numeral",
	ErrUnknownMarker:  "unknown marker",
	ErrKeyType:        "dictionary key is not a string",
	ErrDuplicateKey:   "duplicate dictionary key",
	ErrTrailingData:   "trailing data",
	ErrUnsortedKeys:   "dictionary keys out of order",
	ErrDepthExceeded:  "nesting too deep",
	ErrUnencodable:    "unencodable value",
}

func (k ErrorKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("bencode error %d", int(k))
}

func (k ErrorKind) Error() string {
	return k.String()
}

// DecodeError reports what went wrong and the byte offset in the input where it was detected.
type DecodeError struct {
	Kind ErrorKind
	Pos  int64
	msg  string
}

func newDecodeError(kind ErrorKind, pos int64, msg string, vars ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Pos: pos, msg: fmt.Sprintf(msg, vars...)}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at pos %d: %s", e.Kind, e.Pos, e.msg)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

type EncodeError struct {
	msg string
}

func newEncodeError(msg string, vars ...interface{}) *EncodeError {
	return &EncodeError{fmt.Sprintf(msg, vars...)}
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnencodable, e.msg)
}

func (e *EncodeError) Unwrap() error {
	return ErrUnencodable
}
