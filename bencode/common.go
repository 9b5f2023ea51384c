// This package defines the bencode value model used for BitTorrent metadata, a strict decoder over a
// fully buffered byte slice, and the canonical encoder needed to reproduce hash-relevant bytes.
//
// Decoded trees are made of four kinds of Value: Integer, ByteString, List and Dictionary. Byte strings are
// kept as raw bytes. Dictionaries remember the order their keys arrived in, but the encoder always writes them
// sorted by raw byte value, so Encode produces the canonical form regardless of the input's key order.
package bencode

const (
	numberStart    = 0x69
	dictStart      = 0x64
	listStart      = 0x6c
	bencodeEnd     = 0x65
	bytesLengthSep = 0x3a
	minusSign      = 0x2d
)

// MaxDepth is the default limit on nested lists and dictionaries accepted by the decoder.
const MaxDepth = 512

func isDigit(c byte) bool {
	return c >= 0x30 && c <= 0x39
}
