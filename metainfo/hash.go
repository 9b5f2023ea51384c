package metainfo

import (
	"crypto/sha1"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"math"

	"github.com/meow-io/go-bittorrent/bencode"
)

// InfoHash is the SHA-1 digest of the canonical encoding of an info dictionary.
type InfoHash [sha1.Size]byte

// ParseInfoHash accepts 40 hex or 32 base32 characters.
func ParseInfoHash(s string) (InfoHash, error) {
	var ih InfoHash
	var b []byte
	var err error
	switch len(s) {
	case 40:
		b, err = hex.DecodeString(s)
	case 32:
		b, err = base32.StdEncoding.DecodeString(s)
	default:
		return ih, errors.New("info hash must be 32 or 40 characters")
	}
	if err != nil {
		return ih, err
	}
	copy(ih[:], b)
	return ih, nil
}

func (i InfoHash) String() string { return hex.EncodeToString(i[:]) }

func (i InfoHash) MarshalJSON() ([]byte, error) { return []byte(`"` + i.String() + `"`), nil }

func checkedInteger(field string, n uint64) (bencode.Integer, error) {
	if n > math.MaxInt64 {
		return 0, newSchemaError(field, "%d does not fit a bencode integer", n)
	}
	return bencode.Integer(n), nil
}

// Value builds the dictionary with exactly the four schema keys.
func (i InfoDict) Value() (bencode.Dictionary, error) {
	length, err := checkedInteger("info.length", i.Length)
	if err != nil {
		return bencode.Dictionary{}, err
	}
	pieceLength, err := checkedInteger("info.piece length", i.PieceLength)
	if err != nil {
		return bencode.Dictionary{}, err
	}
	return bencode.NewDictionary(
		bencode.DictEntry{Key: bencode.ByteString("length"), Value: length},
		bencode.DictEntry{Key: bencode.ByteString("name"), Value: bencode.ByteString(i.Name)},
		bencode.DictEntry{Key: bencode.ByteString("piece length"), Value: pieceLength},
		bencode.DictEntry{Key: bencode.ByteString("pieces"), Value: bencode.ByteString(i.Pieces)},
	)
}

func (i InfoDict) Encode() ([]byte, error) {
	d, err := i.Value()
	if err != nil {
		return nil, err
	}
	return bencode.Encode(d)
}

func (i InfoDict) Hash() (InfoHash, error) {
	d, err := i.Value()
	if err != nil {
		return InfoHash{}, err
	}
	return hashValue(d)
}

// InfoHash hashes the whole decoded info dictionary, so keys such as `private` count toward the digest.
func (m *TorrentMetadata) InfoHash() (InfoHash, error) {
	return hashValue(m.RawInfo)
}

func hashValue(v bencode.Value) (InfoHash, error) {
	var ih InfoHash
	h := sha1.New()
	if err := bencode.EncodeTo(h, v); err != nil {
		return ih, err
	}
	copy(ih[:], h.Sum(nil))
	return ih, nil
}
