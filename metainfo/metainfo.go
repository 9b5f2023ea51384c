// Package metainfo projects decoded bencode trees onto the torrent metadata schema and derives the info
// hash from the canonical encoding of the info dictionary.
package metainfo

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/meow-io/go-bittorrent/bencode"
)

// PieceHashSize is the length of one SHA-1 piece digest inside `pieces`.
const PieceHashSize = 20

var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaError names the field that failed projection, as a dotted path such as `info.length`.
type SchemaError struct {
	Field  string
	Reason string
}

func newSchemaError(field string, reason string, vars ...interface{}) *SchemaError {
	return &SchemaError{Field: field, Reason: fmt.Sprintf(reason, vars...)}
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrSchemaMismatch, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

type TorrentMetadata struct {
	Announce     string
	AnnounceList [][]string
	Comment      string
	CreatedBy    string
	CreationDate time.Time
	Info         InfoDict

	// RawInfo is the decoded info dictionary, including keys the schema does not name.
	RawInfo bencode.Dictionary
}

type InfoDict struct {
	Name        string
	Length      uint64
	PieceLength uint64
	Pieces      []byte
}

func (i InfoDict) NumPieces() int {
	return len(i.Pieces) / PieceHashSize
}

// PieceHashes splits Pieces into its 20-byte digests.
func (i InfoDict) PieceHashes() [][PieceHashSize]byte {
	hashes := make([][PieceHashSize]byte, i.NumPieces())
	for n := range hashes {
		copy(hashes[n][:], i.Pieces[n*PieceHashSize:])
	}
	return hashes
}

// Project validates v against the metadata schema. It returns either a complete TorrentMetadata or a
// *SchemaError.
func Project(v bencode.Value) (*TorrentMetadata, error) {
	root, ok := v.(bencode.Dictionary)
	if !ok {
		return nil, newSchemaError("(root)", "expected dictionary, got %s", kindOf(v))
	}

	m := &TorrentMetadata{}
	var err error
	if m.Announce, err = requireText(root, "", "announce"); err != nil {
		return nil, err
	}

	infoValue, ok := root.Get("info")
	if !ok {
		return nil, newSchemaError("info", "missing")
	}
	if m.RawInfo, ok = infoValue.(bencode.Dictionary); !ok {
		return nil, newSchemaError("info", "expected dictionary, got %s", kindOf(infoValue))
	}
	if m.Info, err = projectInfo(m.RawInfo); err != nil {
		return nil, err
	}

	if m.AnnounceList, err = optionalTiers(root, "announce-list"); err != nil {
		return nil, err
	}
	if m.Comment, err = optionalText(root, "", "comment"); err != nil {
		return nil, err
	}
	if m.CreatedBy, err = optionalText(root, "", "created by"); err != nil {
		return nil, err
	}
	if cd, ok := root.Get("creation date"); ok {
		n, ok := cd.(bencode.Integer)
		if !ok {
			return nil, newSchemaError("creation date", "expected integer, got %s", kindOf(cd))
		}
		m.CreationDate = time.Unix(int64(n), 0)
	}
	return m, nil
}

func projectInfo(d bencode.Dictionary) (InfoDict, error) {
	var info InfoDict
	var err error
	if info.Name, err = requireText(d, "info", "name"); err != nil {
		return info, err
	}
	if info.Length, err = requireUnsigned(d, "info", "length"); err != nil {
		return info, err
	}
	if info.PieceLength, err = requireUnsigned(d, "info", "piece length"); err != nil {
		return info, err
	}
	pieces, err := requireKind(d, "info", "pieces", bencode.ByteStringKind)
	if err != nil {
		return info, err
	}
	info.Pieces = pieces.(bencode.ByteString)
	if len(info.Pieces)%PieceHashSize != 0 {
		return info, newSchemaError("info.pieces", "length %d is not a multiple of %d", len(info.Pieces), PieceHashSize)
	}
	return info, nil
}

func fieldPath(parent string, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func kindOf(v bencode.Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().String()
}

func requireKind(d bencode.Dictionary, parent string, key string, kind bencode.Kind) (bencode.Value, error) {
	v, ok := d.Get(key)
	if !ok {
		return nil, newSchemaError(fieldPath(parent, key), "missing")
	}
	if v.Kind() != kind {
		return nil, newSchemaError(fieldPath(parent, key), "expected %s, got %s", kind, v.Kind())
	}
	return v, nil
}

func text(v bencode.Value, field string) (string, error) {
	b, ok := v.(bencode.ByteString)
	if !ok {
		return "", newSchemaError(field, "expected byte string, got %s", kindOf(v))
	}
	if !utf8.Valid(b) {
		return "", newSchemaError(field, "not valid UTF-8 text")
	}
	return string(b), nil
}

func requireText(d bencode.Dictionary, parent string, key string) (string, error) {
	v, ok := d.Get(key)
	if !ok {
		return "", newSchemaError(fieldPath(parent, key), "missing")
	}
	return text(v, fieldPath(parent, key))
}

func optionalText(d bencode.Dictionary, parent string, key string) (string, error) {
	v, ok := d.Get(key)
	if !ok {
		return "", nil
	}
	return text(v, fieldPath(parent, key))
}

func requireUnsigned(d bencode.Dictionary, parent string, key string) (uint64, error) {
	v, err := requireKind(d, parent, key, bencode.IntegerKind)
	if err != nil {
		return 0, err
	}
	n := v.(bencode.Integer)
	if n < 0 {
		return 0, newSchemaError(fieldPath(parent, key), "negative value %d", n)
	}
	return uint64(n), nil
}

func optionalTiers(d bencode.Dictionary, key string) ([][]string, error) {
	v, ok := d.Get(key)
	if !ok {
		return nil, nil
	}
	tiers, ok := v.(bencode.List)
	if !ok {
		return nil, newSchemaError(key, "expected list, got %s", kindOf(v))
	}
	out := make([][]string, 0, len(tiers))
	for i, t := range tiers {
		urls, ok := t.(bencode.List)
		if !ok {
			return nil, newSchemaError(fmt.Sprintf("%s.%d", key, i), "expected list, got %s", kindOf(t))
		}
		tier := make([]string, 0, len(urls))
		for j, u := range urls {
			s, err := text(u, fmt.Sprintf("%s.%d.%d", key, i, j))
			if err != nil {
				return nil, err
			}
			tier = append(tier, s)
		}
		out = append(out, tier)
	}
	return out, nil
}
