package metainfo

import (
	"math"

	"github.com/meow-io/go-bittorrent/bencode"
)

type infoSchema struct {
	Length      uint64 `bencode:"length"`
	Name        string `bencode:"name"`
	PieceLength uint64 `bencode:"piece length"`
	Pieces      []byte `bencode:"pieces"`
}

// EncodeInfoSchema encodes i through the struct-tag encoder. The result is byte-identical to i.Encode().
func EncodeInfoSchema(i InfoDict) ([]byte, error) {
	if i.Length > math.MaxInt64 {
		return nil, newSchemaError("info.length", "%d does not fit a bencode integer", i.Length)
	}
	if i.PieceLength > math.MaxInt64 {
		return nil, newSchemaError("info.piece length", "%d does not fit a bencode integer", i.PieceLength)
	}
	return bencode.Marshal(infoSchema{
		Length:      i.Length,
		Name:        i.Name,
		PieceLength: i.PieceLength,
		Pieces:      i.Pieces,
	})
}
