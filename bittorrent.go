// This package provides a high-level interface to go-bittorrent. It decodes standalone bencode values for
// display and summarizes torrent metadata files, including their info hash.
package bittorrent

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meow-io/go-bittorrent/bencode"
	"github.com/meow-io/go-bittorrent/config"
	"github.com/meow-io/go-bittorrent/metainfo"
	"go.uber.org/zap"
)

// A summary of one metadata file.
type Summary struct {
	TrackerURL   string            `json:"tracker_url"`
	AnnounceList [][]string        `json:"announce_list,omitempty"`
	Name         string            `json:"name"`
	Length       uint64            `json:"length"`
	InfoHash     metainfo.InfoHash `json:"info_hash"`
	PieceLength  uint64            `json:"piece_length"`
	PieceHashes  []string          `json:"piece_hashes"`
}

type Bittorrent struct {
	log     *zap.SugaredLogger
	config  *config.Config
	decoder *bencode.Decoder
	parser  *metainfo.Parser
}

func NewBittorrent(c *config.Config) (*Bittorrent, error) {
	log := c.Logger("")
	absRootPath, err := filepath.Abs(c.RootDir)
	if err != nil {
		return nil, err
	}
	c.RootDir = absRootPath
	log.Debugf("making bittorrent, using root path of %s", c.RootDir)

	if err := os.MkdirAll(c.RootDir, 0o700); err != nil {
		return nil, err
	}

	return &Bittorrent{
		log:     log,
		config:  c,
		decoder: bencode.NewDecoder(bencode.WithStrictKeyOrder(c.StrictKeyOrder)),
		parser:  metainfo.NewParser(c),
	}, nil
}

// Decode decodes a single bencode value and renders it as JSON.
func (b *Bittorrent) Decode(input []byte) ([]byte, error) {
	v, err := b.decoder.Decode(input)
	if err != nil {
		return nil, err
	}
	b.log.Debugf("decoded %s from %d bytes", v.Kind(), len(input))
	return bencode.RenderJSON(v)
}

// Info parses the metadata file at path.
func (b *Bittorrent) Info(path string) (*Summary, error) {
	m, err := b.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	h, err := m.InfoHash()
	if err != nil {
		return nil, fmt.Errorf("hash info: %w", err)
	}

	s := &Summary{
		TrackerURL:   m.Announce,
		AnnounceList: m.AnnounceList,
		Name:         m.Info.Name,
		Length:       m.Info.Length,
		InfoHash:     h,
		PieceLength:  m.Info.PieceLength,
		PieceHashes:  make([]string, 0, m.Info.NumPieces()),
	}
	for _, ph := range m.Info.PieceHashes() {
		s.PieceHashes = append(s.PieceHashes, fmt.Sprintf("%x", ph))
	}
	return s, nil
}
