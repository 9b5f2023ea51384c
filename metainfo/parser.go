package metainfo

import (
	"fmt"
	"os"

	"github.com/meow-io/go-bittorrent/bencode"
	"github.com/meow-io/go-bittorrent/config"
	"go.uber.org/zap"
)

// Parser runs decode, projection and hashing for whole metadata files. It is safe for concurrent use.
type Parser struct {
	log     *zap.SugaredLogger
	decoder *bencode.Decoder
}

func NewParser(c *config.Config) *Parser {
	return &Parser{
		log:     c.Logger("metainfo"),
		decoder: bencode.NewDecoder(bencode.WithStrictKeyOrder(c.StrictKeyOrder)),
	}
}

func (p *Parser) Parse(data []byte) (*TorrentMetadata, error) {
	p.log.Debugf("decoding %d bytes", len(data))
	v, err := p.decoder.Decode(data)
	if err != nil {
		p.log.Debugf("decode failed: %v", err)
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	m, err := Project(v)
	if err != nil {
		p.log.Debugf("projection failed: %v", err)
		return nil, fmt.Errorf("project metadata: %w", err)
	}
	if !m.RawInfo.Sorted() {
		p.log.Warnf("info dictionary keys of %q are not in canonical order, hashing the sorted encoding", m.Info.Name)
	}

	h, err := m.InfoHash()
	if err != nil {
		return nil, fmt.Errorf("hash info: %w", err)
	}
	p.log.Debugf("parsed %q: %d pieces, info hash %s", m.Info.Name, m.Info.NumPieces(), h)
	return m, nil
}

func (p *Parser) ParseFile(path string) (*TorrentMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.Parse(data)
}
