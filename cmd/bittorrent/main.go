package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jpillora/opts"
	bittorrent "github.com/meow-io/go-bittorrent"
	"github.com/meow-io/go-bittorrent/config"
)

var version = "0.0.0-src" //set with ldflags

type root struct {
	Debug  bool   `opts:"help=enable debug logging"`
	LogDir string `opts:"help=directory that receives out.log"`
	Strict bool   `opts:"help=reject dictionaries whose keys are not sorted"`

	out io.Writer
}

func (r *root) bittorrent() (*bittorrent.Bittorrent, error) {
	options := []config.Option{
		config.WithRootDir(r.LogDir),
		config.WithStrictKeyOrder(r.Strict),
	}
	if r.Debug {
		options = append(options, config.WithDebug(true))
	}
	return bittorrent.NewBittorrent(config.NewConfig(options...))
}

type decodeCmd struct {
	root  *root
	Value string `opts:"mode=arg, help=bencoded value such as d3:foo3:bare"`
}

func (d *decodeCmd) Run() error {
	b, err := d.root.bittorrent()
	if err != nil {
		return err
	}
	out, err := b.Decode([]byte(d.Value))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(d.root.out, string(out))
	return err
}

type infoCmd struct {
	root *root
	File string `opts:"mode=arg, help=path to a torrent metadata file"`
	JSON bool   `opts:"help=print the summary as JSON"`
}

func (i *infoCmd) Run() error {
	b, err := i.root.bittorrent()
	if err != nil {
		return err
	}
	s, err := b.Info(i.File)
	if err != nil {
		return err
	}
	w := i.root.out

	if i.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(w, "Tracker URL: %s\n", s.TrackerURL)
	fmt.Fprintf(w, "Length: %d (%s)\n", s.Length, humanize.Bytes(s.Length))
	fmt.Fprintf(w, "Info Hash: %s\n", s.InfoHash)
	fmt.Fprintf(w, "Piece Length: %d (%s)\n", s.PieceLength, humanize.Bytes(s.PieceLength))
	fmt.Fprintln(w, "Piece Hashes:")
	for _, h := range s.PieceHashes {
		if _, err := fmt.Fprintln(w, h); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	r := root{
		LogDir: filepath.Join(os.TempDir(), "bittorrent"),
		out:    os.Stdout,
	}
	opts.New(&r).
		Name("bittorrent").
		Version(version).
		Summary("decode bencode values and inspect torrent metadata files").
		AddCommand(opts.New(&decodeCmd{root: &r}).Name("decode").Summary("render a bencoded value as JSON")).
		AddCommand(opts.New(&infoCmd{root: &r}).Name("info").Summary("print the tracker, length, info hash and pieces of a metadata file")).
		Parse().
		RunFatal()
}
