package main

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"testing"

	"github.com/meow-io/go-bittorrent/bencode"
	"github.com/meow-io/go-bittorrent/internal/test"
	"github.com/stretchr/testify/require"
)

func testRoot(t *testing.T) (*root, *bytes.Buffer) {
	var out bytes.Buffer
	return &root{LogDir: t.TempDir(), out: &out}, &out
}

func TestDecodeCommand(t *testing.T) {
	require := require.New(t)

	r, out := testRoot(t)
	require.NoError((&decodeCmd{root: r, Value: "l5:helloi52ee"}).Run())
	require.Equal("[\"hello\",52]\n", out.String())

	err := (&decodeCmd{root: r, Value: "5:hi"}).Run()
	require.ErrorIs(err, bencode.ErrUnexpectedEnd)
}

func TestDecodeCommandStrict(t *testing.T) {
	r, _ := testRoot(t)
	r.Strict = true
	err := (&decodeCmd{root: r, Value: "d3:foo3:bar3:bari1ee"}).Run()
	require.ErrorIs(t, err, bencode.ErrUnsortedKeys)
}

func TestInfoCommand(t *testing.T) {
	require := require.New(t)

	r, out := testRoot(t)
	path := test.WriteTorrent(t, test.Torrent(test.CanonicalInfo()))
	require.NoError((&infoCmd{root: r, File: path}).Run())

	want := fmt.Sprintf("Tracker URL: %s\n"+
		"Length: 92063 (92 kB)\n"+
		"Info Hash: %x\n"+
		"Piece Length: 32768 (33 kB)\n"+
		"Piece Hashes:\n"+
		"abababababababababababababababababababab\n"+
		"cdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcd\n",
		test.Announce, sha1.Sum([]byte(test.CanonicalInfo())))
	require.Equal(want, out.String())
}

func TestInfoCommandJSON(t *testing.T) {
	require := require.New(t)

	r, out := testRoot(t)
	path := test.WriteTorrent(t, test.Torrent(test.CanonicalInfo()))
	require.NoError((&infoCmd{root: r, File: path, JSON: true}).Run())
	require.Contains(out.String(), fmt.Sprintf(`"info_hash": "%x"`, sha1.Sum([]byte(test.CanonicalInfo()))))
	require.Contains(out.String(), `"length": 92063`)
}
