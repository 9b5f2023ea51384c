package test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/meow-io/go-bittorrent/config"
)

// Pieces holds two distinct 20-byte piece digests.
var Pieces = strings.Repeat("\xab", 20) + strings.Repeat("\xcd", 20)

const Announce = "http://tracker.example.com/announce"

// CanonicalInfo is the info dictionary for sample.txt with keys in canonical order.
func CanonicalInfo() string {
	return "d6:lengthi92063e4:name10:sample.txt12:piece lengthi32768e6:pieces40:" + Pieces + "e"
}

// ShuffledInfo holds the same entries as CanonicalInfo in a non-canonical order.
func ShuffledInfo() string {
	return "d4:name10:sample.txt6:pieces40:" + Pieces + "12:piece lengthi32768e6:lengthi92063ee"
}

// Torrent wraps info in a metadata dictionary. extra is spliced in between announce and info, so it must
// keep keys sorted if the result is meant to be canonical.
func Torrent(info string, extra ...string) []byte {
	return []byte("d8:announce35:" + Announce + strings.Join(extra, "") + "4:info" + info + "e")
}

func WriteTorrent(t *testing.T, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sample.torrent")
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

// Buffer is a bytes.Buffer that can be shared by concurrent loggers.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewConfig returns a debug config that logs into the returned buffer instead of out.log and stderr.
func NewConfig(opts ...config.Option) (*config.Config, *Buffer) {
	log := &Buffer{}
	base := []config.Option{
		config.WithDebug(true),
		config.WithLoggingPrefix("test"),
		config.WithLogWriter(log),
		config.WithConsole(&Buffer{}),
	}
	return config.NewConfig(append(base, opts...)...), log
}
