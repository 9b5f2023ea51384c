package bencode

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeInteger(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr error
	}{
		{"i3e", 3, nil},
		{"i-3e", -3, nil},
		{"i0e", 0, nil},
		{"i123456789e", 123456789, nil},
		{"i9223372036854775807e", math.MaxInt64, nil},
		{"i-9223372036854775808e", math.MinInt64, nil},
		{"i-0e", 0, ErrInvalidNumeral},
		{"i03e", 0, ErrInvalidNumeral},
		{"i-03e", 0, ErrInvalidNumeral},
		{"ie", 0, ErrInvalidNumeral},
		{"i-e", 0, ErrInvalidNumeral},
		{"i+3e", 0, ErrInvalidNumeral},
		{"i3.5e", 0, ErrInvalidNumeral},
		{"i1e5e", 0, ErrTrailingData},
		{"iabc123e", 0, ErrInvalidNumeral},
		{"i9223372036854775808e", 0, ErrInvalidNumeral},
		{"i123", 0, ErrUnexpectedEnd},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require := require.New(t)
			got, err := Decode([]byte(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(err, tt.wantErr)
				return
			}
			require.NoError(err)
			require.Equal(Integer(tt.want), got)
		})
	}
}

func TestDecodeString(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"4:spam", "spam", nil},
		{"0:", "", nil},
		{"5:hello", "hello", nil},
		{"10:1234567890", "1234567890", nil},
		{"3:a:b", "a:b", nil},
		{"5:hi", "", ErrUnexpectedEnd},
		{"4spam", "", ErrUnexpectedEnd},
		{"4", "", ErrUnexpectedEnd},
		{"03:abc", "", ErrInvalidNumeral},
		{"4x:spam", "", ErrInvalidNumeral},
		{"99999999999999999999:a", "", ErrInvalidNumeral},
		{"-1:spam", "", ErrUnknownMarker},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require := require.New(t)
			got, err := Decode([]byte(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(err, tt.wantErr)
				return
			}
			require.NoError(err)
			require.Equal(ByteString(tt.want), got)
		})
	}
}

func TestDecodeBinaryString(t *testing.T) {
	require := require.New(t)

	raw := []byte{0xff, 0x00, 0xfe, 0x80, 0x3a}
	input := append([]byte("5:"), raw...)
	got, err := Decode(input)
	require.NoError(err)
	require.Equal(ByteString(raw), got)

	// the tree owns its bytes
	input[2] = 0x01
	require.Equal(ByteString(raw), got)
}

func TestDecodeList(t *testing.T) {
	require := require.New(t)

	got, err := Decode([]byte("l4:spam4:eggse"))
	require.NoError(err)
	require.Equal(List{ByteString("spam"), ByteString("eggs")}, got)

	got, err = Decode([]byte("le"))
	require.NoError(err)
	require.Equal(List{}, got)

	got, err = Decode([]byte("l5:helloi52ee"))
	require.NoError(err)
	require.Equal(List{ByteString("hello"), Integer(52)}, got)

	got, err = Decode([]byte("ll4:spamee"))
	require.NoError(err)
	require.Equal(List{List{ByteString("spam")}}, got)

	_, err = Decode([]byte("l4:spam"))
	require.ErrorIs(err, ErrUnexpectedEnd)

	_, err = Decode([]byte("l"))
	require.ErrorIs(err, ErrUnexpectedEnd)
}

func TestDecodeDict(t *testing.T) {
	require := require.New(t)

	got, err := Decode([]byte("d3:cow3:moo4:spam4:eggse"))
	require.NoError(err)
	d, ok := got.(Dictionary)
	require.True(ok)
	require.Equal([]ByteString{ByteString("cow"), ByteString("spam")}, d.Keys())
	moo, ok := d.Get("cow")
	require.True(ok)
	require.Equal(ByteString("moo"), moo)
	require.True(d.Sorted())

	got, err = Decode([]byte("de"))
	require.NoError(err)
	require.Equal(0, got.(Dictionary).Len())

	got, err = Decode([]byte("d10:inner_dictd4:key16:value14:key2i42e8:list_keyl5:item15:item2i3eeee"))
	require.NoError(err)
	inner, ok := got.(Dictionary).Get("inner_dict")
	require.True(ok)
	list, ok := inner.(Dictionary).Get("list_key")
	require.True(ok)
	require.Equal(List{ByteString("item1"), ByteString("item2"), Integer(3)}, list)
}

func TestDecodeUnsortedDictionary(t *testing.T) {
	require := require.New(t)

	sorted, err := Decode([]byte("d3:bar4:spam3:fooi42ee"))
	require.NoError(err)
	unsorted, err := Decode([]byte("d3:fooi42e3:bar4:spame"))
	require.NoError(err)

	d := unsorted.(Dictionary)
	require.False(d.Sorted())
	require.Equal(ByteString("foo"), d.Entries()[0].Key)
	require.Equal(ByteString("bar"), d.SortedEntries()[0].Key)
	require.True(Equal(sorted, unsorted))

	for _, v := range []Value{sorted, unsorted} {
		buf, err := Encode(v)
		require.NoError(err)
		require.Equal("d3:bar4:spam3:fooi42ee", string(buf))
	}
}

func TestDecodeDictErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"di1e0:e", ErrKeyType},
		{"dl1:ae1:be", ErrKeyType},
		{"d3:foo3:bar3:fooi1ee", ErrDuplicateKey},
		{"d3:foo3:bar3:baz1:x3:fooi1ee", ErrDuplicateKey},
		{"d3:foo", ErrUnexpectedEnd},
		{"d3:fooe", ErrUnexpectedEnd},
		{"d3:foo3:bar", ErrUnexpectedEnd},
		{"d4:spam", ErrUnexpectedEnd},
		{"d3:fooxe", ErrUnknownMarker},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStrictKeyOrder(t *testing.T) {
	require := require.New(t)
	d := NewDecoder(WithStrictKeyOrder(true))

	_, err := d.Decode([]byte("d3:fooi42e3:bar4:spame"))
	require.ErrorIs(err, ErrUnsortedKeys)

	v, err := d.Decode([]byte("d3:bar4:spam3:fooi42ee"))
	require.NoError(err)
	require.True(v.(Dictionary).Sorted())

	_, err = d.Decode([]byte("d3:foo3:bar3:fooi1ee"))
	require.ErrorIs(err, ErrDuplicateKey)
}

func TestDecodeTopLevel(t *testing.T) {
	require := require.New(t)

	_, err := Decode([]byte("i3ei4e"))
	require.ErrorIs(err, ErrTrailingData)

	v, n, err := DecodePrefix([]byte("i3ei4e"))
	require.NoError(err)
	require.Equal(Integer(3), v)
	require.Equal(3, n)

	_, err = Decode([]byte{})
	require.ErrorIs(err, ErrUnexpectedEnd)

	_, err = Decode([]byte("x"))
	require.ErrorIs(err, ErrUnknownMarker)

	_, err = Decode([]byte("e"))
	require.ErrorIs(err, ErrUnknownMarker)
}

func TestDecodeErrorPosition(t *testing.T) {
	require := require.New(t)

	_, err := Decode([]byte("l4:spamx"))
	var de *DecodeError
	require.True(errors.As(err, &de))
	require.Equal(ErrUnknownMarker, de.Kind)
	require.Equal(int64(7), de.Pos)
	require.Contains(err.Error(), "pos 7")

	_, err = Decode([]byte("d3:cow3:moo3:cowi1ee"))
	require.True(errors.As(err, &de))
	require.Equal(ErrDuplicateKey, de.Kind)
	require.Equal(int64(11), de.Pos)
}

func TestDecodeDepth(t *testing.T) {
	require := require.New(t)

	deep := strings.Repeat("l", 600) + strings.Repeat("e", 600)
	_, err := Decode([]byte(deep))
	require.ErrorIs(err, ErrDepthExceeded)

	ok := strings.Repeat("l", MaxDepth) + strings.Repeat("e", MaxDepth)
	_, err = Decode([]byte(ok))
	require.NoError(err)

	shallow := NewDecoder(WithMaxDepth(2))
	_, err = shallow.Decode([]byte("llee"))
	require.NoError(err)
	_, err = shallow.Decode([]byte("ld1:alleee"))
	require.ErrorIs(err, ErrDepthExceeded)
}
