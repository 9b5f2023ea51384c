package bencode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderJSON(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"i3e", `3`},
		{"i-52e", `-52`},
		{"1:3", `"3"`},
		{"5:hello", `"hello"`},
		{"5:a<b>c", `"a<b>c"`},
		{"le", `[]`},
		{"l5:helloi52ee", `["hello",52]`},
		{"de", `{}`},
		{"d3:foo3:bar5:helloi52ee", `{"foo":"bar","hello":52}`},
		{"d5:hello3:bar3:fooi1ee", `{"foo":1,"hello":"bar"}`},
		{"d10:inner_dictd4:key16:value14:key2i42e8:list_keyl5:item15:item2i3eeee",
			`{"inner_dict":{"key1":"value1","key2":42,"list_key":["item1","item2",3]}}`},
		{"4:\xde\xad\xbe\xef", `{"$binary":"deadbeef"}`},
		{"d2:\xff\x00i1ee", `{"$binary:ff00":1}`},
		{"2:\"\n", `"\"\n"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require := require.New(t)
			v, err := Decode([]byte(tt.input))
			require.NoError(err)
			out, err := RenderJSON(v)
			require.NoError(err)
			require.Equal(tt.want, string(out))
		})
	}
}

func TestRenderNil(t *testing.T) {
	_, err := RenderJSON(List{nil})
	require.ErrorIs(t, err, ErrUnencodable)
}
