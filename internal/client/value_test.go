package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_RoundTripPreservesOrder(t *testing.T) {
	// Key order differs from lexical order on purpose.
	in := `{"zeta":1,"alpha":{"y":true,"x":[1,"two",null]},"mid":"s"}`

	var v Value
	require.NoError(t, json.Unmarshal([]byte(in), &v))

	out, err := json.Marshal(&v)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestValue_PreservesNumberLiterals(t *testing.T) {
	cases := []string{
		`{"threshold":0.95}`,
		`{"count":1e3}`,
		`{"big":9007199254740993}`,
	}
	for _, in := range cases {
		var v Value
		require.NoError(t, json.Unmarshal([]byte(in), &v))
		out, err := json.Marshal(&v)
		require.NoError(t, err)
		assert.Equal(t, in, string(out))
	}
}

func TestValue_Kinds(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"s":"str","n":42,"b":false,"nil":null,"seq":[],"map":{}}`), &v))

	require.Equal(t, KindMapping, v.Kind())
	assert.Equal(t, []string{"s", "n", "b", "nil", "seq", "map"}, v.Keys())

	s, ok := v.Field("s")
	require.True(t, ok)
	assert.Equal(t, KindString, s.Kind())
	assert.Equal(t, "str", s.Str())

	n, _ := v.Field("n")
	assert.Equal(t, KindNumber, n.Kind())
	assert.Equal(t, "42", n.Num())

	b, _ := v.Field("b")
	assert.Equal(t, KindBool, b.Kind())
	assert.False(t, b.Bool())

	null, _ := v.Field("nil")
	assert.Equal(t, KindNull, null.Kind())

	seq, _ := v.Field("seq")
	assert.Equal(t, KindSequence, seq.Kind())
	assert.Empty(t, seq.Items())
}

func TestValue_EmptyMapping(t *testing.T) {
	out, err := json.Marshal(EmptyMapping())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestValue_StringEscaping(t *testing.T) {
	in := `{"msg":"line1\nline2 \"quoted\""}`
	var v Value
	require.NoError(t, json.Unmarshal([]byte(in), &v))
	out, err := json.Marshal(&v)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}
