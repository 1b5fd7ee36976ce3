package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWireShape(t *testing.T) {
	raw, err := NewClipboard("hello", "laptop").Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"clipboard","text":"hello","source":"laptop"}`, string(raw))
}

func TestDecodeRoundTrip(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"clipboard","text":"copied text","source":"relay"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeClipboard, msg.Type)
	assert.Equal(t, "copied text", msg.Text)
	assert.Equal(t, "relay", msg.Source)
}

func TestDecodeUnknownTypeIsNotAnError(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"presence","peers":3}`))
	require.NoError(t, err)
	assert.NotEqual(t, TypeClipboard, msg.Type)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	require.Error(t, err)
}
