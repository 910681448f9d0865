package obfuscate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	enc := New("secret")

	for _, id := range []string{
		"dQw4w9WgXcQ",
		"https://player.vimeo.com/video/76979871",
		"ünïcødé/视频",
		"a",
	} {
		encoded := enc.Encode(id)
		assert.True(t, enc.IsEncoded(encoded))
		assert.NotContains(t, encoded, id)
		assert.Equal(t, id, enc.Decode(encoded))
	}
}

func TestDecodePassesThroughLegacyValues(t *testing.T) {
	enc := New("secret")

	assert.Equal(t, "dQw4w9WgXcQ", enc.Decode("dQw4w9WgXcQ"))
	assert.Equal(t, "", enc.Decode(""))
	assert.Equal(t, "vx1:***", enc.Decode("vx1:***"))
}

func TestDifferentKeysProduceDifferentTokens(t *testing.T) {
	a := New("one").Encode("lesson-video")
	b := New("two").Encode("lesson-video")

	assert.NotEqual(t, a, b)
}

func TestEncodeEmpty(t *testing.T) {
	assert.Equal(t, "", New("k").Encode(""))
}
