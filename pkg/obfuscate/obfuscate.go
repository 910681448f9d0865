// Package obfuscate hides video identifiers from casual inspection in the
// browser. It is a reversible XOR + base64 transform, not encryption.
package obfuscate

import (
	"encoding/base64"
	"strings"
)

const Prefix = "vx1:"

type Encoder struct {
	key []byte
}

func New(key string) *Encoder {
	if key == "" {
		key = "viral-academy"
	}
	return &Encoder{key: []byte(key)}
}

func (e *Encoder) Encode(value string) string {
	if value == "" {
		return ""
	}
	return Prefix + base64.RawURLEncoding.EncodeToString(e.xor([]byte(value)))
}

// Decode reverses Encode. Values without the prefix, and prefixed values that
// are not valid base64, are returned unchanged so raw legacy ids keep working.
func (e *Encoder) Decode(value string) string {
	payload, ok := strings.CutPrefix(value, Prefix)
	if !ok {
		return value
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return value
	}
	return string(e.xor(raw))
}

func (e *Encoder) IsEncoded(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

func (e *Encoder) xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ e.key[i%len(e.key)]
	}
	return out
}
