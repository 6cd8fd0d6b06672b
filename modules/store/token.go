package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// ErrInvalidToken is returned when a pagination token cannot be decoded.
var ErrInvalidToken = errors.New("invalid pagination token")

// EncodeToken turns a continuation key into the opaque client-facing token:
// standard base64 over the key's JSON bytes.
func EncodeToken(k Key) string {
	return base64.StdEncoding.EncodeToString(k)
}

// DecodeToken is the inverse of EncodeToken. The decoded bytes must parse
// as JSON; the key's internal shape is left to the store backend.
func DecodeToken(token string) (Key, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !json.Valid(raw) {
		return nil, ErrInvalidToken
	}
	return Key(raw), nil
}

// WellFormedToken reports whether token is a canonical base64 encoding of a
// JSON payload. Decoding and re-encoding must reproduce the input exactly,
// which rejects alternate alphabets, stray padding and whitespace variants
// without assuming anything about the key's structure.
func WellFormedToken(token string) bool {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	if base64.StdEncoding.EncodeToString(raw) != token {
		return false
	}
	return json.Valid(raw)
}
