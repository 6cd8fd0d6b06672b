package store

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	key := encodeKeysetKey("task-42")

	token := EncodeToken(key)
	decoded, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken(%q) failed: %v", token, err)
	}
	if string(decoded) != string(key) {
		t.Errorf("round trip changed key: %q != %q", decoded, key)
	}

	id, err := decodeKeysetKey(decoded)
	if err != nil {
		t.Fatalf("decodeKeysetKey failed: %v", err)
	}
	if id != "task-42" {
		t.Errorf("cursor id = %q, want task-42", id)
	}
}

func TestDecodeToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "not-base64!!!"},
		{"base64 of non-JSON", base64.StdEncoding.EncodeToString([]byte("plain text"))},
		{"url-safe alphabet", "eyJpZCI6In_-In0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("DecodeToken(%q) error = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}

func TestWellFormedToken(t *testing.T) {
	valid := EncodeToken(encodeKeysetKey("abc"))

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"canonical token", valid, true},
		{"empty string decodes to empty key", "", false},
		{"not base64", "not-base64!!!", false},
		{"non-JSON payload", base64.StdEncoding.EncodeToString([]byte("hello")), false},
		{"non-canonical padding bits", "QR==", false},
		{"missing padding", valid[:len(valid)-1], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WellFormedToken(tt.token); got != tt.want {
				t.Errorf("WellFormedToken(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestDecodeKeysetKey(t *testing.T) {
	if id, err := decodeKeysetKey(nil); err != nil || id != "" {
		t.Errorf("nil key: id=%q err=%v, want empty start position", id, err)
	}
	if _, err := decodeKeysetKey(Key(`{"id":`)); err == nil {
		t.Error("truncated cursor accepted")
	}
}
