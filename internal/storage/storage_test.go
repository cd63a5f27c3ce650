package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key  string
		want error
	}{
		{"products/shoe.png", nil},
		{"logo.svg", nil},
		{"", ErrInvalidKey},
		{"   ", ErrInvalidKey},
		{"/etc/passwd", ErrInvalidKey},
		{"a/../b.png", ErrInvalidKey},
		{"a//b.png", ErrInvalidKey},
		{"https://evil.example/x.png", ErrInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateKey(tt.key))
		})
	}
}
