package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     bool
	}{
		{"jpeg ok", "image/jpeg", 1024, false},
		{"png ok", "image/png", 1024, false},
		{"gif ok", "image/gif", 1024, false},
		{"webp ok", "image/webp", 1024, false},
		{"jpg alias ok", "image/jpg", 1024, false},
		{"at size limit", "image/png", MaxImageSize, false},
		{"over size limit", "image/png", MaxImageSize + 1, true},
		{"svg rejected", "image/svg+xml", 1024, true},
		{"pdf rejected", "application/pdf", 1024, true},
		{"empty type rejected", "", 1024, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.contentType, tt.size)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
