package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDocument_Validate tests document validation rules
func TestDocument_Validate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr bool
	}{
		{"path document", DocumentFromPath("/tmp/papers/a.pdf"), false},
		{"upload document", Document{Name: "upload.pdf", Data: []byte("%PDF")}, false},
		{"missing name", Document{Path: "/x.pdf"}, true},
		{"blank name", Document{Name: "  ", Path: "/x.pdf"}, true},
		{"no content", Document{Name: "x.pdf"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestDocumentFromPath tests the name is the file's base name
func TestDocumentFromPath(t *testing.T) {
	doc := DocumentFromPath("/tmp/papers/attention.pdf")

	assert.Equal(t, "attention.pdf", doc.Name)
	assert.Equal(t, "/tmp/papers/attention.pdf", doc.Path)
	assert.False(t, doc.HasData())
}
