package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"anchor", `see <a href="https://example.com/page">this</a>`, "see [this](https://example.com/page)"},
		{"paragraphs", "<p>first</p><p>second</p>", "first\nsecond"},
		{"line breaks", "one<br>two", "one\ntwo"},
		{"nested markup", "<div><strong>bold</strong> text</div>", "bold text"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMarkdown(tt.in))
		})
	}
}

func TestToPlain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"anchor flattened", `see <a href="https://example.com/page">this</a>`, "see this"},
		{"entities decoded", "fish &amp; chips", "fish & chips"},
		{"markup dropped", "<p><em>hi</em> there</p>", "hi there"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToPlain(tt.in))
		})
	}
}
