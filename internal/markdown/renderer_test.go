package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	r := NewRenderer(nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "blank", in: "  \n", want: ""},
		{name: "emphasis", in: "**hi**", want: "<p><strong>hi</strong></p>"},
		{name: "strikethrough", in: "~~old~~", want: "<p><del>old</del></p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(1, tt.in))
		})
	}
}

func TestRenderStripsScripts(t *testing.T) {
	out := NewRenderer(nil).Render(1, "hello <script>alert(1)</script>")
	assert.Contains(t, out, "hello")
	assert.NotContains(t, out, "<script>")
}

func TestRenderLinkifiesURLs(t *testing.T) {
	out := NewRenderer(nil).Render(1, "see https://example.com")
	assert.Contains(t, out, `href="https://example.com"`)
}
