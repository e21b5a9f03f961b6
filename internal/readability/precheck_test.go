package readability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProbablyReadable(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 200)
	repeat := func(format string, n int) string {
		return strings.Repeat(strings.ReplaceAll(format, "%s", long), n)
	}

	tests := []struct {
		name string
		body string
		opts *PrecheckOptions
		want bool
	}{
		{"single short paragraph", "<p>" + strings.Repeat("a", 50) + "</p>", nil, false},
		{"three long paragraphs", repeat("<p>%s</p>", 3), nil, true},
		{"two long paragraphs", repeat("<p>%s</p>", 2), nil, false},
		{"hidden paragraphs", repeat(`<p style="display:none">%s</p>`, 3), nil, false},
		{"hidden attribute", repeat(`<p hidden>%s</p>`, 3), nil, false},
		{"aria hidden", repeat(`<p aria-hidden="true">%s</p>`, 3), nil, false},
		{"unlikely class", repeat(`<p class="comment">%s</p>`, 3), nil, false},
		{"unlikely but maybe", repeat(`<p class="comment article">%s</p>`, 3), nil, true},
		{"list paragraphs", "<ul>" + repeat("<li><p>%s</p></li>", 3) + "</ul>", nil, false},
		{"br paragraphs", repeat("<div>%s<br>more</div>", 3), nil, true},
		{"custom thresholds", "<p>" + long + "</p>", &PrecheckOptions{MinContentLength: 100, MinScore: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := parseDoc(t, "<html><body>"+tt.body+"</body></html>")
			assert.Equal(t, tt.want, IsProbablyReadable(doc, tt.opts))
		})
	}
}
