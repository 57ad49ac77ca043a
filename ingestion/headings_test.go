package ingestion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blog-ingest/ingestion"
)

func TestNormalizeHeadings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips h1 and h2 attributes",
			in:   `<h1 class="title" style="color:red">A</h1><h2 id="x">B</h2>`,
			want: `<h1>A</h1><h2>B</h2>`,
		},
		{
			name: "keeps other tags byte for byte",
			in:   `<h3 class="keep">C</h3><p style="margin: 1rem">D &amp; E</p>`,
			want: `<h3 class="keep">C</h3><p style="margin: 1rem">D &amp; E</p>`,
		},
		{
			name: "does not touch inline payloads",
			in:   `<h1 data-x="1">T</h1><img src="data:image/png;base64,AAAA">`,
			want: `<h1>T</h1><img src="data:image/png;base64,AAAA">`,
		},
		{
			name: "plain heading unchanged",
			in:   `<h2>Already clean</h2>`,
			want: `<h2>Already clean</h2>`,
		},
		{
			name: "empty",
			in:   ``,
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ingestion.NormalizeHeadings(tt.in))
		})
	}
}
