// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBlocks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []Block
	}{
		{
			name: "headings lists and paragraphs in order",
			html: `<html><head><title>ignored</title><style>p{}</style></head><body>
<h1>Top</h1>
<div>loose   text<p>para <b>bold</b></p></div>
<ul><li>one</li><li>two<br>lines</li></ul>
<table><tr><td>cell</td></tr></table>
<p>   </p>
</body></html>`,
			want: []Block{
				{Kind: KindHeading, Text: "Top"},
				{Kind: KindNormal, Text: "loose text"},
				{Kind: KindNormal, Text: "para bold"},
				{Kind: KindList, Text: "one"},
				{Kind: KindList, Text: "two lines"},
				{Kind: KindNormal, Text: "cell"},
			},
		},
		{
			name: "all heading levels",
			html: `<h2>b</h2><h3>c</h3><h4>d</h4><h5>e</h5><h6>f</h6>`,
			want: []Block{
				{Kind: KindHeading, Text: "b"},
				{Kind: KindHeading, Text: "c"},
				{Kind: KindHeading, Text: "d"},
				{Kind: KindHeading, Text: "e"},
				{Kind: KindHeading, Text: "f"},
			},
		},
		{
			name: "fragment without body",
			html: `plain words`,
			want: []Block{{Kind: KindNormal, Text: "plain words"}},
		},
		{
			name: "inline element alone in a container",
			html: `<div><span>Hello world</span></div>`,
			want: []Block{{Kind: KindNormal, Text: "Hello world"}},
		},
		{
			name: "inline element leading loose body text",
			html: `<body><strong>Bold intro</strong> then plain</body>`,
			want: []Block{{Kind: KindNormal, Text: "Bold intro then plain"}},
		},
		{
			name: "inline element inside loose text",
			html: `<div>Text <em>emph</em> more</div>`,
			want: []Block{{Kind: KindNormal, Text: "Text emph more"}},
		},
		{
			name: "inline runs split by block elements",
			html: `<section><a href="#">link</a> before<h2>Head</h2>after <i>it</i><div>inner</div></section>`,
			want: []Block{
				{Kind: KindNormal, Text: "link before"},
				{Kind: KindHeading, Text: "Head"},
				{Kind: KindNormal, Text: "after it"},
				{Kind: KindNormal, Text: "inner"},
			},
		},
		{
			name: "no text",
			html: `<html><body><script>var x = 1;</script><p></p></body></html>`,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBlocks(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
