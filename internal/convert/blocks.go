// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BlockKind tags a text block with the style it is laid out in.
type BlockKind string

const (
	KindHeading BlockKind = "heading"
	KindList    BlockKind = "list"
	KindNormal  BlockKind = "normal"
)

// Block is one run of text extracted from converted HTML.
type Block struct {
	Kind BlockKind
	Text string
}

// ExtractBlocks walks an HTML document in order and returns its text
// blocks. Headings h1 to h6 become heading blocks, list items become list
// blocks, and paragraphs and other block-level text become normal blocks.
// Blocks with no visible text are dropped.
func ExtractBlocks(source string) ([]Block, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	var blocks []Block
	walkHTML(doc, &blocks)
	return blocks, nil
}

// containers hold block-level children. Text and inline elements between
// them form normal blocks.
var containers = map[atom.Atom]bool{
	atom.Html: true, atom.Body: true, atom.Div: true, atom.Section: true,
	atom.Article: true, atom.Main: true, atom.Header: true, atom.Footer: true,
	atom.Nav: true, atom.Aside: true, atom.Address: true, atom.Figure: true,
	atom.Form: true, atom.Fieldset: true, atom.Details: true, atom.Center: true,
	atom.Ul: true, atom.Ol: true, atom.Dl: true, atom.Table: true,
	atom.Thead: true, atom.Tbody: true, atom.Tfoot: true, atom.Tr: true,
	atom.Hr: true,
}

func skipped(n *html.Node) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Head, atom.Script, atom.Style, atom.Template:
		return true
	}
	return false
}

func walkHTML(n *html.Node, blocks *[]Block) {
	if skipped(n) {
		return
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			appendBlock(blocks, KindHeading, extractText(n))
			return
		case atom.Li:
			appendBlock(blocks, KindList, extractText(n))
			return
		case atom.P, atom.Pre, atom.Blockquote, atom.Dt, atom.Dd, atom.Td, atom.Th, atom.Caption, atom.Figcaption:
			appendBlock(blocks, KindNormal, extractText(n))
			return
		}
	}

	// Consecutive text and inline children form one normal block, closed
	// by the next block-level child.
	var run strings.Builder
	flush := func() {
		appendBlock(blocks, KindNormal, collapseSpace(run.String()))
		run.Reset()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			continue
		}
		if isInline(c) {
			writeText(c, &run)
			continue
		}
		flush()
		walkHTML(c, blocks)
	}
	flush()
}

func isInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		if skipped(n) || containers[n.DataAtom] {
			return false
		}
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Li,
			atom.P, atom.Pre, atom.Blockquote, atom.Dt, atom.Dd, atom.Td, atom.Th,
			atom.Caption, atom.Figcaption:
			return false
		}
		return true
	}
	return false
}

func appendBlock(blocks *[]Block, kind BlockKind, text string) {
	if text == "" {
		return
	}
	*blocks = append(*blocks, Block{Kind: kind, Text: text})
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	writeText(n, &sb)
	return collapseSpace(sb.String())
}

func writeText(n *html.Node, sb *strings.Builder) {
	switch {
	case skipped(n):
		return
	case n.Type == html.TextNode:
		sb.WriteString(n.Data)
	case n.Type == html.ElementNode && n.DataAtom == atom.Br:
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, sb)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
