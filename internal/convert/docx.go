// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/pagecraft/pkg/types"
)

const (
	documentPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	// maxDocumentPart caps the decompressed size of the main document part.
	maxDocumentPart = 64 * types.MiB
)

// NativeConverter reads the WordprocessingML body of a .docx file directly
// and emits simple HTML: headings, list items and paragraphs. Formatting,
// images and tables are not reproduced.
type NativeConverter struct{}

// docxParagraph is one w:p element reduced to what the HTML output needs.
type docxParagraph struct {
	heading int // 1-6, 0 when not a heading
	list    bool
	text    string
}

// ToHTML converts a .docx archive to HTML. Content that cannot be
// represented is reported in the result's messages.
func (NativeConverter) ToHTML(ctx context.Context, data []byte) (HTMLResult, error) {
	if err := ctx.Err(); err != nil {
		return HTMLResult{}, err
	}
	part, err := readDocumentPart(data)
	if err != nil {
		return HTMLResult{}, err
	}
	paras, stats, err := parseParagraphs(part)
	if err != nil {
		return HTMLResult{}, err
	}

	var b strings.Builder
	inList := false
	for _, p := range paras {
		if p.list != inList {
			if p.list {
				b.WriteString("<ul>\n")
			} else {
				b.WriteString("</ul>\n")
			}
			inList = p.list
		}
		text := html.EscapeString(p.text)
		switch {
		case p.list:
			fmt.Fprintf(&b, "<li>%s</li>\n", text)
		case p.heading > 0:
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", p.heading, text, p.heading)
		default:
			fmt.Fprintf(&b, "<p>%s</p>\n", text)
		}
	}
	if inList {
		b.WriteString("</ul>\n")
	}

	var msgs []string
	if stats.images > 0 {
		msgs = append(msgs, fmt.Sprintf("%d image(s) omitted", stats.images))
	}
	if stats.tables > 0 {
		msgs = append(msgs, fmt.Sprintf("%d table(s) flattened to paragraphs", stats.tables))
	}
	return HTMLResult{HTML: b.String(), Messages: msgs}, nil
}

// ValidateDocx checks that data is a readable .docx archive by extracting
// its raw text.
func ValidateDocx(data []byte) error {
	_, err := RawText(data)
	return err
}

// RawText returns the plain text of a .docx archive, one line per
// non-empty paragraph.
func RawText(data []byte) (string, error) {
	part, err := readDocumentPart(data)
	if err != nil {
		return "", err
	}
	paras, _, err := parseParagraphs(part)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(paras))
	for i, p := range paras {
		lines[i] = p.text
	}
	return strings.Join(lines, "\n"), nil
}

func readDocumentPart(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a .docx archive: %v", types.ErrUnsupportedType, err)
	}
	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", types.ErrSourceRead, documentPart, err)
		}
		defer rc.Close()
		part, err := io.ReadAll(io.LimitReader(rc, maxDocumentPart+1))
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", types.ErrSourceRead, documentPart, err)
		}
		if int64(len(part)) > maxDocumentPart {
			return nil, fmt.Errorf("%w: %s exceeds %s", types.ErrFileTooLarge, documentPart, types.FormatSize(maxDocumentPart))
		}
		return part, nil
	}
	return nil, fmt.Errorf("%w: archive has no %s", types.ErrUnsupportedType, documentPart)
}

type docxStats struct {
	images int
	tables int
}

func parseParagraphs(part []byte) ([]docxParagraph, docxStats, error) {
	var (
		paras  []docxParagraph
		stats  docxStats
		cur    *docxParagraph
		text   strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(bytes.NewReader(part))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("%w: malformed %s: %v", types.ErrSourceRead, documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				cur = &docxParagraph{}
				text.Reset()
			case "pStyle":
				if cur != nil {
					style := attr(t, "val")
					cur.heading = headingLevel(style)
					if isListStyle(style) {
						cur.list = true
					}
				}
			case "numPr":
				if cur != nil {
					cur.list = true
				}
			case "t":
				inText = true
			case "tab", "br", "cr":
				text.WriteByte(' ')
			case "drawing", "pict":
				stats.images++
			case "tbl":
				stats.tables++
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if cur != nil {
					cur.text = collapseSpace(text.String())
					if cur.text != "" {
						paras = append(paras, *cur)
					}
				}
				cur = nil
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}
	return paras, stats, nil
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// isListStyle reports whether style is one of Word's list paragraph
// styles: ListParagraph, ListBullet, ListNumber2 and so on.
func isListStyle(style string) bool {
	return strings.HasPrefix(strings.ToLower(style), "list")
}

// headingLevel maps Word's built-in style ids to heading levels: "Title"
// and "Heading1" to 1 through "Heading6" to 6.
func headingLevel(style string) int {
	s := strings.ToLower(style)
	if s == "title" {
		return 1
	}
	if !strings.HasPrefix(s, "heading") {
		return 0
	}
	rest := strings.TrimSpace(strings.TrimPrefix(s, "heading"))
	if len(rest) != 1 || rest[0] < '1' || rest[0] > '9' {
		return 0
	}
	return min(int(rest[0]-'0'), 6)
}
