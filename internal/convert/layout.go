// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Page geometry in points (US Letter).
const (
	PageWidth    = 612.0
	PageHeight   = 792.0
	Margin       = 50.0
	UsableWidth  = PageWidth - 2*Margin
	BlockGap     = 5.0
	leadingExtra = 4.0

	// charWidthFactor approximates the average glyph width as a fraction of
	// the font size.
	charWidthFactor = 0.6
)

// Font sizes per block kind.
const (
	SizeTitle   = 16.0
	SizeHeading = 14.0
	SizeList    = 11.0
	SizeNormal  = 12.0
)

// FallbackNotice is the only text of a document that had no extractable
// content.
const FallbackNotice = "This document contains no extractable text content."

const listBullet = "• "

// Line is one line of text placed on a page. Y is the baseline measured
// from the top edge of the page.
type Line struct {
	Text string
	Size float64
	Bold bool
	X    float64
	Y    float64
}

// Page is one laid-out output page.
type Page struct {
	Lines []Line
}

// LineHeight returns the vertical advance of a line set at size.
func LineHeight(size float64) float64 {
	return size + leadingExtra
}

// CharBudget returns how many characters fit on one line at size.
func CharBudget(size float64) int {
	return int(math.Floor(UsableWidth / (size * charWidthFactor)))
}

func sizeFor(kind BlockKind) float64 {
	switch kind {
	case KindHeading:
		return SizeHeading
	case KindList:
		return SizeList
	default:
		return SizeNormal
	}
}

// Layout places title and blocks onto pages. The title is drawn first at
// the title size; when blocks is empty the fallback notice takes the place
// of the content. Layout always returns at least one page.
func Layout(title string, blocks []Block) []Page {
	l := &layouter{}
	l.newPage()

	if title != "" {
		l.block(title, SizeTitle, true)
	}
	if len(blocks) == 0 {
		l.block(FallbackNotice, SizeNormal, false)
		return l.pages
	}
	for _, b := range blocks {
		text := b.Text
		if b.Kind == KindList {
			text = listBullet + text
		}
		l.block(text, sizeFor(b.Kind), b.Kind == KindHeading)
	}
	return l.pages
}

type layouter struct {
	pages []Page
	y     float64 // top of the next line
}

func (l *layouter) newPage() {
	l.pages = append(l.pages, Page{})
	l.y = Margin
}

func (l *layouter) block(text string, size float64, bold bool) {
	lh := LineHeight(size)
	for _, line := range Wrap(text, CharBudget(size)) {
		if PageHeight-Margin-l.y < lh {
			l.newPage()
		}
		cur := &l.pages[len(l.pages)-1]
		cur.Lines = append(cur.Lines, Line{Text: line, Size: size, Bold: bold, X: Margin, Y: l.y + size})
		l.y += lh
	}
	l.y += BlockGap
}

// Wrap greedily packs the words of text into lines of at most budget
// characters. A word longer than budget is split at character boundaries.
func Wrap(text string, budget int) []string {
	if budget < 1 {
		budget = 1
	}
	var lines []string
	var cur string
	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > budget {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			head, rest := splitRunes(word, budget)
			lines = append(lines, head)
			word = rest
		}
		switch {
		case cur == "":
			cur = word
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(word) <= budget:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}
