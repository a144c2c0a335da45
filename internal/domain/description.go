package domain

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ScrapeAttributes collects every td cell of an HTML fragment in document order
// and pairs them up as label, value, label, value. A repeated label keeps its
// last value.
//
// On an odd cell count the trailing cell is dropped and the returned error wraps
// ErrUnpairedCell alongside the otherwise complete table.
func ScrapeAttributes(fragment string) (AttributeTable, error) {
	cells, err := tableCells(fragment)
	if err != nil {
		return nil, err
	}

	attrs := make(AttributeTable, len(cells)/2)
	for i := 0; i+1 < len(cells); i += 2 {
		attrs[cells[i]] = cells[i+1]
	}

	if len(cells)%2 != 0 {
		return attrs, fmt.Errorf("%w: %q", ErrUnpairedCell, cells[len(cells)-1])
	}
	return attrs, nil
}

// openCell is a td that has started but not yet ended.
type openCell struct {
	index int
	depth int // table nesting depth at the time the cell opened
}

// tableCells tokenizes the fragment rather than building an HTML5 tree: the
// tree builder drops td tags that are not inside a table, and FIRMS
// descriptions are not guaranteed to wrap their cells in one.
//
// A cell's text is its whitespace-trimmed text nodes joined without a
// separator. Text inside a nested cell counts toward every enclosing cell.
func tableCells(fragment string) ([]string, error) {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var (
		cells []string
		open  []openCell
		depth int
	)

	// closeFrom ends every open cell that belongs to table depth d or deeper.
	closeFrom := func(d int) {
		for len(open) > 0 && open[len(open)-1].depth >= d {
			open = open[:len(open)-1]
		}
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("scan description: %w", err)
			}
			return cells, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Table:
				if tt == html.StartTagToken {
					depth++
				}
			case atom.Tr:
				closeFrom(depth)
			case atom.Td:
				// A new cell implicitly ends the previous one in the same table.
				closeFrom(depth)
				cells = append(cells, "")
				if tt == html.StartTagToken {
					open = append(open, openCell{index: len(cells) - 1, depth: depth})
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Td:
				if len(open) > 0 {
					open = open[:len(open)-1]
				}
			case atom.Tr:
				closeFrom(depth)
			case atom.Table:
				closeFrom(depth)
				if depth > 0 {
					depth--
				}
			}

		case html.TextToken:
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			for _, c := range open {
				cells[c.index] += text
			}
		}
	}
}
