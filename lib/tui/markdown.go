// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// The goldmark parser is configuration-free here and safe to share;
// per-call state lives in the reader passed to Parse.
var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func parser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New()
	})
	return markdownParser
}

// RenderMarkdown renders a ticket description as styled terminal
// text, word-wrapped to width. Soft line breaks inside paragraphs
// become spaces so hard-wrapped source reflows at any terminal width.
// Headings render bold, code spans and blocks faint, lists with
// bullets. Anything fancier passes through as plain text.
func RenderMarkdown(input string, theme Theme, width int) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if width < 16 {
		width = 16
	}
	source := []byte(input)
	document := parser().Parser().Parse(text.NewReader(source))

	renderer := &markdownRenderer{source: source, theme: theme, width: width}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

// markdownRenderer walks the goldmark AST accumulating inline content
// per block, then wrapping each block as a unit when it closes.
type markdownRenderer struct {
	source []byte
	theme  Theme
	width  int

	output strings.Builder
	inline strings.Builder

	boldDepth     int
	italicDepth   int
	listDepth     int
	itemNumber    []int // per-depth ordered-list counters, 0 for bulleted
	pendingBullet bool  // the next flushed block starts a list item
}

func (renderer *markdownRenderer) indent() string {
	return strings.Repeat("  ", renderer.listDepth)
}

func (renderer *markdownRenderer) flushBlock(style lipgloss.Style, bullet string) {
	content := renderer.inline.String()
	renderer.inline.Reset()
	if strings.TrimSpace(ansi.Strip(content)) == "" {
		return
	}
	prefix := renderer.indent() + bullet
	wrapped := ansi.Wrap(style.Render(content), renderer.width-ansi.StringWidth(prefix), " ,.;-")
	continuation := strings.Repeat(" ", ansi.StringWidth(prefix))
	for index, line := range strings.Split(wrapped, "\n") {
		if index == 0 {
			renderer.output.WriteString(prefix)
		} else {
			renderer.output.WriteString(continuation)
		}
		renderer.output.WriteString(line)
		renderer.output.WriteString("\n")
	}
	if renderer.listDepth == 0 {
		renderer.output.WriteString("\n")
	}
}

func (renderer *markdownRenderer) textStyle() lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(renderer.theme.NormalText)
	if renderer.boldDepth > 0 {
		style = style.Bold(true)
	}
	if renderer.italicDepth > 0 {
		style = style.Italic(true)
	}
	return style
}

func (renderer *markdownRenderer) bullet() string {
	if renderer.listDepth == 0 || !renderer.pendingBullet {
		return ""
	}
	renderer.pendingBullet = false
	number := renderer.itemNumber[renderer.listDepth-1]
	if number > 0 {
		renderer.itemNumber[renderer.listDepth-1]++
		return fmt.Sprintf("%d. ", number)
	}
	return "- "
}

func (renderer *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch typed := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			renderer.inline.Reset()
		} else {
			renderer.flushBlock(renderer.textStyle(), renderer.bullet())
		}

	case *ast.Heading:
		if entering {
			renderer.inline.Reset()
		} else {
			style := lipgloss.NewStyle().Bold(true).Foreground(renderer.theme.HeaderForeground)
			content := ansi.Strip(renderer.inline.String())
			renderer.inline.Reset()
			renderer.inline.WriteString(content)
			renderer.flushBlock(style, "")
		}

	case *ast.List:
		if entering {
			start := 0
			if typed.IsOrdered() {
				start = typed.Start
			}
			renderer.listDepth++
			renderer.itemNumber = append(renderer.itemNumber, start)
		} else {
			renderer.listDepth--
			renderer.itemNumber = renderer.itemNumber[:renderer.listDepth]
			if renderer.listDepth == 0 {
				renderer.output.WriteString("\n")
			}
		}

	case *ast.ListItem:
		if entering {
			renderer.pendingBullet = true
		}

	case *ast.FencedCodeBlock:
		if entering {
			renderer.writeCodeLines(node, string(typed.Language(renderer.source)))
			return ast.WalkSkipChildren, nil
		}

	case *ast.CodeBlock:
		if entering {
			renderer.writeCodeLines(node, "")
			return ast.WalkSkipChildren, nil
		}

	case *ast.Blockquote:
		// Rendered as an indented block; goldmark walks the children.

	case *ast.Text:
		if entering {
			renderer.inline.WriteString(renderer.textStyle().Render(string(typed.Segment.Value(renderer.source))))
			if typed.SoftLineBreak() {
				renderer.inline.WriteString(" ")
			}
			if typed.HardLineBreak() {
				renderer.inline.WriteString("\n")
			}
		}

	case *ast.String:
		if entering {
			renderer.inline.WriteString(renderer.textStyle().Render(string(typed.Value)))
		}

	case *ast.Emphasis:
		if typed.Level >= 2 {
			if entering {
				renderer.boldDepth++
			} else {
				renderer.boldDepth--
			}
		} else {
			if entering {
				renderer.italicDepth++
			} else {
				renderer.italicDepth--
			}
		}

	case *ast.CodeSpan:
		if entering {
			var code strings.Builder
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				if textNode, ok := child.(*ast.Text); ok {
					code.Write(textNode.Segment.Value(renderer.source))
				}
			}
			faint := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)
			renderer.inline.WriteString(faint.Render(code.String()))
			return ast.WalkSkipChildren, nil
		}

	case *ast.Link:
		// Children write the display text; append the destination
		// when the node closes.
		if !entering {
			if destination := string(typed.Destination); destination != "" {
				faint := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)
				renderer.inline.WriteString(" " + faint.Render("("+destination+")"))
			}
		}

	case *ast.AutoLink:
		if entering {
			faint := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)
			renderer.inline.WriteString(faint.Render(string(typed.URL(renderer.source))))
		}
	}

	return ast.WalkContinue, nil
}

// writeCodeLines emits a code block verbatim, no wrapping. Fenced
// blocks with a language tag are syntax-highlighted; everything else
// renders faint.
func (renderer *markdownRenderer) writeCodeLines(node ast.Node, language string) {
	var code strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		code.Write(segment.Value(renderer.source))
	}
	rendered := renderer.highlightCode(strings.TrimRight(code.String(), "\n"), language)
	for _, line := range strings.Split(rendered, "\n") {
		renderer.output.WriteString(renderer.indent() + "  " + line + "\n")
	}
	renderer.output.WriteString("\n")
}

// highlightCode uses chroma to syntax-highlight code. Returns
// ANSI-styled text on success, or FaintText-styled plain text on
// failure (no language tag, chroma error).
func (renderer *markdownRenderer) highlightCode(code, language string) string {
	faint := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)
	if language == "" {
		return faint.Render(code)
	}
	var buffer strings.Builder
	if err := quick.Highlight(&buffer, code, language, "terminal256", "monokai"); err != nil {
		return faint.Render(code)
	}
	return strings.TrimRight(buffer.String(), "\n")
}
