// Package extract turns uploaded file bytes into page-addressed text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Content is the extracted text of one document, keyed by 1-based page number.
type Content struct {
	Pages     map[int]string
	PageCount int
}

// Error marks a file that could not be read as text.
type Error struct {
	Filename string
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction failed for %s: %s", e.Filename, e.Reason)
}

// TextExtractor reads plain-text content and splits it into pages.
// Files without explicit page breaks are chunked at paragraph boundaries
// once a page passes charsPerPage characters.
type TextExtractor struct {
	charsPerPage int
}

// DefaultCharsPerPage approximates one printed page (~500 words).
const DefaultCharsPerPage = 3000

// NewTextExtractor creates an extractor with the given page size.
// charsPerPage <= 0 selects the default.
func NewTextExtractor(charsPerPage int) *TextExtractor {
	if charsPerPage <= 0 {
		charsPerPage = DefaultCharsPerPage
	}
	return &TextExtractor{charsPerPage: charsPerPage}
}

// Extract validates the raw bytes and splits them into numbered pages.
// Binary payloads fail with *Error so the pipeline records the document
// as failed instead of classifying garbage.
func (e *TextExtractor) Extract(ctx context.Context, data []byte, filename string) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &Error{Filename: filename, Reason: "file is empty"}
	}
	if bytes.ContainsRune(data, 0) || !utf8.Valid(data) {
		return nil, &Error{Filename: filename, Reason: "unsupported or binary file format"}
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	pages := make(map[int]string)
	page := 1
	var current []string
	var chars int

	for _, para := range strings.Split(text, "\n\n") {
		current = append(current, para)
		chars += len(para)
		if chars >= e.charsPerPage {
			pages[page] = strings.Join(current, "\n\n")
			page++
			current = nil
			chars = 0
		}
	}
	if len(current) > 0 {
		pages[page] = strings.Join(current, "\n\n")
	}

	return &Content{Pages: pages, PageCount: len(pages)}, nil
}
