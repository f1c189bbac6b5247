package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		wantPages int
		wantErr   bool
	}{
		{
			name:      "Short Text Is One Page",
			data:      []byte("hello world\n\nsecond paragraph"),
			wantPages: 1,
		},
		{
			name:      "Long Text Splits Into Pages",
			data:      []byte(strings.Repeat("paragraph of filler text here\n\n", 300)),
			wantPages: 3,
		},
		{
			name:    "Empty File",
			data:    []byte("   \n  "),
			wantErr: true,
		},
		{
			name:    "Binary Content",
			data:    []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0x01, 0x02},
			wantErr: true,
		},
		{
			name:    "Invalid UTF8",
			data:    []byte{0xff, 0xfe, 0x41},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewTextExtractor(DefaultCharsPerPage)
			content, err := e.Extract(context.Background(), tt.data, "test.txt")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var extractErr *Error
				if !errors.As(err, &extractErr) {
					t.Errorf("error type = %T, want *Error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if content.PageCount != tt.wantPages {
				t.Errorf("PageCount = %d, want %d", content.PageCount, tt.wantPages)
			}
			if len(content.Pages) != tt.wantPages {
				t.Errorf("got %d page entries, want %d", len(content.Pages), tt.wantPages)
			}
			if _, ok := content.Pages[1]; !ok {
				t.Error("pages are not 1-based")
			}
		})
	}
}

func TestExtract_SmallPageSize(t *testing.T) {
	e := NewTextExtractor(10)
	content, err := e.Extract(context.Background(), []byte("aaaaaaaaaaaa\n\nbbbbbbbbbbbb\n\ncc"), "test.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", content.PageCount)
	}
}
