package stream

import (
	"errors"
	"strings"
	"testing"
)

func TestSplitterCompleteLines(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
	}{
		{
			name:   "single LF line",
			chunks: []string{"OK\n"},
			want:   []string{"OK"},
		},
		{
			name:   "single CRLF line",
			chunks: []string{"+CEREG: 0,1\r\n"},
			want:   []string{"+CEREG: 0,1"},
		},
		{
			name:   "multiple lines one chunk",
			chunks: []string{"%XVBAT: 5046\r\nOK\r\n"},
			want:   []string{"%XVBAT: 5046", "OK"},
		},
		{
			name:   "line split across chunks",
			chunks: []string{"%XTE", "MP: 25\r", "\nOK\r\n"},
			want:   []string{"%XTEMP: 25", "OK"},
		},
		{
			name:   "empty line preserved",
			chunks: []string{"\r\nOK\r\n"},
			want:   []string{"", "OK"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSplitter()
			var got []string
			for _, chunk := range tt.chunks {
				lines, err := s.Push([]byte(chunk))
				if err != nil {
					t.Fatalf("Push failed: %v", err)
				}
				got = append(got, lines...)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
			if s.Pending() != 0 {
				t.Errorf("pending = %d, want 0", s.Pending())
			}
		})
	}
}

func TestSplitterHoldsPartialFragment(t *testing.T) {
	s := NewSplitter()

	lines, err := s.Push([]byte("partial without terminat"))
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("partial fragment emitted as line: %v", lines)
	}
	if s.Pending() == 0 {
		t.Fatal("fragment not buffered")
	}

	// Reset must discard the fragment so it cannot merge into later input.
	s.Reset()
	lines, err = s.Push([]byte("OK\r\n"))
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if len(lines) != 1 || lines[0] != "OK" {
		t.Errorf("after Reset got %v, want [OK]", lines)
	}
}

func TestSplitterLineTooLong(t *testing.T) {
	s := NewSplitterWithMaxSize(16)
	_, err := s.Push([]byte(strings.Repeat("x", 17)))
	if !errors.Is(err, ErrLineTooLong) {
		t.Errorf("expected ErrLineTooLong, got %v", err)
	}
	if s.Pending() != 0 {
		t.Errorf("oversized fragment retained after error")
	}
}
