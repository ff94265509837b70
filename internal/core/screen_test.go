package core

import (
	"strings"
	"testing"
)

func TestScreenTextClipping(t *testing.T) {
	s := NewScreen(6, 2)

	s.DrawTextColored(3, 0, "chain!", ColorOrange)
	s.DrawText(-2, 1, "score")

	if got, want := s.String(), "   cha\nore   "; got != want {
		t.Errorf("screen = %q, want %q", got, want)
	}
	if c := s.GetCell(4, 0); c.Rune != 'h' || c.Color != ColorOrange {
		t.Errorf("GetCell(4, 0) = %+v, want orange 'h'", c)
	}
	if c := s.GetCell(6, 0); c != blankCell {
		t.Errorf("out of bounds GetCell = %+v, want blank", c)
	}

	s.Clear()
	if got := s.String(); strings.TrimSpace(got) != "" {
		t.Errorf("cleared screen = %q", got)
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(11, 1)
	s.DrawTextCentered(0, "PAUSE")
	if got := s.String(); got != "   PAUSE   " {
		t.Errorf("centered text = %q", got)
	}
}

func TestScreenDrawBoxColored(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawBoxColored(NewRect(0, 0, 4, 3), ColorGray)

	want := "┌──┐\n│  │\n└──┘"
	if got := s.String(); got != want {
		t.Errorf("box =\n%s\nwant\n%s", got, want)
	}
	if c := s.GetCell(0, 1); c.Color != ColorGray {
		t.Errorf("border color = %v, want gray", c.Color)
	}
}

func TestScreenResizeKeepsContent(t *testing.T) {
	s := NewScreen(4, 2)
	s.DrawText(0, 0, "ab")
	s.DrawText(0, 1, "cd")

	s.Resize(2, 3)
	if s.Width() != 2 || s.Height() != 3 {
		t.Fatalf("size = %dx%d, want 2x3", s.Width(), s.Height())
	}
	if got, want := s.String(), "ab\ncd\n  "; got != want {
		t.Errorf("resized screen = %q, want %q", got, want)
	}
}

func TestRectCentered(t *testing.T) {
	tests := []struct {
		outer Rect
		w, h  int
		want  Rect
	}{
		{NewRect(0, 0, 80, 24), 32, 15, Rect{X: 24, Y: 4, W: 32, H: 15}},
		{NewRect(2, 1, 10, 10), 10, 10, Rect{X: 2, Y: 1, W: 10, H: 10}},
		// Too small: the area starts before the outer rectangle
		{NewRect(0, 0, 20, 10), 30, 12, Rect{X: -5, Y: -1, W: 30, H: 12}},
	}
	for _, tt := range tests {
		if got := tt.outer.Centered(tt.w, tt.h); got != tt.want {
			t.Errorf("%+v.Centered(%d, %d) = %+v, want %+v", tt.outer, tt.w, tt.h, got, tt.want)
		}
	}
}

func TestRectContainsAndClamp(t *testing.T) {
	r := NewRect(1, 1, 3, 2)
	if !r.Contains(1, 1) || !r.Contains(3, 2) {
		t.Error("corners inside the rectangle should be contained")
	}
	if r.Contains(4, 1) || r.Contains(1, 3) || r.Contains(0, 1) {
		t.Error("points past the edges should not be contained")
	}

	if got := Clamp(-3, 0, 5); got != 0 {
		t.Errorf("Clamp(-3, 0, 5) = %d", got)
	}
	if got := Clamp(9, 0, 5); got != 5 {
		t.Errorf("Clamp(9, 0, 5) = %d", got)
	}
	if got := Clamp(4, 0, 5); got != 4 {
		t.Errorf("Clamp(4, 0, 5) = %d", got)
	}
}
