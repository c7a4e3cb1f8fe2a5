package core

import (
	"strings"
	"testing"
)

func TestNewGrid(t *testing.T) {
	g := NewGrid(80, 24)

	if g.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", g.Width())
	}
	if g.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", g.Height())
	}

	// Check that it's initialized with the blank sentinel
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.At(x, y).Glyph != BlankGlyph {
				t.Errorf("New grid should be blank, got %q at (%d, %d)", g.At(x, y).Glyph, x, y)
			}
		}
	}
}

func TestNewGridNegativeSize(t *testing.T) {
	g := NewGrid(-3, 4)
	if !g.Empty() {
		t.Errorf("NewGrid(-3, 4) should be empty, got %dx%d", g.Width(), g.Height())
	}
}

func TestGridSetAt(t *testing.T) {
	g := NewGrid(10, 10)
	c := Cell{Glyph: 'X', Color: RGB{R: 1, G: 2, B: 3}}

	g.Set(5, 5, c)
	if g.At(5, 5) != c {
		t.Errorf("At(5, 5) = %+v, expected %+v", g.At(5, 5), c)
	}
	if g.Cells()[5*10+5] != c {
		t.Error("Cells() should be row-major")
	}

	// Out of bounds should be silent
	g.Set(-1, 0, c)
	g.Set(100, 0, c)
	g.Set(0, -1, c)
	g.Set(0, 100, c)

	if g.At(-1, 0).Glyph != BlankGlyph {
		t.Error("Out of bounds At should return blank")
	}
}

func TestGridCloneIsDeep(t *testing.T) {
	g := NewGrid(3, 2)
	g.Fill(Cell{Glyph: '#', Color: White})

	c := g.Clone()
	if !c.Equal(g) {
		t.Fatal("Clone() should equal the original")
	}

	c.Set(0, 0, Cell{Glyph: '.'})
	if g.At(0, 0).Glyph != '#' {
		t.Error("mutating the clone changed the original")
	}
	if c.Equal(g) {
		t.Error("Equal() should detect the changed cell")
	}
}

func TestGridEqualDifferentSize(t *testing.T) {
	if NewGrid(2, 3).Equal(NewGrid(3, 2)) {
		t.Error("grids of different size should not be equal")
	}
}

func TestGridString(t *testing.T) {
	g := NewGrid(3, 2)
	g.Set(0, 0, Cell{Glyph: 'a'})
	g.Set(2, 1, Cell{Glyph: 'z'})

	expected := "a  \n  z"
	if g.String() != expected {
		t.Errorf("String() = %q, expected %q", g.String(), expected)
	}
	if g.Row(1) != "  z" {
		t.Errorf("Row(1) = %q, expected %q", g.Row(1), "  z")
	}
	if g.Row(9) != strings.Repeat(" ", 3) {
		t.Errorf("Row(9) = %q, expected blanks", g.Row(9))
	}
}

func TestLuma(t *testing.T) {
	tests := []struct {
		name     string
		c        RGB
		expected float64
	}{
		{"black", Black, 0},
		{"white", White, 255},
		{"pure red", RGB{R: 255}, 0.299 * 255},
		{"pure green", RGB{G: 255}, 0.587 * 255},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.c.Luma()
			if diff := got - tc.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Luma() = %f, expected %f", got, tc.expected)
			}
		})
	}
}

func TestLumaMilliWhiteIsExact(t *testing.T) {
	if got := LumaMilli(255, 255, 255); got != 255000 {
		t.Errorf("LumaMilli(white) = %d, expected 255000", got)
	}
}
