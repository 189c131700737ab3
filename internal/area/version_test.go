package area

import "testing"

func TestVersionIsNewerHandlesWraparound(t *testing.T) {
	cases := []struct {
		a, b uint16
		want bool
	}{
		{2, 1, true},
		{1, 2, false},
		{0, 0xFFFF, true},
		{0xFFFF, 0, false},
		{1, 1, false},
		{0x8000, 0, false}, // exactly half the space away: outside the (0, 2^15) window
	}
	for _, c := range cases {
		if got := versionIsNewer(c.a, c.b); got != c.want {
			t.Errorf("versionIsNewer(%d,%d) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
