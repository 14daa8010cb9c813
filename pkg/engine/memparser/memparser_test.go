package memparser

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		bytes int64
		ok    bool
	}{
		{"12.45MiB / 256MiB", 13054771, true},
		{"0B / 256MiB", 0, true},
		{"1GiB / 2GiB", 1073741824, true},
		{"500KB / 1GB", 500000, true},
		{"", 0, false},
		{"garbage", 0, false},
		{"12.3%", 0, false},
		{"10XB / 20XB", 0, false},
	}

	for _, c := range cases {
		got, ok := Parse(c.in)
		if ok != c.ok {
			t.Errorf("Parse(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got != c.bytes {
			t.Errorf("Parse(%q) = %d, want %d", c.in, got, c.bytes)
		}
	}
}

func TestParseIgnoresPercentageOnly(t *testing.T) {
	if _, ok := Parse("45.2%"); ok {
		t.Error("percentage-only input should not parse")
	}
}
