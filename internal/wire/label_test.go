package wire

import "testing"

func TestSplitLabels(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"www.example.com", []string{"www", "example", "com"}},
		{"www.example.com.", []string{"www", "example", "com"}},
		{".", nil},
		{"", nil},
	}
	for _, c := range cases {
		got, err := splitLabels(c.in)
		if err != nil {
			t.Fatalf("splitLabels(%q): %v", c.in, err)
		}
		if len(got) != len(c.want) {
			t.Fatalf("splitLabels(%q) = %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("splitLabels(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestSplitLabelsRejectsEmptyInteriorLabel(t *testing.T) {
	if _, err := splitLabels("www..com"); err != ErrEmptyLabel {
		t.Fatalf("err = %v, want ErrEmptyLabel", err)
	}
}

func TestSplitLabelsRejectsOverlongLabel(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := splitLabels(string(long) + ".com"); err != ErrLabelLength {
		t.Fatalf("err = %v, want ErrLabelLength", err)
	}
}

func TestEqualNames(t *testing.T) {
	if !EqualNames("WWW.Example.COM.", "www.example.com") {
		t.Error("expected case-insensitive, trailing-dot-insensitive equality")
	}
	if EqualNames("www.example.com", "www.example.net") {
		t.Error("expected inequality")
	}
}
