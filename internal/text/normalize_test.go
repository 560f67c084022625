package text

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain ascii", input: "please pray for my mother", want: "please pray for my mother"},
		{name: "emoji removed", input: "Asha 🙏🙏", want: "Asha "},
		{name: "emoji inside text", input: "pray🙏for me", want: "prayfor me"},
		{name: "punctuation kept", input: "Pray, please! (urgent?)", want: "Pray, please! (urgent?)"},
		{name: "devanagari kept", input: "प्रार्थना करें 🙏", want: "प्रार्थना करें "},
		{name: "telugu kept", input: "ప్రార్థన", want: "ప్రార్థన"},
		{name: "other symbols removed", input: "♥ love ☺", want: " love "},
		{name: "math symbols kept", input: "1 + 1 = 2", want: "1 + 1 = 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestNormalizeIdempotentAndShrinking(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"🙏🙏🙏",
		"God bless 🙌 you ❤️ all",
		"Brother 🔥 Ravi 🎉 needs prayer",
		"dua ☪ for my family",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("Normalize not idempotent for %q (-once +twice):\n%s", in, diff)
		}
		if len(once) > len(in) {
			t.Errorf("Normalize(%q) grew from %d to %d bytes", in, len(in), len(once))
		}
	}
}
