package export

import "testing"

func TestSmarten(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"double quotes", `He said "collusion" twice.`, "He said “collusion” twice."},
		{"apostrophe", "the league's rules", "the league’s rules"},
		{"opening single", "a 'fair' trade", "a ‘fair’ trade"},
		{"decade", "the '90s Bills", "the ’90s Bills"},
		{"em dash", "the hosts---all three---agreed", "the hosts—all three—agreed"},
		{"en dash", "weeks 4--6", "weeks 4–6"},
		{"ellipsis", "and yet...", "and yet…"},
		{"tag attributes untouched", `<span data-cite-docket="24-0001-1">X</span>`, `<span data-cite-docket="24-0001-1">X</span>`},
		{"quote after tag opens", `<p>"Held"</p>`, "<p>“Held”</p>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Smarten(tc.in); got != tc.want {
				t.Errorf("Smarten(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
