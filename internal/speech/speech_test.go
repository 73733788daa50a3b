package speech

import "testing"

func TestSimplifyDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    Duration
	}{
		{"over a minute floors to minutes", 100.321, Duration{Unit: "minute", Count: 1}},
		{"under a minute stays in seconds", 30, Duration{Unit: "second", Count: 30}},
		{"exactly sixty seconds stays in seconds", 60, Duration{Unit: "second", Count: 60}},
		{"several minutes", 601, Duration{Unit: "minute", Count: 10}},
		{"fractional seconds floor", 4.9, Duration{Unit: "second", Count: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SimplifyDuration(tt.seconds); got != tt.want {
				t.Errorf("SimplifyDuration(%v) = %+v, want %+v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestPluralizeByCount(t *testing.T) {
	tests := []struct {
		word  string
		count int
		want  string
	}{
		{"second", 1, "second"},
		{"second", 10, "seconds"},
		{"minute", 2, "minutes"},
		{"bus", 2, "buses"},
		{"bus", 1, "bus"},
		{"box", 3, "boxes"},
		{"match", 0, "matches"},
		{"buzz", 5, "buzzes"},
		{"wish", 4, "wishes"},
	}

	for _, tt := range tests {
		if got := PluralizeByCount(tt.word, tt.count); got != tt.want {
			t.Errorf("PluralizeByCount(%q, %d) = %q, want %q", tt.word, tt.count, got, tt.want)
		}
	}
}

func TestPluralizeDo(t *testing.T) {
	if got := PluralizeDo(1); got != "is" {
		t.Errorf("PluralizeDo(1) = %q, want %q", got, "is")
	}
	if got := PluralizeDo(5); got != "are" {
		t.Errorf("PluralizeDo(5) = %q, want %q", got, "are")
	}
	if got := PluralizeDo(0); got != "are" {
		t.Errorf("PluralizeDo(0) = %q, want %q", got, "are")
	}
}
