package models

import "testing"

func TestConfidenceMin(t *testing.T) {
	if got := Min(ConfidenceLow, ConfidenceCertain); got != ConfidenceLow {
		t.Errorf("Min(Low, Certain) = %v; want %v", got, ConfidenceLow)
	}
	if got := Min(ConfidenceHigh, ConfidenceCertain); got != ConfidenceHigh {
		t.Errorf("Min(High, Certain) = %v; want %v", got, ConfidenceHigh)
	}
}

func TestConfidenceStringRoundTrip(t *testing.T) {
	for _, c := range []Confidence{ConfidenceCertain, ConfidenceNearCertain, ConfidenceHigh, ConfidenceProbable} {
		if got := ConfidenceFromString(c.String()); got != c {
			t.Errorf("ConfidenceFromString(%q) = %v; want %v", c.String(), got, c)
		}
	}
}

func TestConfidenceFromStringUnknownDefaultsLow(t *testing.T) {
	if got := ConfidenceFromString("nonsense"); got != ConfidenceLow {
		t.Errorf("ConfidenceFromString(%q) = %v; want %v", "nonsense", got, ConfidenceLow)
	}
}
