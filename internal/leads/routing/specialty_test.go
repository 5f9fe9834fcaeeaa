package routing

import (
	"reflect"
	"testing"
)

func TestMatchSpecialties(t *testing.T) {
	cases := []struct {
		interest string
		want     []string
	}{
		{"Tesla Model 3", []string{"electric"}},
		{"BMW X5", []string{"luxury"}},
		{"pickup truck", []string{"truck"}},
		{"electric bmw", []string{"electric", "luxury"}},
		{"family minivan", nil},
		{"", nil},
	}

	for _, tc := range cases {
		got := MatchSpecialties(tc.interest)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("interest %q: expected %v, got %v", tc.interest, tc.want, got)
		}
	}
}

func TestMatchSpecialties_Deduplicates(t *testing.T) {
	// "tesla" and "ev" both map to electric; it must appear once.
	got := MatchSpecialties("Tesla EV")
	if !reflect.DeepEqual(got, []string{"electric"}) {
		t.Fatalf("expected [electric], got %v", got)
	}
}

func TestMatchSpecialties_CaseInsensitive(t *testing.T) {
	got := MatchSpecialties("LUXURY SUV")
	if !reflect.DeepEqual(got, []string{"suv", "luxury"}) {
		t.Fatalf("expected [suv luxury], got %v", got)
	}
}
