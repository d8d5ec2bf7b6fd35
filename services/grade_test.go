package services

import "testing"

func TestValidGrade(t *testing.T) {
	valid := []float64{2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0}
	for _, g := range valid {
		if !ValidGrade(g) {
			t.Errorf("ValidGrade(%v) = false, want true", g)
		}
	}

	invalid := []float64{1.5, 1.9, 2.1, 2.75, 3.3, 5.5, 6.0, 0, -2.5}
	for _, g := range invalid {
		if ValidGrade(g) {
			t.Errorf("ValidGrade(%v) = true, want false", g)
		}
	}
}
