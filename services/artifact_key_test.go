package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkruczek/course-system/model"
)

func TestArtifactKey(t *testing.T) {
	owner := &model.User{LastName: "Kowalski"}
	student := &model.User{
		ID:        uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000"),
		FirstName: "Jan",
		LastName:  "Nowak",
	}
	course := &model.Course{Name: "Operating Systems", AcademicYear: 2025}
	now := time.Date(2025, 10, 14, 9, 30, 5, 0, time.UTC)

	got := artifactKey(owner, student, course, 3, "solution.pdf", now)
	want := "Kowalski_Operating_Systems_2025_2026/Nowak_Jan_a1b2c3d4/Assignment_3/20251014_093005_solution.pdf"
	if got != want {
		t.Errorf("artifactKey = %q, want %q", got, want)
	}
}

func TestArtifactKeyDeterministic(t *testing.T) {
	owner := &model.User{LastName: "Smith"}
	student := &model.User{ID: uuid.New(), FirstName: "Eve", LastName: "Stone"}
	course := &model.Course{Name: "Algebra", AcademicYear: 2024}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	first := artifactKey(owner, student, course, 1, "hw.zip", now)
	second := artifactKey(owner, student, course, 1, "hw.zip", now)
	if first != second {
		t.Errorf("Same inputs produced different keys: %q vs %q", first, second)
	}
}

func TestArtifactKeySanitizesNames(t *testing.T) {
	owner := &model.User{LastName: "van der Berg"}
	student := &model.User{
		ID:        uuid.MustParse("deadbeef-0000-0000-0000-000000000000"),
		FirstName: "Anna Maria",
		LastName:  "de la Cruz",
	}
	course := &model.Course{Name: "Intro to  Databases", AcademicYear: 2025}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	got := artifactKey(owner, student, course, 2, "../../etc/passwd", now)
	want := "van_der_Berg_Intro_to_Databases_2025_2026/de_la_Cruz_Anna_Maria_deadbeef/Assignment_2/20250301_120000_passwd"
	if got != want {
		t.Errorf("artifactKey = %q, want %q", got, want)
	}
}

func TestSanitizePathPart(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"two words", "two_words"},
		{"tabs\tand  spaces", "tabs_and_spaces"},
		{"a/b\\c", "abc"},
		{"  trimmed  ", "trimmed"},
	}
	for _, tc := range cases {
		if got := sanitizePathPart(tc.in); got != tc.want {
			t.Errorf("sanitizePathPart(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
