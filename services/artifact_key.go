package services

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkruczek/course-system/model"
)

// sanitizePathPart makes a name safe for use as an object-key segment:
// slashes and backslashes are dropped, runs of whitespace collapse to a
// single underscore.
func sanitizePathPart(s string) string {
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "\\", "")
	return strings.Join(strings.Fields(s), "_")
}

// artifactKey builds the deterministic storage key for a submission artifact:
//
//	{OwnerLastName}_{CourseName}_{Year}_{Year+1}/{StudentLast}_{StudentFirst}_{id8}/Assignment_{n}/{timestamp}_{filename}
//
// where n is the assignment's ordinal within its course (by creation time)
// and id8 is the first 8 characters of the student's id, which keeps folders
// of students sharing a name apart.
func artifactKey(owner, student *model.User, course *model.Course, assignmentNumber int, filename string, now time.Time) string {
	courseFolder := fmt.Sprintf("%s_%s_%d_%d",
		sanitizePathPart(owner.LastName),
		sanitizePathPart(course.Name),
		course.AcademicYear,
		course.AcademicYear+1,
	)

	studentFolder := fmt.Sprintf("%s_%s_%s",
		sanitizePathPart(student.LastName),
		sanitizePathPart(student.FirstName),
		student.ID.String()[:8],
	)

	assignmentFolder := fmt.Sprintf("Assignment_%d", assignmentNumber)

	file := fmt.Sprintf("%s_%s",
		now.UTC().Format("20060102_150405"),
		sanitizePathPart(filepath.Base(filename)),
	)

	return path.Join(courseFolder, studentFolder, assignmentFolder, file)
}
