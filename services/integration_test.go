package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkruczek/course-system/apperr"
	"github.com/pkruczek/course-system/model"
	"github.com/pkruczek/course-system/services/storage"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL, migrates
// the schema and wipes all rows. Tests are skipped when the variable is
// unset so the pure-logic suite still runs everywhere.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.Assignment{},
		&model.Submission{},
		&model.Notification{},
		&model.JWTTokenBlacklist{},
		&model.CronJobLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	err = db.Exec("TRUNCATE notifications, submissions, assignments, enrollments, courses, jwt_token_blacklist, cron_job_logs, users CASCADE").Error
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	return db
}

func createUser(t *testing.T, db *gorm.DB, role model.Role, firstName, lastName string) model.User {
	t.Helper()

	user := model.User{
		Email:        fmt.Sprintf("%s@test.local", uuid.New().String()[:13]),
		PasswordHash: "not-a-real-hash",
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func asPrincipal(u model.User) Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

func createCourse(t *testing.T, db *gorm.DB, owner model.User) model.Course {
	t.Helper()

	course := model.Course{
		Name:         "Test Course " + uuid.New().String()[:8],
		OwnerID:      owner.ID,
		AcademicYear: 2025,
		Status:       model.CourseStatusActive,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}
	return course
}

func enroll(t *testing.T, db *gorm.DB, course model.Course, student model.User, status model.EnrollmentStatus) model.Enrollment {
	t.Helper()

	e := model.Enrollment{CourseID: course.ID, StudentID: student.ID, Status: status}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("Failed to create enrollment: %v", err)
	}
	return e
}

// memStore is an in-memory ArtifactStore for tests.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return errors.New("simulated storage outage")
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func TestEnrollmentLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	student := createUser(t, db, model.RoleStudent, "Sam", "Study")
	course := createCourse(t, db, teacher)

	enrollment, err := svc.Request(ctx, asPrincipal(student), course.ID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if enrollment.Status != model.EnrollmentStatusPending {
		t.Errorf("Status = %v, want pending", enrollment.Status)
	}

	// Duplicate request conflicts
	if _, err := svc.Request(ctx, asPrincipal(student), course.ID); !apperr.Is(err, apperr.Conflict) {
		t.Errorf("Duplicate request: got %v, want Conflict", err)
	}

	approved, err := svc.Approve(ctx, asPrincipal(teacher), enrollment.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != model.EnrollmentStatusEnrolled {
		t.Errorf("Status = %v, want enrolled", approved.Status)
	}

	// Re-approving a decided enrollment conflicts
	if _, err := svc.Approve(ctx, asPrincipal(teacher), enrollment.ID); !apperr.Is(err, apperr.Conflict) {
		t.Errorf("Re-approve: got %v, want Conflict", err)
	}
}

func TestEnrollmentRejectAllowsRetry(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	student := createUser(t, db, model.RoleStudent, "Sam", "Study")
	course := createCourse(t, db, teacher)

	enrollment, err := svc.Request(ctx, asPrincipal(student), course.ID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if err := svc.Reject(ctx, asPrincipal(teacher), enrollment.ID); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	// Rejection removes the row; the student may request again
	if _, err := svc.Request(ctx, asPrincipal(student), course.ID); err != nil {
		t.Errorf("Request after rejection failed: %v", err)
	}
}

func TestEnrollmentAuthorization(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	otherTeacher := createUser(t, db, model.RoleTeacher, "Olga", "Other")
	student := createUser(t, db, model.RoleStudent, "Sam", "Study")
	course := createCourse(t, db, teacher)

	// Teachers cannot request enrollment
	if _, err := svc.Request(ctx, asPrincipal(teacher), course.ID); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("Teacher request: got %v, want Forbidden", err)
	}

	enrollment, err := svc.Request(ctx, asPrincipal(student), course.ID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	// Only the course owner decides
	if _, err := svc.Approve(ctx, asPrincipal(otherTeacher), enrollment.ID); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("Non-owner approve: got %v, want Forbidden", err)
	}
}

func TestEnrollmentRequiresActiveCourse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	student := createUser(t, db, model.RoleStudent, "Sam", "Study")
	course := createCourse(t, db, teacher)

	if err := db.Model(&course).Update("status", model.CourseStatusArchived).Error; err != nil {
		t.Fatalf("Failed to archive course: %v", err)
	}

	if _, err := svc.Request(ctx, asPrincipal(student), course.ID); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("Request on archived course: got %v, want NotFound", err)
	}
}

func TestCourseDeleteConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	student := createUser(t, db, model.RoleStudent, "Sam", "Study")
	course := createCourse(t, db, teacher)
	enroll(t, db, course, student, model.EnrollmentStatusPending)

	if err := svc.Delete(ctx, asPrincipal(teacher), course.ID); !apperr.Is(err, apperr.Conflict) {
		t.Errorf("Delete with enrollment: got %v, want Conflict", err)
	}

	empty := createCourse(t, db, teacher)
	if err := svc.Delete(ctx, asPrincipal(teacher), empty.ID); err != nil {
		t.Errorf("Delete of empty course failed: %v", err)
	}
}

func TestCourseListVisibility(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	otherTeacher := createUser(t, db, model.RoleTeacher, "Olga", "Other")
	student := createUser(t, db, model.RoleStudent, "Sam", "Study")
	admin := createUser(t, db, model.RoleAdmin, "Ada", "Admin")

	owned := createCourse(t, db, teacher)
	foreign := createCourse(t, db, otherTeacher)
	enroll(t, db, foreign, student, model.EnrollmentStatusPending)

	teacherCourses, err := svc.List(ctx, asPrincipal(teacher), CourseFilters{})
	if err != nil {
		t.Fatalf("Teacher list failed: %v", err)
	}
	if len(teacherCourses) != 1 || teacherCourses[0].ID != owned.ID {
		t.Errorf("Teacher sees %d courses, want only the owned one", len(teacherCourses))
	}

	// A pending enrollment is enough for list visibility
	studentCourses, err := svc.List(ctx, asPrincipal(student), CourseFilters{})
	if err != nil {
		t.Fatalf("Student list failed: %v", err)
	}
	if len(studentCourses) != 1 || studentCourses[0].ID != foreign.ID {
		t.Errorf("Student sees %d courses, want only the enrolled one", len(studentCourses))
	}

	adminCourses, err := svc.List(ctx, asPrincipal(admin), CourseFilters{})
	if err != nil {
		t.Fatalf("Admin list failed: %v", err)
	}
	if len(adminCourses) != 2 {
		t.Errorf("Admin sees %d courses, want 2", len(adminCourses))
	}
}

func TestAssignmentFanOut(t *testing.T) {
	db := setupTestDB(t)
	notificationSvc := NewNotificationService(db)
	svc := NewAssignmentService(db, notificationSvc)
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	enrolled1 := createUser(t, db, model.RoleStudent, "Sam", "Study")
	enrolled2 := createUser(t, db, model.RoleStudent, "Eve", "Exam")
	pending := createUser(t, db, model.RoleStudent, "Pat", "Pend")
	course := createCourse(t, db, teacher)
	enroll(t, db, course, enrolled1, model.EnrollmentStatusEnrolled)
	enroll(t, db, course, enrolled2, model.EnrollmentStatusEnrolled)
	enroll(t, db, course, pending, model.EnrollmentStatusPending)

	assignment, err := svc.Create(ctx, asPrincipal(teacher), course.ID, AssignmentInput{
		Title:    "Homework 1",
		Deadline: time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var notifications []model.Notification
	if err := db.Where("assignment_id = ?", assignment.ID).Find(&notifications).Error; err != nil {
		t.Fatalf("Failed to fetch notifications: %v", err)
	}
	if len(notifications) != 2 {
		t.Fatalf("Fan-out created %d notifications, want 2 (enrolled students only)", len(notifications))
	}

	recipients := map[uuid.UUID]bool{}
	for _, n := range notifications {
		recipients[n.RecipientID] = true
		if n.Content == "" {
			t.Error("Notification content is empty")
		}
	}
	if !recipients[enrolled1.ID] || !recipients[enrolled2.ID] {
		t.Error("Fan-out missed an enrolled student")
	}
	if recipients[pending.ID] {
		t.Error("Fan-out notified a pending student")
	}
}

func TestAssignmentListAnnotations(t *testing.T) {
	db := setupTestDB(t)
	notificationSvc := NewNotificationService(db)
	svc := NewAssignmentService(db, notificationSvc)
	subSvc := NewSubmissionService(db, newMemStore())
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	student := createUser(t, db, model.RoleStudent, "Sam", "Study")
	course := createCourse(t, db, teacher)
	enroll(t, db, course, student, model.EnrollmentStatusEnrolled)

	early, err := svc.Create(ctx, asPrincipal(teacher), course.ID, AssignmentInput{
		Title:    "Early",
		Deadline: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, asPrincipal(teacher), course.ID, AssignmentInput{
		Title:    "Late",
		Deadline: time.Now().Add(48 * time.Hour),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := subSvc.Create(ctx, asPrincipal(student), early.ID, "hw.pdf", []byte("content")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	items, err := svc.ListForCourse(ctx, asPrincipal(student), course.ID)
	if err != nil {
		t.Fatalf("ListForCourse failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Got %d assignments, want 2", len(items))
	}
	// Ordered by deadline ascending
	if items[0].Title != "Early" || items[1].Title != "Late" {
		t.Errorf("Order = [%s, %s], want [Early, Late]", items[0].Title, items[1].Title)
	}
	if items[0].SubmissionsCount != 1 {
		t.Errorf("SubmissionsCount = %d, want 1", items[0].SubmissionsCount)
	}
	if items[0].HasSubmitted == nil || !*items[0].HasSubmitted {
		t.Error("HasSubmitted should be true for the submitted assignment")
	}
	if items[1].HasSubmitted == nil || *items[1].HasSubmitted {
		t.Error("HasSubmitted should be false for the other assignment")
	}

	// Teacher listings carry no per-student flag
	teacherItems, err := svc.ListForCourse(ctx, asPrincipal(teacher), course.ID)
	if err != nil {
		t.Fatalf("Teacher ListForCourse failed: %v", err)
	}
	if teacherItems[0].HasSubmitted != nil {
		t.Error("HasSubmitted should be nil for teacher callers")
	}
}

func submissionFixture(t *testing.T, db *gorm.DB) (model.User, model.User, model.Course, model.Assignment) {
	t.Helper()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	student := createUser(t, db, model.RoleStudent, "Sam", "Study")
	course := createCourse(t, db, teacher)
	enroll(t, db, course, student, model.EnrollmentStatusEnrolled)

	assignment := model.Assignment{
		CourseID: course.ID,
		Title:    "Homework",
		Deadline: time.Now().Add(24 * time.Hour),
	}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("Failed to create assignment: %v", err)
	}
	return teacher, student, course, assignment
}

func TestSubmissionCreateAndDownload(t *testing.T) {
	db := setupTestDB(t)
	store := newMemStore()
	svc := NewSubmissionService(db, store)
	ctx := context.Background()

	teacher, student, _, assignment := submissionFixture(t, db)

	submission, err := svc.Create(ctx, asPrincipal(student), assignment.ID, "solution.pdf", []byte("my solution"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if submission.FilePath == "" {
		t.Fatal("FilePath is empty")
	}
	if _, ok := store.objects[submission.FilePath]; !ok {
		t.Fatal("Artifact not stored under the recorded key")
	}

	// Second submission conflicts
	if _, err := svc.Create(ctx, asPrincipal(student), assignment.ID, "again.pdf", []byte("x")); !apperr.Is(err, apperr.Conflict) {
		t.Errorf("Second submission: got %v, want Conflict", err)
	}

	// Both the student and the course owner can download
	for _, p := range []Principal{asPrincipal(student), asPrincipal(teacher)} {
		name, data, err := svc.Download(ctx, p, submission.ID)
		if err != nil {
			t.Fatalf("Download as %v failed: %v", p.Role, err)
		}
		if string(data) != "my solution" {
			t.Errorf("Downloaded %q, want original content", data)
		}
		if name == "" {
			t.Error("Download returned empty filename")
		}
	}

	// Strangers cannot
	stranger := createUser(t, db, model.RoleStudent, "Zoe", "Zed")
	if _, _, err := svc.Download(ctx, asPrincipal(stranger), submission.ID); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("Stranger download: got %v, want Forbidden", err)
	}
}

func TestSubmissionRollbackSparesCommittedArtifact(t *testing.T) {
	db := setupTestDB(t)
	store := newMemStore()
	svc := NewSubmissionService(db, store)
	ctx := context.Background()

	_, student, _, assignment := submissionFixture(t, db)

	submission, err := svc.Create(ctx, asPrincipal(student), assignment.ID, "hw.pdf", []byte("winner"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A concurrent upload of the same file in the same second builds the same
	// key and loses the insert; its rollback must leave the winner's artifact.
	svc.rollbackArtifact(ctx, submission.FilePath)
	if _, ok := store.objects[submission.FilePath]; !ok {
		t.Fatal("Rollback removed an artifact referenced by a committed submission")
	}

	// An artifact no row references is cleaned up.
	orphanKey := "orphans/never_recorded.pdf"
	store.objects[orphanKey] = []byte("loser")
	svc.rollbackArtifact(ctx, orphanKey)
	if _, ok := store.objects[orphanKey]; ok {
		t.Error("Rollback left an unreferenced artifact behind")
	}
}

func TestCourseUpdatePartial(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	course := createCourse(t, db, teacher)
	originalName := course.Name

	// Absent fields keep their values
	desc := "Updated description"
	updated, err := svc.Update(ctx, asPrincipal(teacher), course.ID, UpdateCourseInput{Description: &desc})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != originalName {
		t.Errorf("Name changed to %q on description-only update", updated.Name)
	}
	if updated.Description != desc {
		t.Errorf("Description = %q, want %q", updated.Description, desc)
	}
	if updated.AcademicYear != 2025 {
		t.Errorf("AcademicYear changed to %d", updated.AcademicYear)
	}

	// A blank name is ignored rather than applied
	blank := "   "
	updated, err = svc.Update(ctx, asPrincipal(teacher), course.ID, UpdateCourseInput{Name: &blank})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != originalName {
		t.Errorf("Blank name was applied, got %q", updated.Name)
	}

	// Academic year is re-validated on update
	badYear := 2019
	if _, err := svc.Update(ctx, asPrincipal(teacher), course.ID, UpdateCourseInput{AcademicYear: &badYear}); !apperr.Is(err, apperr.InvalidArgument) {
		t.Errorf("Out-of-range year: got %v, want InvalidArgument", err)
	}

	// Only the owner or an admin may update
	other := createUser(t, db, model.RoleTeacher, "Olga", "Other")
	newName := "Hijacked"
	if _, err := svc.Update(ctx, asPrincipal(other), course.ID, UpdateCourseInput{Name: &newName}); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("Non-owner update: got %v, want Forbidden", err)
	}
}

func TestAssignmentDeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	notificationSvc := NewNotificationService(db)
	svc := NewAssignmentService(db, notificationSvc)
	subSvc := NewSubmissionService(db, newMemStore())
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	student := createUser(t, db, model.RoleStudent, "Sam", "Study")
	course := createCourse(t, db, teacher)
	enroll(t, db, course, student, model.EnrollmentStatusEnrolled)

	assignment, err := svc.Create(ctx, asPrincipal(teacher), course.ID, AssignmentInput{
		Title:    "Homework",
		Deadline: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := subSvc.Create(ctx, asPrincipal(student), assignment.ID, "hw.pdf", []byte("x")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := svc.Delete(ctx, asPrincipal(teacher), assignment.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var submissions, notifications, assignments int64
	if err := db.Model(&model.Submission{}).Where("assignment_id = ?", assignment.ID).Count(&submissions).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if err := db.Model(&model.Notification{}).Where("assignment_id = ?", assignment.ID).Count(&notifications).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if err := db.Model(&model.Assignment{}).Where("id = ?", assignment.ID).Count(&assignments).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if submissions != 0 {
		t.Errorf("Found %d submissions after delete, want 0", submissions)
	}
	if notifications != 0 {
		t.Errorf("Found %d notifications after delete, want 0", notifications)
	}
	if assignments != 0 {
		t.Errorf("Assignment still present after delete")
	}
}

func TestSubmissionEligibility(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubmissionService(db, newMemStore())
	ctx := context.Background()

	_, _, course, assignment := submissionFixture(t, db)

	// Not enrolled
	outsider := createUser(t, db, model.RoleStudent, "Out", "Sider")
	if _, err := svc.Create(ctx, asPrincipal(outsider), assignment.ID, "f.pdf", []byte("x")); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("Outsider submit: got %v, want Forbidden", err)
	}

	// Pending enrollment is not enough
	pending := createUser(t, db, model.RoleStudent, "Pat", "Pend")
	enroll(t, db, course, pending, model.EnrollmentStatusPending)
	if _, err := svc.Create(ctx, asPrincipal(pending), assignment.ID, "f.pdf", []byte("x")); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("Pending submit: got %v, want Forbidden", err)
	}

	// Empty file
	enrolled := createUser(t, db, model.RoleStudent, "Ed", "Empty")
	enroll(t, db, course, enrolled, model.EnrollmentStatusEnrolled)
	if _, err := svc.Create(ctx, asPrincipal(enrolled), assignment.ID, "f.pdf", nil); !apperr.Is(err, apperr.InvalidArgument) {
		t.Errorf("Empty submit: got %v, want InvalidArgument", err)
	}

	// Past deadline
	if err := db.Model(&model.Assignment{}).Where("id = ?", assignment.ID).
		Update("deadline", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("Failed to move deadline: %v", err)
	}
	if _, err := svc.Create(ctx, asPrincipal(enrolled), assignment.ID, "f.pdf", []byte("x")); !apperr.Is(err, apperr.Conflict) {
		t.Errorf("Late submit: got %v, want Conflict", err)
	}
}

func TestSubmissionStorageFailure(t *testing.T) {
	db := setupTestDB(t)
	store := newMemStore()
	store.failPut = true
	svc := NewSubmissionService(db, store)
	ctx := context.Background()

	_, student, _, assignment := submissionFixture(t, db)

	_, err := svc.Create(ctx, asPrincipal(student), assignment.ID, "f.pdf", []byte("x"))
	if !apperr.Is(err, apperr.StorageFailure) {
		t.Fatalf("Got %v, want StorageFailure", err)
	}

	// No row without an artifact
	var count int64
	if err := db.Model(&model.Submission{}).Where("assignment_id = ?", assignment.ID).Count(&count).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Found %d submission rows after storage failure, want 0", count)
	}
}

func TestGradeSubmission(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubmissionService(db, newMemStore())
	ctx := context.Background()

	teacher, student, _, assignment := submissionFixture(t, db)

	submission, err := svc.Create(ctx, asPrincipal(student), assignment.ID, "f.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	graded, err := svc.Grade(ctx, asPrincipal(teacher), submission.ID, 4.5)
	if err != nil {
		t.Fatalf("Grade failed: %v", err)
	}
	if graded.Grade == nil || *graded.Grade != 4.5 {
		t.Errorf("Grade = %v, want 4.5", graded.Grade)
	}

	// Re-grading overwrites
	regraded, err := svc.Grade(ctx, asPrincipal(teacher), submission.ID, 3.0)
	if err != nil {
		t.Fatalf("Re-grade failed: %v", err)
	}
	if regraded.Grade == nil || *regraded.Grade != 3.0 {
		t.Errorf("Grade = %v, want 3.0", regraded.Grade)
	}

	// Off-grid grade rejected
	if _, err := svc.Grade(ctx, asPrincipal(teacher), submission.ID, 4.25); !apperr.Is(err, apperr.InvalidArgument) {
		t.Errorf("Off-grid grade: got %v, want InvalidArgument", err)
	}

	// Only the course owner grades
	other := createUser(t, db, model.RoleTeacher, "Olga", "Other")
	if _, err := svc.Grade(ctx, asPrincipal(other), submission.ID, 5.0); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("Non-owner grade: got %v, want Forbidden", err)
	}
}

func TestNotificationListForUser(t *testing.T) {
	db := setupTestDB(t)
	notificationSvc := NewNotificationService(db)
	svc := NewAssignmentService(db, notificationSvc)
	ctx := context.Background()

	teacher := createUser(t, db, model.RoleTeacher, "Tina", "Teach")
	student := createUser(t, db, model.RoleStudent, "Sam", "Study")
	other := createUser(t, db, model.RoleStudent, "Eve", "Else")
	course := createCourse(t, db, teacher)
	enroll(t, db, course, student, model.EnrollmentStatusEnrolled)

	if _, err := svc.Create(ctx, asPrincipal(teacher), course.ID, AssignmentInput{
		Title:    "Homework",
		Deadline: time.Now().Add(24 * time.Hour),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mine, err := notificationSvc.ListForUser(ctx, asPrincipal(student))
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("Student has %d notifications, want 1", len(mine))
	}

	theirs, err := notificationSvc.ListForUser(ctx, asPrincipal(other))
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(theirs) != 0 {
		t.Errorf("Unenrolled student has %d notifications, want 0", len(theirs))
	}
}
