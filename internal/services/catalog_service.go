package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/metrics"
	"anara-skills/registrar/internal/models/dtos"
	gormModels "anara-skills/registrar/internal/models/gorm"
	"anara-skills/registrar/internal/providers"

	"gorm.io/gorm"
)

const jobRolesCacheTTL = 10 * time.Minute

var validCCCStatuses = []string{"Yes", "No", "Pending"}

// CatalogService manages courses and job roles and the candidate's course
// and CCC selections.
type CatalogService struct {
	db      *gorm.DB
	storage providers.DocumentStorage
	cache   common.CacheInterface
	metrics *metrics.MetricsRegistry
}

func NewCatalogService(db *gorm.DB, storage providers.DocumentStorage, cache common.CacheInterface, m *metrics.MetricsRegistry) *CatalogService {
	return &CatalogService{db: db, storage: storage, cache: cache, metrics: m}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, string(constants.CachePrefixJobRoles)); err != nil {
		logging.Warn("Failed to invalidate job role cache", "error", err)
	}
}

// deleteObject removes a stored file, logging rather than failing.
func (s *CatalogService) deleteObject(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.storage.Delete(context.WithoutCancel(ctx), publicID); err != nil {
		logging.Warn("Failed to delete stored object", "public_id", publicID, "error", err)
	}
}

func (s *CatalogService) findCourse(tx *gorm.DB, id string) (*gormModels.Course, error) {
	var course gormModels.Course
	err := tx.Where("id = ?", id).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, CodeNotFound, "Course not found")
	}
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to load course", err)
	}
	return &course, nil
}

func (s *CatalogService) findJobRole(tx *gorm.DB, id string) (*gormModels.JobRole, error) {
	var role gormModels.JobRole
	err := tx.Preload("Courses").Where("id = ?", id).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, CodeNotFound, "Job role not found")
	}
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to load job role", err)
	}
	return &role, nil
}

// coursesByID loads every id or fails when one is unknown.
func coursesByID(tx *gorm.DB, ids []string) ([]gormModels.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var courses []gormModels.Course
	if err := tx.Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to load courses", err)
	}
	if len(courses) != len(dedupe(ids)) {
		return nil, validationError("Invalid course ID")
	}
	return courses, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// linkCourseToRoles replaces the set of job roles that list course.
func linkCourseToRoles(tx *gorm.DB, course *gormModels.Course, roleIDs []string) error {
	if err := tx.Exec("DELETE FROM job_role_courses WHERE course_id = ?", course.ID).Error; err != nil {
		return dependencyError(CodeStorageFailed, "failed to unlink course", err)
	}
	for _, id := range dedupe(roleIDs) {
		var role gormModels.JobRole
		if err := tx.Where("id = ?", id).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationError("Invalid job role ID")
			}
			return dependencyError(CodeStorageFailed, "failed to load job role", err)
		}
		if err := tx.Model(&role).Association("Courses").Append(course); err != nil {
			return dependencyError(CodeStorageFailed, "failed to link course", err)
		}
	}
	return nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, req dtos.CourseRequest, image *dtos.UploadedFile) (*gormModels.Course, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, validationError("Title and description are required.")
	}
	if image == nil || len(image.Data) == 0 {
		return nil, validationError("Course image is required.")
	}

	obj, err := s.storage.Upload(ctx, image.Data, constants.FolderCourses, image.Filename)
	if err != nil {
		return nil, dependencyError(CodeUploadFailed, "Failed to upload image.", err)
	}

	course := &gormModels.Course{
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Eligibility:   strings.TrimSpace(req.Eligibility),
		Image:         obj.URL,
		ImagePublicID: obj.PublicID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			return dependencyError(CodeStorageFailed, "failed to create course", err)
		}
		if req.JobRoleIDs != nil {
			return linkCourseToRoles(tx, course, *req.JobRoleIDs)
		}
		return nil
	})
	if err != nil {
		s.deleteObject(ctx, obj.PublicID)
		return nil, err
	}

	s.invalidate(ctx)
	logging.Info("Course created", "course_id", course.ID)
	return course, nil
}

// UpdateCourse edits the non-empty fields, replaces the image when one is
// given and relinks job roles when JobRoleIDs is set.
func (s *CatalogService) UpdateCourse(ctx context.Context, id string, req dtos.CourseRequest, image *dtos.UploadedFile) (*gormModels.Course, error) {
	course, err := s.findCourse(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(req.Title); v != "" {
		course.Title = v
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		course.Description = v
	}
	if v := strings.TrimSpace(req.Eligibility); v != "" {
		course.Eligibility = v
	}

	oldPublicID := ""
	var newPublicID string
	if image != nil && len(image.Data) > 0 {
		obj, err := s.storage.Upload(ctx, image.Data, constants.FolderCourses, image.Filename)
		if err != nil {
			return nil, dependencyError(CodeUploadFailed, "Failed to upload image.", err)
		}
		oldPublicID = course.ImagePublicID
		newPublicID = obj.PublicID
		course.Image = obj.URL
		course.ImagePublicID = obj.PublicID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(course).Error; err != nil {
			return dependencyError(CodeStorageFailed, "failed to update course", err)
		}
		if req.JobRoleIDs != nil {
			return linkCourseToRoles(tx, course, *req.JobRoleIDs)
		}
		return nil
	})
	if err != nil {
		s.deleteObject(ctx, newPublicID)
		return nil, err
	}
	s.deleteObject(ctx, oldPublicID)

	s.invalidate(ctx)
	logging.Info("Course updated", "course_id", course.ID)
	return course, nil
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]gormModels.Course, error) {
	var courses []gormModels.Course
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to list courses", err)
	}
	return courses, nil
}

// DeleteCourse removes the course from every job role and deletes its image.
func (s *CatalogService) DeleteCourse(ctx context.Context, id string) error {
	var publicID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.findCourse(tx, id)
		if err != nil {
			return err
		}
		publicID = course.ImagePublicID
		if err := tx.Exec("DELETE FROM job_role_courses WHERE course_id = ?", id).Error; err != nil {
			return dependencyError(CodeStorageFailed, "failed to unlink course", err)
		}
		if err := tx.Model(&gormModels.Candidate{}).Where("selected_course_id = ?", id).
			Update("selected_course_id", nil).Error; err != nil {
			return dependencyError(CodeStorageFailed, "failed to clear course selections", err)
		}
		if err := tx.Delete(course).Error; err != nil {
			return dependencyError(CodeStorageFailed, "failed to delete course", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.deleteObject(ctx, publicID)
	s.invalidate(ctx)
	logging.Info("Course deleted", "course_id", id)
	return nil
}

func (s *CatalogService) CreateJobRole(ctx context.Context, req dtos.JobRoleRequest) (*gormModels.JobRole, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, validationError("Name and description are required.")
	}

	role := &gormModels.JobRole{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses, err := coursesByID(tx, req.CourseIDs)
		if err != nil {
			return err
		}
		role.Courses = courses
		if err := tx.Create(role).Error; err != nil {
			return dependencyError(CodeStorageFailed, "failed to create job role", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logging.Info("Job role created", "job_role_id", role.ID)
	return role, nil
}

// AttachCourses adds courses to a job role. Courses already attached are kept.
func (s *CatalogService) AttachCourses(ctx context.Context, jobRoleID string, courseIDs []string) (*gormModels.JobRole, error) {
	if len(courseIDs) == 0 {
		return nil, validationError("At least one course is required.")
	}
	var role *gormModels.JobRole
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if role, err = s.findJobRole(tx, jobRoleID); err != nil {
			return err
		}
		courses, err := coursesByID(tx, courseIDs)
		if err != nil {
			return err
		}
		if err := tx.Model(role).Association("Courses").Append(courses); err != nil {
			return dependencyError(CodeStorageFailed, "failed to attach courses", err)
		}
		role, err = s.findJobRole(tx, jobRoleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return role, nil
}

// ListJobRoles returns job roles with their courses, served from the cache
// until a catalog write invalidates it.
func (s *CatalogService) ListJobRoles(ctx context.Context) ([]gormModels.JobRole, error) {
	key := string(constants.CachePrefixJobRoles)

	var roles []gormModels.JobRole
	hit, err := common.GetJSON(ctx, s.cache, key, &roles)
	if err != nil {
		logging.Warn("Job role cache read failed", "error", err)
	}
	s.metrics.CacheLookup("job_roles", hit)
	if hit {
		return roles, nil
	}

	roles = []gormModels.JobRole{}
	if err := s.db.WithContext(ctx).Preload("Courses").Order("created_at ASC").Find(&roles).Error; err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to list job roles", err)
	}
	if err := common.SetJSON(ctx, s.cache, key, roles, jobRolesCacheTTL); err != nil {
		logging.Warn("Job role cache write failed", "error", err)
	}
	return roles, nil
}

// DeleteJobRole deletes the role and any course no other role references.
func (s *CatalogService) DeleteJobRole(ctx context.Context, id string) error {
	var orphanImages []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := s.findJobRole(tx, id)
		if err != nil {
			return err
		}
		// Clear empties role.Courses, so keep the list to check afterwards.
		courses := append([]gormModels.Course(nil), role.Courses...)
		if err := tx.Model(role).Association("Courses").Clear(); err != nil {
			return dependencyError(CodeStorageFailed, "failed to unlink courses", err)
		}
		if err := tx.Delete(role).Error; err != nil {
			return dependencyError(CodeStorageFailed, "failed to delete job role", err)
		}

		for _, course := range courses {
			var refs int64
			if err := tx.Table("job_role_courses").Where("course_id = ?", course.ID).Count(&refs).Error; err != nil {
				return dependencyError(CodeStorageFailed, "failed to count course references", err)
			}
			if refs > 0 {
				continue
			}
			if err := tx.Model(&gormModels.Candidate{}).Where("selected_course_id = ?", course.ID).
				Update("selected_course_id", nil).Error; err != nil {
				return dependencyError(CodeStorageFailed, "failed to clear course selections", err)
			}
			c := course
			if err := tx.Delete(&c).Error; err != nil {
				return dependencyError(CodeStorageFailed, "failed to delete course", err)
			}
			orphanImages = append(orphanImages, course.ImagePublicID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, publicID := range orphanImages {
		s.deleteObject(ctx, publicID)
	}
	s.invalidate(ctx)
	logging.Info("Job role deleted", "job_role_id", id, "courses_deleted", len(orphanImages))
	return nil
}

// SearchCourses matches keyword against title and description, ignoring case.
func (s *CatalogService) SearchCourses(ctx context.Context, keyword string) ([]gormModels.Course, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, validationError("Keyword is required.")
	}
	pattern := "%" + strings.ToLower(keyword) + "%"

	var courses []gormModels.Course
	err := s.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("title ASC").
		Find(&courses).Error
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to search courses", err)
	}
	return courses, nil
}

func (s *CatalogService) findCandidate(ctx context.Context, id string) (*gormModels.Candidate, error) {
	var c gormModels.Candidate
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, CodeNotFound, "Candidate not found")
	}
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to load candidate", err)
	}
	return &c, nil
}

// SelectCourse records the candidate's course. Selecting again replaces it.
func (s *CatalogService) SelectCourse(ctx context.Context, candidateID, courseID string) (*dtos.CourseSelectionResponse, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, validationError("Course ID is required")
	}
	course, err := s.findCourse(s.db.WithContext(ctx), courseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, validationError("Invalid course ID")
		}
		return nil, err
	}
	if _, err := s.findCandidate(ctx, candidateID); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&gormModels.Candidate{}).Where("id = ?", candidateID).
		Update("selected_course_id", course.ID).Error
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to save course selection", err)
	}

	logging.Info("Course selected", "candidate_id", candidateID, "course_id", course.ID)
	return &dtos.CourseSelectionResponse{Selected: true, CourseID: course.ID, Course: course}, nil
}

func (s *CatalogService) CourseSelection(ctx context.Context, candidateID string) (*dtos.CourseSelectionResponse, error) {
	c, err := s.findCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if c.SelectedCourseID == nil || *c.SelectedCourseID == "" {
		return &dtos.CourseSelectionResponse{Selected: false}, nil
	}
	resp := &dtos.CourseSelectionResponse{Selected: true, CourseID: *c.SelectedCourseID}
	if course, err := s.findCourse(s.db.WithContext(ctx), *c.SelectedCourseID); err == nil {
		resp.Course = course
	}
	return resp, nil
}

// UpdateCCCStatus stores the candidate's CCC status. Yes requires a certificate.
func (s *CatalogService) UpdateCCCStatus(ctx context.Context, candidateID, status string, certificate *dtos.UploadedFile) (*dtos.CCCStatusResponse, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, validationError("CCC certification status is required")
	}
	if !oneOf(status, validCCCStatuses) {
		return nil, validationError("CCC certification status must be Yes, No or Pending")
	}
	hasCert := certificate != nil && len(certificate.Data) > 0
	if status == "Yes" && !hasCert {
		return nil, validationError("CCC Certificate is required")
	}
	if _, err := s.findCandidate(ctx, candidateID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"ccc_certified": status}
	resp := &dtos.CCCStatusResponse{Status: status}
	var uploaded string
	if status == "Yes" {
		obj, err := s.storage.Upload(ctx, certificate.Data, constants.FolderCertificates, certificate.Filename)
		if err != nil {
			return nil, dependencyError(CodeUploadFailed, "Failed to upload certificate.", err)
		}
		uploaded = obj.PublicID
		updates["ccc_certificate"] = obj.URL
		resp.Certificate = obj.URL
	}

	err := s.db.WithContext(ctx).Model(&gormModels.Candidate{}).Where("id = ?", candidateID).Updates(updates).Error
	if err != nil {
		s.deleteObject(ctx, uploaded)
		return nil, dependencyError(CodeStorageFailed, "failed to update CCC status", err)
	}

	logging.Info("CCC status updated", "candidate_id", candidateID, "status", status)
	return resp, nil
}

func (s *CatalogService) CCCStatus(ctx context.Context, candidateID string) (*dtos.CCCStatusResponse, error) {
	c, err := s.findCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	resp := &dtos.CCCStatusResponse{Status: c.CCCCertified}
	if c.CCCCertificate != nil {
		resp.Certificate = *c.CCCCertificate
	}
	return resp, nil
}
