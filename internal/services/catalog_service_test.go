package services

import (
	"context"
	"testing"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/models/dtos"
	gormModels "anara-skills/registrar/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type catalogFixture struct {
	db      *gorm.DB
	svc     *CatalogService
	storage *mockStorage
	cache   *common.CacheService
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	f := &catalogFixture{db: setupTestDB(t), storage: &mockStorage{}, cache: common.NewCacheService(600, 600)}
	f.svc = NewCatalogService(f.db, f.storage, f.cache, nil)
	return f
}

func (f *catalogFixture) course(t *testing.T, title string) *gormModels.Course {
	t.Helper()
	img := file(title + ".png")
	c, err := f.svc.CreateCourse(context.Background(), dtos.CourseRequest{Title: title, Description: title + " basics"}, &img)
	require.NoError(t, err)
	return c
}

func TestCreateCourse(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateCourse(ctx, dtos.CourseRequest{Title: "Tally"}, nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.CreateCourse(ctx, dtos.CourseRequest{Title: "Tally", Description: "Accounts"}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	c := f.course(t, "Tally")
	assert.NotEmpty(t, c.Image)
	assert.Len(t, f.storage.uploads, 1)
}

func TestUpdateCourseReplacesImage(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	c := f.course(t, "Tally")
	oldID := c.ImagePublicID

	img := file("new.png")
	updated, err := f.svc.UpdateCourse(ctx, c.ID, dtos.CourseRequest{Title: "Tally Prime"}, &img)
	require.NoError(t, err)
	assert.Equal(t, "Tally Prime", updated.Title)
	assert.Equal(t, "Tally basics", updated.Description)
	assert.NotEqual(t, oldID, updated.ImagePublicID)
	assert.Equal(t, []string{oldID}, f.storage.deleted)

	_, err = f.svc.UpdateCourse(ctx, "missing", dtos.CourseRequest{}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobRolesAndCache(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	c1 := f.course(t, "Tally")
	c2 := f.course(t, "Excel")

	_, err := f.svc.CreateJobRole(ctx, dtos.JobRoleRequest{Name: "Clerk"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.CreateJobRole(ctx, dtos.JobRoleRequest{Name: "Clerk", Description: "Office", CourseIDs: []string{"missing"}})
	assert.ErrorIs(t, err, ErrValidation)

	role, err := f.svc.CreateJobRole(ctx, dtos.JobRoleRequest{Name: "Clerk", Description: "Office", CourseIDs: []string{c1.ID}})
	require.NoError(t, err)

	roles, err := f.svc.ListJobRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Len(t, roles[0].Courses, 1)

	// Served from cache until a write.
	require.NoError(t, f.db.Create(&gormModels.JobRole{Name: "Direct", Description: "bypasses service"}).Error)
	roles, err = f.svc.ListJobRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	_, err = f.svc.AttachCourses(ctx, role.ID, []string{c2.ID, c1.ID})
	require.NoError(t, err)
	roles, err = f.svc.ListJobRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	for _, r := range roles {
		if r.ID == role.ID {
			assert.Len(t, r.Courses, 2)
		}
	}
}

func TestDeleteJobRoleRemovesExclusiveCourses(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	shared := f.course(t, "Shared")
	exclusive := f.course(t, "Exclusive")

	a, err := f.svc.CreateJobRole(ctx, dtos.JobRoleRequest{Name: "A", Description: "a", CourseIDs: []string{shared.ID, exclusive.ID}})
	require.NoError(t, err)
	_, err = f.svc.CreateJobRole(ctx, dtos.JobRoleRequest{Name: "B", Description: "b", CourseIDs: []string{shared.ID}})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteJobRole(ctx, a.ID))

	courses, err := f.svc.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, shared.ID, courses[0].ID)
	assert.Contains(t, f.storage.deleted, exclusive.ImagePublicID)

	assert.ErrorIs(t, f.svc.DeleteJobRole(ctx, a.ID), ErrNotFound)
}

func TestDeleteCourseUnlinks(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	c := f.course(t, "Tally")
	role, err := f.svc.CreateJobRole(ctx, dtos.JobRoleRequest{Name: "Clerk", Description: "Office", CourseIDs: []string{c.ID}})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCourse(ctx, c.ID))

	roles, err := f.svc.ListJobRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, role.ID, roles[0].ID)
	assert.Empty(t, roles[0].Courses)
	assert.ErrorIs(t, f.svc.DeleteCourse(ctx, c.ID), ErrNotFound)
}

func TestSearchCourses(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	f.course(t, "Tally")
	f.course(t, "Excel")

	found, err := f.svc.SearchCourses(ctx, "TALLY")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Tally", found[0].Title)

	found, err = f.svc.SearchCourses(ctx, "basics")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = f.svc.SearchCourses(ctx, " ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCourseSelectionAndCCC(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	vol := createTestVolunteer(t, f.db, 1, false)
	cand := createTestCandidate(t, f.db, 1, vol.RegNumber, true)
	c := f.course(t, "Tally")

	sel, err := f.svc.CourseSelection(ctx, cand.ID)
	require.NoError(t, err)
	assert.False(t, sel.Selected)

	_, err = f.svc.SelectCourse(ctx, cand.ID, "missing")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.SelectCourse(ctx, cand.ID, c.ID)
	require.NoError(t, err)
	sel, err = f.svc.CourseSelection(ctx, cand.ID)
	require.NoError(t, err)
	assert.True(t, sel.Selected)
	assert.Equal(t, c.ID, sel.CourseID)

	status, err := f.svc.CCCStatus(ctx, cand.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pending", status.Status)

	_, err = f.svc.UpdateCCCStatus(ctx, cand.ID, "Yes", nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.UpdateCCCStatus(ctx, cand.ID, "Maybe", nil)
	assert.ErrorIs(t, err, ErrValidation)

	cert := file("ccc.pdf")
	updated, err := f.svc.UpdateCCCStatus(ctx, cand.ID, "Yes", &cert)
	require.NoError(t, err)
	assert.NotEmpty(t, updated.Certificate)

	status, err = f.svc.CCCStatus(ctx, cand.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yes", status.Status)
	assert.Equal(t, updated.Certificate, status.Certificate)
}
