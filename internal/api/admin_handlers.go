package api

import (
	"net/http"
	"strings"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// ListVolunteersHandler handles GET /api/v1/admin/volunteers
func ListVolunteersHandler(admin Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		list, err := admin.ListVolunteers(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Volunteers fetched.", list)
	}
}

// ListCandidatesHandler handles GET /api/v1/admin/users
func ListCandidatesHandler(admin Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		list, err := admin.ListCandidates(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Candidates fetched.", list)
	}
}

// TotalsHandler handles GET /api/v1/admin/count
func TotalsHandler(admin Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		totals, err := admin.Totals(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Totals fetched.", totals)
	}
}

// CandidateCountPerVolunteerHandler handles GET /api/v1/admin/volunteer-candidate-count
func CandidateCountPerVolunteerHandler(admin Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		counts, err := admin.CandidateCountPerVolunteer(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Candidate counts fetched.", counts)
	}
}

// VolunteerWithCandidatesHandler handles GET /api/v1/admin/volunteer/*
func VolunteerWithCandidatesHandler(admin Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		view, err := admin.VolunteerWithCandidates(r.Context(), wildcardParam(r))
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Volunteer fetched.", view)
	}
}

// CandidateByRegNumberHandler handles GET /api/v1/admin/user/*
func CandidateByRegNumberHandler(admin Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		detail, err := admin.CandidateByRegNumber(r.Context(), wildcardParam(r))
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Candidate fetched.", detail)
	}
}

// ToggleVolunteerBlockHandler handles PUT /api/v1/admin/volunteer/block/*
func ToggleVolunteerBlockHandler(admin Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		resp, err := admin.ToggleVolunteerBlock(r.Context(), wildcardParam(r))
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, blockMessage("Volunteer", resp.IsBlocked), resp)
	}
}

// ToggleCandidateBlockHandler handles PUT /api/v1/admin/users/block/*
func ToggleCandidateBlockHandler(admin Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		resp, err := admin.ToggleCandidateBlock(r.Context(), wildcardParam(r))
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, blockMessage("Candidate", resp.IsBlocked), resp)
	}
}

func blockMessage(who string, blocked bool) string {
	if blocked {
		return who + " has been blocked."
	}
	return who + " has been unblocked."
}

// courseRequest reads the course fields of a multipart form. Job roles may
// be repeated fields or one comma separated value; absent leaves them nil.
func courseRequest(f *multipartForm) dtos.CourseRequest {
	req := dtos.CourseRequest{
		Title:       f.get("title"),
		Description: f.get("description"),
		Eligibility: f.get("eligibility"),
	}
	if raw, ok := f.values["jobRoles"]; ok {
		ids := []string{}
		for _, v := range raw {
			for _, id := range strings.Split(v, ",") {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
		}
		req.JobRoleIDs = &ids
	}
	return req
}

// CreateCourseHandler handles POST /api/v1/admin/courses (multipart, image)
func CreateCourseHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		f, err := parseMultipart(w, r)
		if err != nil {
			respondBadRequest(w, initTime, "Invalid multipart form")
			return
		}

		course, err := catalog.CreateCourse(r.Context(), courseRequest(f), f.file("image"))
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Course created successfully.", course, http.StatusCreated)
	}
}

// UpdateCourseHandler handles PUT /api/v1/admin/edit-courses/{id}
func UpdateCourseHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		f, err := parseMultipart(w, r)
		if err != nil {
			respondBadRequest(w, initTime, "Invalid multipart form")
			return
		}

		course, err := catalog.UpdateCourse(r.Context(), chi.URLParam(r, "id"), courseRequest(f), f.file("image"))
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Course updated successfully.", course)
	}
}

// ListCoursesHandler handles GET /api/v1/admin/courses
func ListCoursesHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		courses, err := catalog.ListCourses(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Courses fetched.", courses)
	}
}

// DeleteCourseHandler handles DELETE /api/v1/admin/courses/{id}
func DeleteCourseHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if err := catalog.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Course deleted successfully.", nil)
	}
}

// CreateJobRoleHandler handles POST /api/v1/admin/jobroles
func CreateJobRoleHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.JobRoleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		role, err := catalog.CreateJobRole(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Job role created successfully.", role, http.StatusCreated)
	}
}

// AttachCoursesHandler handles PUT /api/v1/admin/jobroles/{id}/courses
func AttachCoursesHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AttachCoursesRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		role, err := catalog.AttachCourses(r.Context(), chi.URLParam(r, "id"), req.CourseIDs)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Courses attached successfully.", role)
	}
}

// ListJobRolesHandler handles GET /api/v1/admin/jobroles
func ListJobRolesHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		roles, err := catalog.ListJobRoles(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Job roles fetched.", roles)
	}
}

// DeleteJobRoleHandler handles DELETE /api/v1/admin/jobroles/{id}
func DeleteJobRoleHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if err := catalog.DeleteJobRole(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Job role deleted successfully.", nil)
	}
}
