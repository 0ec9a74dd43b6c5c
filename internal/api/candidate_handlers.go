package api

import (
	"net/http"
	"strings"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/models/dtos"
)

// UpdateCCCStatusHandler handles POST /api/v1/candidate/update-ccc-status
// (multipart: cccCertified, cccCertificate).
func UpdateCCCStatusHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, ok := requireClaims(w, r, initTime)
		if !ok {
			return
		}
		f, err := parseMultipart(w, r)
		if err != nil {
			respondBadRequest(w, initTime, "Invalid multipart form")
			return
		}

		resp, err := catalog.UpdateCCCStatus(r.Context(), claims.UserID(), f.get("cccCertified"), f.file("cccCertificate"))
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "CCC status updated successfully.", resp)
	}
}

// CCCStatusHandler handles GET /api/v1/candidate/ccc-status
func CCCStatusHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, ok := requireClaims(w, r, initTime)
		if !ok {
			return
		}
		resp, err := catalog.CCCStatus(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "CCC status fetched.", resp)
	}
}

// SearchCoursesHandler handles GET /api/v1/candidate/search-courses?keyword=
func SearchCoursesHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
		if keyword == "" {
			respondBadRequest(w, initTime, "Keyword is required.")
			return
		}

		courses, err := catalog.SearchCourses(r.Context(), keyword)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Courses fetched.", map[string]any{
			"totalCourses": len(courses),
			"courses":      courses,
		})
	}
}

// SelectCourseHandler handles POST /api/v1/candidate/select and
// /update-job-courses.
func SelectCourseHandler(catalog Catalog, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, ok := requireClaims(w, r, initTime)
		if !ok {
			return
		}
		var req dtos.SelectCourseRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.CourseID) == "" {
			respondBadRequest(w, initTime, "Course ID must be provided")
			return
		}

		resp, err := catalog.SelectCourse(r.Context(), claims.UserID(), req.CourseID)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, message, resp)
	}
}

// CourseSelectionHandler handles GET /api/v1/candidate/course-selection
func CourseSelectionHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, ok := requireClaims(w, r, initTime)
		if !ok {
			return
		}
		resp, err := catalog.CourseSelection(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Course selection fetched.", resp)
	}
}
