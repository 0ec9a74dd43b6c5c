package api

import (
	"net/http"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/models/dtos"
)

func registrantForm(f *multipartForm) dtos.RegistrantForm {
	return dtos.RegistrantForm{
		Name:           f.get("name"),
		Email:          f.get("email"),
		Phone:          f.get("phone"),
		Password:       f.values.Get("password"),
		Guardian:       f.get("guardian"),
		Address:        f.get("address"),
		CurrentAddress: f.get("currentAddress"),
		DOB:            f.get("dob"),
		Gender:         f.get("gender"),
		BankAccNumber:  f.get("bankAccNumber"),
		BankName:       f.get("bankName"),
		IFSC:           f.get("ifsc"),
		Undertaking:    f.get("undertaking"),
	}
}

// respondRegistration renders the step log on both outcomes.
func respondRegistration(w http.ResponseWriter, initTime time.Time, resp *dtos.RegistrationResponse, err error) {
	if err != nil {
		var extra map[string]any
		if resp != nil {
			extra = map[string]any{"steps": resp.Steps}
		}
		respondServiceError(w, initTime, err, extra)
		return
	}
	common.RespondSuccess(w, initTime, resp.Message, resp, http.StatusCreated)
}

// RegisterCandidateHandler handles POST /api/v1/candidate/register (multipart)
func RegisterCandidateHandler(reg Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		f, err := parseMultipart(w, r)
		if err != nil {
			respondBadRequest(w, initTime, "Invalid multipart form")
			return
		}

		form := dtos.CandidateForm{
			RegistrantForm:           registrantForm(f),
			VolunteerRegNum:          f.get("volunteerRegNum"),
			PwdCategory:              f.get("pwdCategory"),
			EntrepreneurshipInterest: f.get("entrepreneurshipInterest"),
			EducationQualification:   f.get("educationQualification"),
		}

		resp, err := reg.RegisterCandidate(r.Context(), form, f.files)
		respondRegistration(w, initTime, resp, err)
	}
}

// RegisterVolunteerHandler handles POST /api/v1/volunteer/register (multipart)
func RegisterVolunteerHandler(reg Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		f, err := parseMultipart(w, r)
		if err != nil {
			respondBadRequest(w, initTime, "Invalid multipart form")
			return
		}

		form := dtos.VolunteerForm{
			RegistrantForm:            registrantForm(f),
			Age:                       f.get("age"),
			EmploymentStatus:          f.get("employmentStatus"),
			MonthlyIncomeRange:        f.get("monthlyIncomeRange"),
			EducationDegree:           f.get("educationDegree"),
			EducationYearOfCompletion: f.get("educationYearOfCompletion"),
		}

		resp, err := reg.RegisterVolunteer(r.Context(), form, f.files)
		respondRegistration(w, initTime, resp, err)
	}
}

// TemporaryNumberHandler handles POST /api/v1/volunteer/generate-temp-reg
func TemporaryNumberHandler(reg Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.OTPRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		resp, err := reg.IssueTemporaryNumber(r.Context(), req.Email)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		code := http.StatusOK
		if resp.Created {
			code = http.StatusCreated
		}
		common.RespondSuccess(w, initTime, "Temporary registration number issued.", resp, code)
	}
}
