package routes

import (
	"anara-skills/registrar/internal/api"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Per client IP on OTP and login endpoints: 1 request/sec, burst up to 5.
const (
	sensitiveRatePerSecond = 1
	sensitiveRateBurst     = 5
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies) {
	svc := deps.Services
	limiter := middleware.NewRateLimiter(sensitiveRatePerSecond, sensitiveRateBurst)

	candidateAuth := middleware.AuthMiddleware(deps.Tokens, constants.RoleCandidate)
	volunteerAuth := middleware.AuthMiddleware(deps.Tokens, constants.RoleVolunteer)
	adminAuth := middleware.AuthMiddleware(deps.Tokens, constants.RoleAdmin)

	r.Route("/api/v1", func(v1 chi.Router) {

		// Candidates
		v1.Route("/candidate", func(c chi.Router) {
			c.Group(func(public chi.Router) {
				public.Use(limiter.Middleware)
				public.Post("/send-email-otp", api.SendOTPHandler(svc.CandidateOTP))
				public.Post("/verify-email-otp", api.VerifyOTPHandler(svc.CandidateOTP))
				public.Post("/resend-otp", api.ResendOTPHandler(svc.CandidateOTP))
				public.Post("/check-otp-status", api.OTPStatusHandler(svc.CandidateOTP))
				public.Post("/login", api.LoginHandler(svc.Accounts, constants.RoleCandidate))
				public.Post("/forgot-password", api.ForgotPasswordHandler(svc.Accounts, constants.RoleCandidate))
			})
			c.Post("/register", api.RegisterCandidateHandler(svc.Registration))
			c.Put("/reset-password/{token}", api.ResetPasswordHandler(svc.Accounts, constants.RoleCandidate))

			c.Group(func(authed chi.Router) {
				authed.Use(candidateAuth)
				authed.Get("/logout", api.LogoutHandler(svc.Accounts))
				authed.Get("/me", api.MeHandler(svc.Accounts, constants.RoleCandidate))
				authed.Post("/update-ccc-status", api.UpdateCCCStatusHandler(svc.Catalog))

				// Blocked candidates keep their session but lose the catalog
				authed.Group(func(active chi.Router) {
					active.Use(middleware.IsActiveMiddleware(deps.CandidateBlockStatus))
					active.Get("/ccc-status", api.CCCStatusHandler(svc.Catalog))
					active.Get("/courses", api.ListJobRolesHandler(svc.Catalog))
					active.Get("/search-courses", api.SearchCoursesHandler(svc.Catalog))
					active.Post("/select", api.SelectCourseHandler(svc.Catalog, "Course selected successfully."))
					active.Post("/update-job-courses", api.SelectCourseHandler(svc.Catalog, "Course updated successfully."))
					active.Get("/course-selection", api.CourseSelectionHandler(svc.Catalog))
				})
			})
		})

		// Volunteers
		v1.Route("/volunteer", func(v chi.Router) {
			v.Group(func(public chi.Router) {
				public.Use(limiter.Middleware)
				public.Post("/send-email-otp", api.SendOTPHandler(svc.VolunteerOTP))
				public.Post("/verify-email-otp", api.VerifyOTPHandler(svc.VolunteerOTP))
				public.Post("/resend-otp", api.ResendOTPHandler(svc.VolunteerOTP))
				public.Post("/check-otp-status", api.OTPStatusHandler(svc.VolunteerOTP))
				public.Post("/generate-temp-reg", api.TemporaryNumberHandler(svc.Registration))
				public.Post("/login", api.LoginHandler(svc.Accounts, constants.RoleVolunteer))
				public.Post("/forgot-password", api.ForgotPasswordHandler(svc.Accounts, constants.RoleVolunteer))
			})
			v.Post("/register", api.RegisterVolunteerHandler(svc.Registration))
			v.Put("/reset-password/{token}", api.ResetPasswordHandler(svc.Accounts, constants.RoleVolunteer))

			v.Group(func(authed chi.Router) {
				authed.Use(volunteerAuth)
				authed.Get("/logout", api.LogoutHandler(svc.Accounts))
				authed.Get("/me", api.MeHandler(svc.Accounts, constants.RoleVolunteer))
				authed.Get("/usersdetails", api.CandidatesOfVolunteerHandler(svc.Admin))
			})
		})

		v1.Route("/payment-requests", func(p chi.Router) {
			p.Use(volunteerAuth)
			p.Post("/request", api.CreatePaymentRequestHandler(svc.Payments))
			p.Get("/my-requests", api.MyPaymentRequestsHandler(svc.Payments))
		})

		// Admins
		v1.Route("/admin", func(a chi.Router) {
			a.Group(func(public chi.Router) {
				public.Use(limiter.Middleware)
				public.Post("/login", api.LoginHandler(svc.Accounts, constants.RoleAdmin))
				public.Post("/password/forgot", api.ForgotPasswordHandler(svc.Accounts, constants.RoleAdmin))
			})
			a.Put("/password/reset/{token}", api.ResetPasswordHandler(svc.Accounts, constants.RoleAdmin))

			a.Group(func(admin chi.Router) {
				admin.Use(adminAuth)
				admin.Get("/logout", api.LogoutHandler(svc.Accounts))
				admin.Get("/me", api.MeHandler(svc.Accounts, constants.RoleAdmin))
				// The first admin comes from cmd/admin_seed
				admin.Post("/register", api.AdminRegisterHandler(svc.Accounts))

				// Dashboard
				admin.Get("/volunteers", api.ListVolunteersHandler(svc.Admin))
				admin.Get("/users", api.ListCandidatesHandler(svc.Admin))
				admin.Get("/count", api.TotalsHandler(svc.Admin))
				admin.Get("/volunteer-candidate-count", api.CandidateCountPerVolunteerHandler(svc.Admin))
				admin.Get("/volunteer/*", api.VolunteerWithCandidatesHandler(svc.Admin))
				admin.Put("/volunteer/block/*", api.ToggleVolunteerBlockHandler(svc.Admin))
				admin.Get("/user/*", api.CandidateByRegNumberHandler(svc.Admin))
				admin.Put("/users/block/*", api.ToggleCandidateBlockHandler(svc.Admin))

				// Catalog
				admin.Post("/courses", api.CreateCourseHandler(svc.Catalog))
				admin.Put("/edit-courses/{id}", api.UpdateCourseHandler(svc.Catalog))
				admin.Get("/courses", api.ListCoursesHandler(svc.Catalog))
				admin.Delete("/courses/{id}", api.DeleteCourseHandler(svc.Catalog))
				admin.Post("/jobroles", api.CreateJobRoleHandler(svc.Catalog))
				admin.Get("/jobroles", api.ListJobRolesHandler(svc.Catalog))
				admin.Put("/jobroles/{id}/courses", api.AttachCoursesHandler(svc.Catalog))
				admin.Delete("/jobroles/{id}", api.DeleteJobRoleHandler(svc.Catalog))

				// Payment approvals
				admin.Route("/payment-requests", func(p chi.Router) {
					p.Get("/all", api.AllPaymentRequestsHandler(svc.Payments))
					p.Patch("/approve/{requestId}", api.ApprovePaymentHandler(svc.Payments))
					p.Patch("/reject/{requestId}", api.RejectPaymentHandler(svc.Payments))
					p.Patch("/mark-paid/{requestId}", api.MarkPaidHandler(svc.Payments))
				})
			})
		})

		// Admin managed files and letterheads
		v1.Route("/assets", func(as chi.Router) {
			as.Use(adminAuth)
			as.Post("/letterhead/send", api.SendLetterheadHandler(svc.Assets))
			as.Get("/letterhead/sent", api.SentMessagesHandler(svc.Assets))
			as.Put("/item/{id}", api.ReplaceAssetHandler(svc.Assets))
			as.Delete("/item/{id}", api.DeleteAssetHandler(svc.Assets))
			as.Post("/{kind}", api.UploadAssetHandler(svc.Assets))
			as.Get("/{kind}", api.ListAssetsHandler(svc.Assets))
		})
	})
}
