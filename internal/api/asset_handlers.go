package api

import (
	"net/http"
	"strings"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// UploadAssetHandler handles POST /api/v1/assets/{kind} (multipart: file, subject)
func UploadAssetHandler(assets AssetLibrary) http.HandlerFunc {
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
		file := f.file("file")
		if file == nil {
			respondBadRequest(w, initTime, "File is required.")
			return
		}

		asset, err := assets.Upload(r.Context(), chi.URLParam(r, "kind"), claims.UserID(), f.get("subject"), *file)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "File uploaded successfully.", asset, http.StatusCreated)
	}
}

// ListAssetsHandler handles GET /api/v1/assets/{kind}
func ListAssetsHandler(assets AssetLibrary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		list, err := assets.List(r.Context(), chi.URLParam(r, "kind"))
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Files fetched.", list)
	}
}

// ReplaceAssetHandler handles PUT /api/v1/assets/item/{id}
func ReplaceAssetHandler(assets AssetLibrary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		f, err := parseMultipart(w, r)
		if err != nil {
			respondBadRequest(w, initTime, "Invalid multipart form")
			return
		}
		file := f.file("file")
		if file == nil {
			respondBadRequest(w, initTime, "File is required.")
			return
		}

		asset, err := assets.Replace(r.Context(), chi.URLParam(r, "id"), f.get("subject"), *file)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "File updated successfully.", asset)
	}
}

// DeleteAssetHandler handles DELETE /api/v1/assets/item/{id}
func DeleteAssetHandler(assets AssetLibrary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if err := assets.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "File deleted successfully.", nil)
	}
}

// SendLetterheadHandler handles POST /api/v1/assets/letterhead/send
// (multipart: subject, message, emails, pdf).
func SendLetterheadHandler(assets AssetLibrary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		f, err := parseMultipart(w, r)
		if err != nil {
			respondBadRequest(w, initTime, "Invalid multipart form")
			return
		}

		req := dtos.SendLetterheadRequest{
			Subject: f.get("subject"),
			Message: f.get("message"),
		}
		for _, v := range f.values["emails"] {
			for _, e := range strings.Split(v, ",") {
				if e = strings.TrimSpace(e); e != "" {
					req.Emails = append(req.Emails, e)
				}
			}
		}

		var pdf dtos.UploadedFile
		if p := f.file("pdf"); p != nil {
			pdf = *p
		}

		result, err := assets.SendLetterhead(r.Context(), req, pdf)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Letterhead sent.", result)
	}
}

// SentMessagesHandler handles GET /api/v1/assets/letterhead/sent?email=
func SentMessagesHandler(assets AssetLibrary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		list, err := assets.SentMessages(r.Context(), r.URL.Query().Get("email"))
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Sent messages fetched.", list)
	}
}
