package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

const maxJSONBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// multipartForm is a parsed multipart request: first value per text field
// and the first file per file field.
type multipartForm struct {
	values url.Values
	files  dtos.Files
}

func (f *multipartForm) get(field string) string {
	return strings.TrimSpace(f.values.Get(field))
}

func (f *multipartForm) file(field string) *dtos.UploadedFile {
	if !f.files.Has(field) {
		return nil
	}
	file := f.files[field]
	return &file
}

func parseMultipart(w http.ResponseWriter, r *http.Request) (*multipartForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSizeBytes)
	if err := r.ParseMultipartForm(constants.MaxUploadSizeBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	form := &multipartForm{values: r.MultipartForm.Value, files: dtos.Files{}}
	for field, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		h := headers[0]
		f, err := h.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", field, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", field, err)
		}
		form.files[field] = dtos.UploadedFile{
			Filename:    h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Data:        data,
		}
	}
	return form, nil
}

// wildcardParam returns the trailing "*" segment, so registration numbers
// containing slashes can be used either raw or percent encoded.
func wildcardParam(r *http.Request) string {
	raw := chi.URLParam(r, "*")
	if v, err := url.PathUnescape(raw); err == nil {
		return strings.Trim(v, "/")
	}
	return strings.Trim(raw, "/")
}
