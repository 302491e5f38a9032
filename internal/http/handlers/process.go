package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"pebblely/internal/domain"
	"pebblely/internal/processing"
)

// Upscale handles POST /upscale: files plus a required upscaleSize.
func (a *App) Upscale(w http.ResponseWriter, r *http.Request) {
	form, err := a.parseForm(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	uploads, err := readUploads(form, "files")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	size, err := formInt(form, "upscaleSize")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if size == nil {
		a.fail(w, r, &badRequest{msg: "upscaleSize is required"})
		return
	}
	a.finish(w, r, a.Processor.Upscale(detach(r), uploads, *size))
}

// RemoveBackground handles POST /remove-background.
func (a *App) RemoveBackground(w http.ResponseWriter, r *http.Request) {
	form, err := a.parseForm(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	uploads, err := readUploads(form, "files")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.finish(w, r, a.Processor.RemoveBackgrounds(detach(r), uploads))
}

// CreateBackground handles POST /create-background. Scene settings are
// shared by every file of the batch.
func (a *App) CreateBackground(w http.ResponseWriter, r *http.Request) {
	form, err := a.parseForm(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	uploads, err := readUploads(form, "files")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	params, err := backgroundParams(form)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	height, err := formInt(form, "height")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	width, err := formInt(form, "width")
	if err != nil {
		a.fail(w, r, err)
		return
	}

	ctx := detach(r)
	req, err := a.Processor.BuildCreateBackgroundRequest(ctx, params, height, width)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.finish(w, r, a.Processor.CreateBackgrounds(ctx, uploads, req))
}

// Inpaint handles POST /inpaint: files, a required mask and scene settings.
func (a *App) Inpaint(w http.ResponseWriter, r *http.Request) {
	form, err := a.parseForm(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	uploads, err := readUploads(form, "files")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	mask, err := readUpload(form, "mask")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if mask == nil {
		a.fail(w, r, &badRequest{msg: "mask is required"})
		return
	}
	params, err := backgroundParams(form)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	ctx := detach(r)
	req, err := a.Processor.BuildInpaintRequest(ctx, *mask, params)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.finish(w, r, a.Processor.Inpaint(ctx, uploads, req))
}

// finish redirects back to the listing page once a batch completed.
func (a *App) finish(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// detach keeps a batch running when the client goes away mid-request so
// already-paid vendor work is still stored.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (a *App) parseForm(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &badRequest{msg: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)}
		}
		return nil, &badRequest{msg: "invalid multipart form: " + err.Error()}
	}
	return r.MultipartForm, nil
}

// readUploads loads every file submitted under field. At least one is required.
func readUploads(form *multipart.Form, field string) ([]processing.Upload, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, &badRequest{msg: field + " is required"}
	}
	uploads := make([]processing.Upload, 0, len(headers))
	for _, fh := range headers {
		u, err := readHeader(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

// readUpload returns the first file under field, or nil when none was sent.
func readUpload(form *multipart.Form, field string) (*processing.Upload, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	u, err := readHeader(headers[0])
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func readHeader(fh *multipart.FileHeader) (processing.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return processing.Upload{}, &badRequest{msg: fmt.Sprintf("open %q: %v", fh.Filename, err)}
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return processing.Upload{}, &badRequest{msg: fmt.Sprintf("read %q: %v", fh.Filename, err)}
	}
	// Browsers may send a client-side path; keep the base name only.
	name := path.Base(strings.ReplaceAll(fh.Filename, `\`, "/"))
	return processing.Upload{Filename: name, Data: data}, nil
}

// formString returns nil for absent or blank fields.
func formString(form *multipart.Form, field string) *string {
	values := form.Value[field]
	if len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	if v == "" {
		return nil
	}
	return &v
}

func formInt(form *multipart.Form, field string) (*int, error) {
	raw := formString(form, field)
	if raw == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(*raw)
	if err != nil || n <= 0 {
		return nil, &badRequest{msg: field + " must be a positive integer"}
	}
	return &n, nil
}

func backgroundParams(form *multipart.Form) (processing.BackgroundParams, error) {
	params := processing.BackgroundParams{
		Description: formString(form, "description"),
		StyleColor:  formString(form, "styleColor"),
		Negative:    formString(form, "negative"),
	}
	if theme := formString(form, "theme"); theme != nil {
		canonical := domain.CanonicalTheme(*theme)
		params.Theme = &canonical
	}
	style, err := readUpload(form, "styleImage")
	if err != nil {
		return processing.BackgroundParams{}, err
	}
	params.StyleImage = style
	return params, nil
}
