package handlers

import (
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/go-chi/chi/v5"

	"pebblely/internal/domain"
	"pebblely/pkg/zip"
)

// ServeFile streams a stored file back as an attachment.
func (a *App) ServeFile(w http.ResponseWriter, r *http.Request) {
	sub, err := domain.ParseSubdirectory(chi.URLParam(r, "subdirectory"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	filename := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(filename); err == nil {
			filename = unescaped
		}
	}

	f, info, err := a.Store.Open(sub, filename)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	defer f.Close()

	name := path.Base(filename)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// Archive downloads every file of a subdirectory as a single zip.
func (a *App) Archive(w http.ResponseWriter, r *http.Request) {
	sub, err := domain.ParseSubdirectory(chi.URLParam(r, "subdirectory"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	assets, err := a.Store.ReadAll(r.Context(), sub)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": sub.String() + ".zip"}))
	if err := zip.ArchiveAssets(w, assets); err != nil {
		a.requestLogger(r).Error().Err(err).Str("subdirectory", sub.String()).Msg("handlers: archive stream failed")
	}
}
