package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"pebblely/internal/domain"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

type fileLink struct {
	Name string
	URL  string
}

type section struct {
	Name  string
	Files []fileLink
}

type indexPage struct {
	Credits          int
	CreditsAvailable bool
	Themes           []string
	Sections         []section
}

// Index renders the upload forms and the stored files of every subdirectory.
// The page still renders when the credit balance cannot be fetched.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Themes: domain.Themes()}

	credits, err := a.Credits.Credits(r.Context())
	if err != nil {
		a.requestLogger(r).Warn().Err(err).Msg("handlers: credits unavailable for listing page")
	} else {
		page.Credits = credits
		page.CreditsAvailable = true
	}

	for _, sub := range domain.Subdirectories() {
		names, err := a.Store.List(sub)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		s := section{Name: sub.String(), Files: make([]fileLink, 0, len(names))}
		for _, name := range names {
			s.Files = append(s.Files, fileLink{Name: name, URL: a.fileURL(sub, name)})
		}
		page.Sections = append(page.Sections, s)
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (a *App) fileURL(sub domain.Subdirectory, name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(a.PublicBaseURL, "/") + "/files/" + sub.String() + "/" + strings.Join(segments, "/")
}
