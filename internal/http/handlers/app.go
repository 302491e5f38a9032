package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"pebblely/internal/domain"
	"pebblely/internal/infra"
	"pebblely/internal/processing"
	"pebblely/pkg/zip"
)

// FileStore is the read side of the storage layer used by the handlers.
type FileStore interface {
	List(sub domain.Subdirectory) ([]string, error)
	Open(sub domain.Subdirectory, filename string) (*os.File, os.FileInfo, error)
	ReadAll(ctx context.Context, sub domain.Subdirectory) ([]zip.Asset, error)
}

// CreditsSource reports the vendor account balance.
type CreditsSource interface {
	Credits(ctx context.Context) (int, error)
}

type App struct {
	Store          FileStore
	Processor      *processing.Processor
	Credits        CreditsSource
	Logger         *infra.Logger
	PublicBaseURL  string
	MaxUploadBytes int64
}

func NewApp(store FileStore, processor *processing.Processor, credits CreditsSource, logger *infra.Logger, publicBaseURL string, maxUploadBytes int64) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &App{
		Store:          store,
		Processor:      processor,
		Credits:        credits,
		Logger:         logger,
		PublicBaseURL:  publicBaseURL,
		MaxUploadBytes: maxUploadBytes,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// badRequest marks problems with the submitted form itself.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

// fail maps an error onto a response: missing files are 404, form, vendor
// and storage problems are 400 with the error text, anything else is 500.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := a.requestLogger(r)
	var formErr *badRequest
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug().Err(err).Msg("handlers: not found")
		http.NotFound(w, r)
	case errors.As(err, &formErr):
		http.Error(w, formErr.msg, http.StatusBadRequest)
	case errors.Is(err, domain.ErrVendor), errors.Is(err, domain.ErrStorage):
		logger.Warn().Err(err).Msg("handlers: request failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error().Err(err).Msg("handlers: unexpected error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (a *App) requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return a.Logger
}
