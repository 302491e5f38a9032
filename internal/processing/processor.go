package processing

import (
	"context"
	"fmt"

	"pebblely/internal/domain"
	"pebblely/internal/infra"
	"pebblely/internal/providers/pebblely"
)

// Upload is one file received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

// Store is the slice of the storage layer the processor needs.
type Store interface {
	StoreAndEncode(ctx context.Context, sub domain.Subdirectory, filename string, data []byte) (string, error)
	DecodeAndStore(ctx context.Context, encoded string, sub domain.Subdirectory, filename string) error
}

// Vendor is implemented by *pebblely.Client.
type Vendor interface {
	Upscale(ctx context.Context, req pebblely.UpscaleRequest) (*pebblely.Response, error)
	RemoveBackground(ctx context.Context, req pebblely.ImageRequest) (*pebblely.Response, error)
	CreateBackground(ctx context.Context, req pebblely.CreateBackgroundRequest) (*pebblely.Response, error)
	Inpaint(ctx context.Context, req pebblely.InpaintRequest) (*pebblely.Response, error)
}

// Processor runs upload batches through the vendor and stores the results.
//
// Files in a batch are handled one after another. The first failure stops
// the batch and is returned; results written before it stay on disk.
type Processor struct {
	store  Store
	vendor Vendor
	logger *infra.Logger
}

func NewProcessor(store Store, vendor Vendor, logger *infra.Logger) *Processor {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Processor{store: store, vendor: vendor, logger: logger}
}

// Upscale upscales every upload to size and stores the results in upscale/.
func (p *Processor) Upscale(ctx context.Context, uploads []Upload, size int) error {
	return p.run(ctx, "upscale", uploads, domain.SubdirUpscale, func(ctx context.Context, image string) (*pebblely.Response, error) {
		return p.vendor.Upscale(ctx, pebblely.UpscaleRequest{Image: image, Size: size})
	})
}

// RemoveBackgrounds strips the background of every upload into removed/.
func (p *Processor) RemoveBackgrounds(ctx context.Context, uploads []Upload) error {
	return p.run(ctx, "remove-background", uploads, domain.SubdirRemoved, func(ctx context.Context, image string) (*pebblely.Response, error) {
		return p.vendor.RemoveBackground(ctx, pebblely.ImageRequest{Image: image})
	})
}

// CreateBackgrounds generates a new scene for every upload into created/,
// sharing the background settings of req.
func (p *Processor) CreateBackgrounds(ctx context.Context, uploads []Upload, req pebblely.CreateBackgroundRequest) error {
	return p.run(ctx, "create-background", uploads, domain.SubdirCreated, func(ctx context.Context, image string) (*pebblely.Response, error) {
		call := req
		call.Images = []string{image}
		return p.vendor.CreateBackground(ctx, call)
	})
}

// Inpaint applies req (mask included) to every upload into inpaint/.
func (p *Processor) Inpaint(ctx context.Context, uploads []Upload, req pebblely.InpaintRequest) error {
	return p.run(ctx, "inpaint", uploads, domain.SubdirInpaint, func(ctx context.Context, image string) (*pebblely.Response, error) {
		call := req
		call.Image = image
		return p.vendor.Inpaint(ctx, call)
	})
}

type vendorCall func(ctx context.Context, image string) (*pebblely.Response, error)

func (p *Processor) run(ctx context.Context, op string, uploads []Upload, out domain.Subdirectory, call vendorCall) error {
	for i, upload := range uploads {
		if err := p.processOne(ctx, upload, out, call); err != nil {
			p.logger.Error().
				Err(err).
				Str("operation", op).
				Str("file", upload.Filename).
				Int("index", i).
				Int("batch_size", len(uploads)).
				Msg("processing: batch aborted")
			return fmt.Errorf("%s %q: %w", op, upload.Filename, err)
		}
		p.logger.Debug().
			Str("operation", op).
			Str("file", upload.Filename).
			Str("output", out.String()).
			Msg("processing: file stored")
	}
	return nil
}

func (p *Processor) processOne(ctx context.Context, upload Upload, out domain.Subdirectory, call vendorCall) error {
	encoded, err := p.store.StoreAndEncode(ctx, domain.SubdirOriginals, upload.Filename, upload.Data)
	if err != nil {
		return err
	}
	resp, err := call(ctx, encoded)
	if err != nil {
		return err
	}
	return p.store.DecodeAndStore(ctx, resp.Data, out, upload.Filename)
}
