package processing

import (
	"context"

	"pebblely/internal/domain"
	"pebblely/internal/providers/pebblely"
)

// BackgroundParams are the raw scene settings submitted with a create
// background or inpaint batch. Nil means the field was not supplied.
type BackgroundParams struct {
	Theme       *string
	Description *string
	StyleColor  *string
	Negative    *string
	StyleImage  *Upload
}

// BuildCreateBackgroundRequest assembles the shared request for a create
// background batch. Images are filled in per file by the processor.
func (p *Processor) BuildCreateBackgroundRequest(ctx context.Context, params BackgroundParams, height, width *int) (pebblely.CreateBackgroundRequest, error) {
	var req pebblely.CreateBackgroundRequest
	if height != nil {
		h := *height
		req.Height = &h
	}
	if width != nil {
		w := *width
		req.Width = &w
	}
	bg, err := p.buildBackground(ctx, params)
	if err != nil {
		return pebblely.CreateBackgroundRequest{}, err
	}
	req.Background = bg
	return req, nil
}

// BuildInpaintRequest stores the mask with the originals and assembles the
// shared request for an inpaint batch.
func (p *Processor) BuildInpaintRequest(ctx context.Context, mask Upload, params BackgroundParams) (pebblely.InpaintRequest, error) {
	encodedMask, err := p.store.StoreAndEncode(ctx, domain.SubdirOriginals, mask.Filename, mask.Data)
	if err != nil {
		return pebblely.InpaintRequest{}, err
	}
	bg, err := p.buildBackground(ctx, params)
	if err != nil {
		return pebblely.InpaintRequest{}, err
	}
	return pebblely.InpaintRequest{Mask: encodedMask, Background: bg}, nil
}

// buildBackground always carries description and negative over. Theme and
// style color are only set when non-empty, and a style image only when it has
// data. Empty strings never reach the wire.
func (p *Processor) buildBackground(ctx context.Context, params BackgroundParams) (pebblely.Background, error) {
	bg := pebblely.Background{
		Description: omitBlank(params.Description),
		Negative:    omitBlank(params.Negative),
	}
	if nonEmpty(params.Theme) {
		bg.Theme = params.Theme
	}
	if nonEmpty(params.StyleColor) {
		bg.StyleColor = params.StyleColor
	}
	if params.StyleImage != nil && len(params.StyleImage.Data) > 0 {
		encoded, err := p.store.StoreAndEncode(ctx, domain.SubdirOriginals, params.StyleImage.Filename, params.StyleImage.Data)
		if err != nil {
			return pebblely.Background{}, err
		}
		bg.StyleImage = &encoded
	}
	return bg, nil
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

// omitBlank maps an empty value to nil so omitempty drops the key.
func omitBlank(s *string) *string {
	if !nonEmpty(s) {
		return nil
	}
	return s
}
