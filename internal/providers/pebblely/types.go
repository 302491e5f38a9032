package pebblely

// ImageRequest is the payload for operations that take a single image.
type ImageRequest struct {
	Image string `json:"image"`
}

// UpscaleRequest asks the vendor to upscale Image to Size pixels on its
// longest side.
type UpscaleRequest struct {
	Image string `json:"image"`
	Size  int    `json:"size"`
}

// Background carries the optional scene fields shared by background
// generation, inpainting and outpainting. A nil field is left out of the
// payload entirely.
type Background struct {
	Theme       *string `json:"theme,omitempty"`
	Description *string `json:"description,omitempty"`
	StyleColor  *string `json:"style_color,omitempty"`
	StyleImage  *string `json:"style_image,omitempty"`
	Negative    *string `json:"negative,omitempty"`
}

// CreateBackgroundRequest is the payload for /create-background/v2.
type CreateBackgroundRequest struct {
	Images []string `json:"images"`
	Background
	Height *int `json:"height,omitempty"`
	Width  *int `json:"width,omitempty"`
}

// InpaintRequest is the payload for /inpaint/v1.
type InpaintRequest struct {
	Image string `json:"image"`
	Mask  string `json:"mask"`
	Background
}

// Transform positions an image on the outpaint canvas.
type Transform struct {
	ScaleX *float64 `json:"scale_x,omitempty"`
	ScaleY *float64 `json:"scale_y,omitempty"`
	X      *int     `json:"x,omitempty"`
	Y      *int     `json:"y,omitempty"`
	Angle  *float64 `json:"angle,omitempty"`
}

// OutpaintRequest is the payload for /outpaint/v1.
type OutpaintRequest struct {
	Images     []string    `json:"images"`
	Transforms []Transform `json:"transforms,omitempty"`
	Background
	CanvasWidth  *int `json:"canvas_width,omitempty"`
	CanvasHeight *int `json:"canvas_height,omitempty"`
}

// Response is the vendor's reply. Data holds a base64 image for processing
// calls; Credits is only populated by the credits query.
type Response struct {
	Data    string `json:"data,omitempty"`
	Credits int    `json:"credits,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (e errorResponse) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	default:
		return e.Error
	}
}
