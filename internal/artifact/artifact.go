// Package artifact validates extracted image payloads before they enter
// association. Catalog sources embed spacer and border images alongside the
// real product shots; the dimension floor keeps those out of the output.
package artifact

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// Info describes a decoded image payload.
type Info struct {
	MIME   string
	Ext    string
	Width  int
	Height int
}

// Policy bounds which payloads are worth keeping.
type Policy struct {
	MinWidth  int
	MinHeight int
	MaxBytes  int
}

func DefaultPolicy() Policy {
	return Policy{MinWidth: 24, MinHeight: 24, MaxBytes: 20 << 20}
}

// Describe decodes only the image header and reports format and size.
func Describe(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, common.WrapError(err, "decode image header")
	}
	return Info{MIME: "image/" + format, Ext: extFor(format), Width: cfg.Width, Height: cfg.Height}, nil
}

// Validate applies the policy on top of Describe.
func (p Policy) Validate(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, fmt.Errorf("%w: empty image payload", common.ErrValidation)
	}
	if p.MaxBytes > 0 && len(data) > p.MaxBytes {
		return Info{}, fmt.Errorf("%w: image payload is %d bytes, cap is %d", common.ErrValidation, len(data), p.MaxBytes)
	}
	info, err := Describe(data)
	if err != nil {
		return Info{}, err
	}
	if info.Width < p.MinWidth || info.Height < p.MinHeight {
		return Info{}, fmt.Errorf("%w: image %dx%d is below the %dx%d floor", common.ErrValidation, info.Width, info.Height, p.MinWidth, p.MinHeight)
	}
	return info, nil
}

// Build validates data and wraps it as an artifact ready for anchoring.
// The caller sets the cell or page anchor.
func Build(data []byte, p Policy) (*entity.Artifact, error) {
	info, err := p.Validate(data)
	if err != nil {
		return nil, err
	}
	return &entity.Artifact{Data: data, MIME: info.MIME, Ext: info.Ext}, nil
}

func extFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
