package artifact

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/Kurai777/Alda-oficial/internal/common"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDescribe(t *testing.T) {
	info, err := Describe(pngBytes(t, 50, 30))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if info.MIME != "image/png" || info.Ext != "png" {
		t.Errorf("type = %s/%s", info.MIME, info.Ext)
	}
	if info.Width != 50 || info.Height != 30 {
		t.Errorf("size = %dx%d, want 50x30", info.Width, info.Height)
	}
}

func TestDescribeJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 40)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	info, err := Describe(buf.Bytes())
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if info.MIME != "image/jpeg" || info.Ext != "jpg" {
		t.Errorf("type = %s/%s, want image/jpeg/jpg", info.MIME, info.Ext)
	}
}

func TestDescribeGarbage(t *testing.T) {
	if _, err := Describe([]byte("not an image")); err == nil {
		t.Error("expected decode error")
	}
}

func TestValidateFloor(t *testing.T) {
	p := DefaultPolicy()
	if _, err := p.Validate(pngBytes(t, 10, 10)); !errors.Is(err, common.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if _, err := p.Validate(nil); !errors.Is(err, common.ErrValidation) {
		t.Errorf("empty payload err = %v, want ErrValidation", err)
	}
	if _, err := p.Validate(pngBytes(t, 24, 24)); err != nil {
		t.Errorf("floor is inclusive, got %v", err)
	}
}

func TestValidateMaxBytes(t *testing.T) {
	p := Policy{MinWidth: 1, MinHeight: 1, MaxBytes: 8}
	if _, err := p.Validate(pngBytes(t, 30, 30)); !errors.Is(err, common.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestBuild(t *testing.T) {
	art, err := Build(pngBytes(t, 64, 48), DefaultPolicy())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if art.MIME != "image/png" || art.Ext != "png" || len(art.Data) == 0 {
		t.Errorf("artifact = %+v", art)
	}
	if art.CellAnchored() {
		t.Error("fresh artifact should carry no anchor")
	}
}
