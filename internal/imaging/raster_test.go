package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"testing"
)

func TestWorkingCopy(t *testing.T) {
	img := newSolid(20, 20, color.White)
	fillRect(img, image.Rect(10, 10, 20, 20), red)
	sub := img.SubImage(image.Rect(5, 5, 15, 15))

	cp := WorkingCopy(sub)
	if cp.Rect != image.Rect(0, 0, 10, 10) {
		t.Fatalf("bounds: got %v, want origin-anchored 10x10", cp.Rect)
	}
	if cp.RGBAAt(0, 0) != White || cp.RGBAAt(9, 9) != red {
		t.Errorf("pixels shifted incorrectly: %+v %+v", cp.RGBAAt(0, 0), cp.RGBAAt(9, 9))
	}

	cp.SetRGBA(9, 9, black)
	if img.RGBAAt(14, 14) != red {
		t.Error("WorkingCopy shares pixels with its source")
	}
}

func TestEncodeDecodePNG(t *testing.T) {
	img := newSolid(6, 4, color.RGBA{12, 34, 56, 255})
	fillRect(img, image.Rect(0, 0, 3, 4), red)

	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	decoded, err := DecodePNG(data)
	if err != nil {
		t.Fatalf("DecodePNG failed: %v", err)
	}

	got := WorkingCopy(decoded)
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			if got.RGBAAt(x, y) != img.RGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d): got %+v, want %+v", x, y, got.RGBAAt(x, y), img.RGBAAt(x, y))
			}
		}
	}
}

func TestEncodePNG_MaskKeepsAlpha(t *testing.T) {
	mask := newMask(8, 8, image.Rect(2, 2, 6, 6))

	data, err := EncodePNG(mask)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	decoded, err := DecodePNG(data)
	if err != nil {
		t.Fatalf("DecodePNG failed: %v", err)
	}

	alphaAt := func(x, y int) uint8 {
		return color.AlphaModel.Convert(decoded.At(x, y)).(color.Alpha).A
	}
	if alphaAt(3, 3) != 255 || alphaAt(0, 0) != 0 {
		t.Errorf("alpha round trip: inside=%d outside=%d", alphaAt(3, 3), alphaAt(0, 0))
	}
}

func TestDecodePNG_Invalid(t *testing.T) {
	if _, err := DecodePNG([]byte("garbage")); err == nil {
		t.Error("expected error for invalid data")
	}
}

func TestEncodeBase64(t *testing.T) {
	enc, err := EncodeBase64(newSolid(12, 7, color.White))
	if err != nil {
		t.Fatalf("EncodeBase64 failed: %v", err)
	}
	if enc.Width != 12 || enc.Height != 7 {
		t.Errorf("size: got %dx%d, want 12x7", enc.Width, enc.Height)
	}
	if enc.MimeType != "image/png" {
		t.Errorf("MimeType: got %s", enc.MimeType)
	}
	raw, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	if _, err := DecodePNG(raw); err != nil {
		t.Errorf("payload is not a decodable image: %v", err)
	}
}
