package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// OCRExtractor reads receipt images with Tesseract and feeds the recognized
// text through the rule-based parser. Text input passes straight through.
type OCRExtractor struct {
	parser   *Parser
	language string
}

func NewOCRExtractor(parser *Parser, language string) *OCRExtractor {
	if language == "" {
		language = "eng"
	}
	return &OCRExtractor{parser: parser, language: language}
}

var _ Extractor = (*OCRExtractor)(nil)

func (o *OCRExtractor) Extract(ctx context.Context, text string, img []byte) (*Candidate, string, error) {
	if len(img) == 0 {
		return o.parser.Extract(ctx, text, nil)
	}

	recognized, err := o.recognize(img)
	if err != nil {
		return nil, "", fmt.Errorf("read receipt image: %w", err)
	}
	combined := recognized
	if text != "" {
		combined = text + "\n" + recognized
	}
	candidate, reply, err := o.parser.Extract(ctx, combined, nil)
	if candidate == nil && err == nil {
		reply = "I couldn't read an amount off that receipt. You can type it instead."
	}
	return candidate, reply, err
}

func (o *OCRExtractor) recognize(img []byte) (string, error) {
	prepped, err := preprocess(img)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(o.language); err != nil {
		return "", fmt.Errorf("set OCR language: %w", err)
	}
	if err := client.SetImageFromBytes(prepped); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("run OCR: %w", err)
	}
	return text, nil
}

// preprocess boosts OCR accuracy on phone photos: grayscale, upscale small
// shots, bump contrast, then binarize with a global threshold.
func preprocess(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img := imaging.Grayscale(src)
	if img.Bounds().Dx() < 1000 {
		img = imaging.Resize(img, 1600, 0, imaging.Lanczos)
	}
	img = imaging.AdjustContrast(img, 20)
	bin := binarize(img, 160)

	var buf bytes.Buffer
	if err := png.Encode(&buf, bin); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			gray := uint8((r + g + bb) / 3 >> 8)
			v := uint8(255)
			if gray <= threshold {
				v = 0
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
