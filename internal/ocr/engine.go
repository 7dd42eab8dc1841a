// Package ocr turns photographed prompt cards into text.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"
	"teatopics/internal/imaging"
)

// Engine recognizes text in img. progress, when non-nil, receives values in
// [0,1].
type Engine interface {
	Recognize(ctx context.Context, img image.Image, lang string, progress func(float64)) (string, error)
}

var ErrEngineMissing = errors.New("ocr: engine binary not found")

// Tesseract runs the tesseract command line tool, feeding the image as PNG
// on stdin.
type Tesseract struct {
	Binary      string
	PageSegMode int
}

func NewTesseract(binary string, psm int) *Tesseract {
	if strings.TrimSpace(binary) == "" {
		binary = "tesseract"
	}
	return &Tesseract{Binary: binary, PageSegMode: psm}
}

func (t *Tesseract) Available() error {
	if _, err := exec.LookPath(t.Binary); err != nil {
		return fmt.Errorf("%w: %s", ErrEngineMissing, t.Binary)
	}
	return nil
}

func (t *Tesseract) Recognize(ctx context.Context, img image.Image, lang string, progress func(float64)) (string, error) {
	if err := t.Available(); err != nil {
		return "", err
	}
	report(progress, 0)

	var in bytes.Buffer
	if err := imaging.EncodePNG(&in, img); err != nil {
		return "", fmt.Errorf("ocr: encode: %w", err)
	}

	args := []string{"stdin", "stdout"}
	if lang = strings.TrimSpace(lang); lang != "" {
		args = append(args, "-l", lang)
	}
	if t.PageSegMode > 0 {
		args = append(args, "--psm", strconv.Itoa(t.PageSegMode))
	}
	args = append(args, "-c", "preserve_interword_spaces=1")

	cmd := exec.CommandContext(ctx, t.Binary, args...)
	cmd.Stdin = &in
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("ocr: tesseract: %w", err)
		}
		return "", fmt.Errorf("ocr: tesseract: %w: %s", err, msg)
	}
	report(progress, 1)
	return Cleanup(out.String()), nil
}

func report(progress func(float64), v float64) {
	if progress != nil {
		progress(v)
	}
}

var cleanup = strings.NewReplacer(
	"\u00a0", " ",
	"|", "I",
)

// Cleanup fixes the usual OCR slips on poster text: non-breaking spaces and
// a pipe read instead of a capital I.
func Cleanup(s string) string {
	return strings.TrimSpace(cleanup.Replace(s))
}
