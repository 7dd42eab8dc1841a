package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"teatopics/internal/imaging"
	"teatopics/internal/logging"

	"golang.org/x/sync/errgroup"
)

type Input struct {
	Name string
	Data []byte
}

type Stage string

const (
	StagePrepare   Stage = "prepare"
	StageRecognize Stage = "recognize"
	StageDone      Stage = "done"
)

type Progress struct {
	Index    int // 1-based
	Total    int
	Name     string
	Stage    Stage
	Fraction float64
}

// Pipeline preprocesses and recognizes a batch of images.
type Pipeline struct {
	Engine   Engine
	Lang     string
	Options  imaging.Options
	Workers  int
	Logger   *slog.Logger
	Progress func(Progress)

	mu sync.Mutex
}

// Run processes inputs with at most Workers images in flight and returns
// their text joined in input order, each block headed by "--- name ---".
// The first failing image cancels the rest of the batch.
func (p *Pipeline) Run(ctx context.Context, inputs []Input) (string, error) {
	logger := logging.Component(p.Logger, "ocr")
	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}

	texts := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.emit(Progress{Index: i + 1, Total: len(inputs), Name: in.Name, Stage: StagePrepare})
			img, err := imaging.Decode(bytes.NewReader(in.Data))
			if err != nil {
				return fmt.Errorf("%s: %w", in.Name, err)
			}
			prepared := imaging.Preprocess(img, p.Options)

			text, err := p.Engine.Recognize(gctx, prepared, p.Lang, func(f float64) {
				p.emit(Progress{Index: i + 1, Total: len(inputs), Name: in.Name, Stage: StageRecognize, Fraction: f})
			})
			if err != nil {
				return fmt.Errorf("%s: %w", in.Name, err)
			}
			texts[i] = Cleanup(text)
			p.emit(Progress{Index: i + 1, Total: len(inputs), Name: in.Name, Stage: StageDone, Fraction: 1})
			logger.Debug("image recognized", slog.String("file", in.Name), slog.Int("chars", len(texts[i])))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("ocr batch aborted", logging.Error(err))
		return "", err
	}

	var b strings.Builder
	for i, in := range inputs {
		fmt.Fprintf(&b, "\n\n--- %s ---\n%s", in.Name, texts[i])
	}
	return strings.TrimSpace(b.String()), nil
}

func (p *Pipeline) emit(pr Progress) {
	if p.Progress == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Progress(pr)
}
