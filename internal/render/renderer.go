package render

import "context"

type Renderer interface {
	RenderHome(ctx context.Context, page HomePage) ([]byte, error)
	RenderFullscreen(ctx context.Context, page FullscreenPage) ([]byte, error)
	RenderOCR(ctx context.Context, page OCRPage) ([]byte, error)
	RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error)
}
