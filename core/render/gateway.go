// Package render provides the rendering gateway and the local engines
// that turn a normalized report definition into artifact bytes.
package render

import (
	"context"
	"fmt"

	"github.com/gaurav-prasanna/reportgate/core"
)

// Ensure Gateway implements the interface.
var _ core.Gateway = (*Gateway)(nil)

// Gateway dispatches a render to the renderer registered for the kind.
type Gateway struct {
	renderers map[core.OutputKind]core.Renderer
}

// NewGateway creates a Gateway over the given renderers. A later renderer
// for the same kind replaces an earlier one.
func NewGateway(renderers ...core.Renderer) *Gateway {
	g := &Gateway{renderers: make(map[core.OutputKind]core.Renderer, len(renderers))}
	for _, r := range renderers {
		g.renderers[r.Kind()] = r
	}
	return g
}

// NewLocalGateway creates a Gateway backed by the built-in pdf and xlsx engines.
func NewLocalGateway() *Gateway {
	return NewGateway(NewPDFRenderer(), NewXLSXRenderer())
}

// Supports reports whether kind can be rendered.
func (g *Gateway) Supports(kind core.OutputKind) bool {
	_, ok := g.renderers[kind]
	return ok
}

// Render produces the artifact of the requested kind. Validation problems
// are returned as *ValidationError.
func (g *Gateway) Render(ctx context.Context, def core.ReportDefinition, data core.ReportData, kind core.OutputKind) ([]byte, error) {
	r, ok := g.renderers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Render(ctx, def, data)
}
