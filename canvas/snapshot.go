package canvas

import (
	"context"

	"github.com/teranos/recipeviz/render"
	"github.com/teranos/recipeviz/search"
)

// Capture runs req to completion with every node revealed at once and
// returns the final frame centred on the content. Fetch and validation
// errors are returned; asset failures are drawn as placeholders.
func Capture(ctx context.Context, cfg Config, deps Deps, req search.Request) (render.Scene, error) {
	cfg.InstantReveal = true
	cfg.FollowFirst = false
	cfg.RecenterDuration = 0

	e := New(cfg, deps)
	defer e.Close()

	if _, err := e.Run(ctx, req); err != nil {
		return render.Scene{}, err
	}
	e.CenterContent()
	return e.Frame(), nil
}
