package content

import (
	"fmt"

	"github.com/osteele/liquid"
)

var engine = liquid.NewEngine()

// RenderSlots renders every free-text slot template against the page's
// facts and identity. Rendering happens before guard checks so similarity
// and length are measured on what a visitor would actually read.
func RenderSlots(d PageDefinition) (map[string]string, error) {
	bindings := map[string]interface{}{
		"slug":     d.Slug,
		"audience": d.AudienceKey,
		"entities": d.Entities,
		"facts":    d.Facts,
	}

	out := make(map[string]string, len(d.Slots))
	for slot, tmpl := range d.Slots {
		rendered, err := engine.ParseAndRenderString(tmpl, bindings)
		if err != nil {
			return nil, fmt.Errorf("page %q slot %q: %w", d.Slug, slot, err)
		}
		out[slot] = rendered
	}
	return out, nil
}
