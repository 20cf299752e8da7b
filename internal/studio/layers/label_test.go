package layers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

func component(typ string, props map[string]any) *domain.Component {
	return &domain.Component{ID: "c1", Type: typ, Props: props}
}

func TestComponentLabel(t *testing.T) {
	t.Run("uses the first non-empty priority key", func(t *testing.T) {
		c := component("Hero", map[string]any{
			"text":  "secondary",
			"title": "Welcome",
		})
		assert.Equal(t, "Welcome", ComponentLabel(c))
	})

	t.Run("skips empty and whitespace values", func(t *testing.T) {
		c := component("Hero", map[string]any{
			"title": "   ",
			"text":  "Click me",
		})
		assert.Equal(t, "Click me", ComponentLabel(c))
	})

	t.Run("strips HTML tags", func(t *testing.T) {
		c := component("Text", map[string]any{"content": "<p>Hello <b>world</b></p>"})
		assert.Equal(t, "Hello world", ComponentLabel(c))
	})

	t.Run("truncates long labels with ellipsis", func(t *testing.T) {
		long := strings.Repeat("a", 40)
		c := component("Text", map[string]any{"text": long})

		label := ComponentLabel(c)
		assert.Equal(t, strings.Repeat("a", 30)+"...", label)
	})

	t.Run("exactly thirty characters is not truncated", func(t *testing.T) {
		exact := strings.Repeat("a", 30)
		c := component("Text", map[string]any{"text": exact})
		assert.Equal(t, exact, ComponentLabel(c))
	})

	t.Run("responsive values use the mobile variant", func(t *testing.T) {
		c := component("Text", map[string]any{
			"text": map[string]any{"mobile": "Mobile copy", "desktop": "Desktop copy"},
		})
		assert.Equal(t, "Mobile copy", ComponentLabel(c))
	})

	t.Run("responsive value without mobile falls through", func(t *testing.T) {
		c := component("Text", map[string]any{
			"text":  map[string]any{"desktop": "Desktop copy"},
			"label": "Fallback",
		})
		assert.Equal(t, "Fallback", ComponentLabel(c))
	})

	t.Run("non-string candidates fall through", func(t *testing.T) {
		c := component("Spacer", map[string]any{"name": 42.0, "label": "Gap"})
		assert.Equal(t, "Gap", ComponentLabel(c))
	})

	t.Run("falls back to spaced component type", func(t *testing.T) {
		assert.Equal(t, "contact Form", ComponentLabel(component("contactForm", nil)))
		assert.Equal(t, "Two Column", ComponentLabel(component("TwoColumn", nil)))
		assert.Equal(t, "Hero", ComponentLabel(component("Hero", nil)))
	})

	t.Run("is deterministic", func(t *testing.T) {
		c := component("Hero", map[string]any{"title": "Welcome"})
		first := ComponentLabel(c)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, ComponentLabel(c))
		}
	})
}

func TestComponentIcon(t *testing.T) {
	t.Run("registry icon wins", func(t *testing.T) {
		registry := StaticRegistry{"countdown": {Icon: "timer"}}
		assert.Equal(t, "timer", ComponentIcon("countdown", registry))
	})

	t.Run("registry without icon falls back to the table", func(t *testing.T) {
		registry := StaticRegistry{"video": {}}
		assert.Equal(t, "video", ComponentIcon("video", registry))
	})

	t.Run("table lookup is case-insensitive", func(t *testing.T) {
		assert.Equal(t, "mouse-pointer", ComponentIcon("Button", nil))
		assert.Equal(t, "sparkles", ComponentIcon("Hero", nil))
	})

	t.Run("unknown type yields the default icon", func(t *testing.T) {
		assert.Equal(t, DefaultIcon, ComponentIcon("mysteryWidget", nil))
	})
}
