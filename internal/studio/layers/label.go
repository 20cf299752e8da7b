// Package layers derives the renderable layer tree for the Studio layers panel
// from a page document.
package layers

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

// DefaultIcon is returned for component types unknown to both the registry and
// the built-in table.
const DefaultIcon = "box"

// maxLabelLength is the display budget of a layer row before truncation.
const maxLabelLength = 30

// Descriptor is the registry entry for a custom component type.
type Descriptor struct {
	Icon string `json:"icon"`
}

// Registry resolves installed marketplace component types. Lookup must be
// read-only and cheap; it is consulted on every tree rebuild.
type Registry interface {
	Lookup(componentType string) (Descriptor, bool)
}

// StaticRegistry is a fixed in-memory Registry, keyed by component type.
type StaticRegistry map[string]Descriptor

func (r StaticRegistry) Lookup(componentType string) (Descriptor, bool) {
	d, ok := r[componentType]
	return d, ok
}

// labelPropKeys is the priority order scanned for a human-readable label.
var labelPropKeys = []string{"title", "text", "label", "heading", "name", "alt", "content", "placeholder"}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// builtinIcons maps lower-cased component types to icon names.
var builtinIcons = map[string]string{
	"body":        "file",
	"container":   "layout",
	"section":     "rows",
	"2col":        "columns",
	"3col":        "columns",
	"text":        "type",
	"heading":     "heading",
	"paragraph":   "pilcrow",
	"hero":        "sparkles",
	"image":       "image",
	"video":       "video",
	"link":        "link",
	"button":      "mouse-pointer",
	"form":        "clipboard",
	"contactform": "clipboard",
	"paymentform": "credit-card",
	"input":       "text-cursor",
	"checkout":    "credit-card",
	"divider":     "minus",
	"spacer":      "move-vertical",
	"embed":       "code",
	"navigation":  "menu",
	"footer":      "panel-bottom",
}

// ComponentLabel derives the display label for a component. It scans the
// priority prop keys for the first non-empty string (after trimming and
// stripping HTML tags), truncated to 30 characters. Responsive values use
// their mobile variant. When no prop yields text, the component type is
// converted from camel case to space-separated words.
func ComponentLabel(c *domain.Component) string {
	if c == nil {
		return ""
	}

	for _, key := range labelPropKeys {
		v, ok := c.Props[key]
		if !ok {
			continue
		}
		if responsive, ok := v.(map[string]any); ok {
			mobile, ok := responsive["mobile"]
			if !ok {
				continue
			}
			v = mobile
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
		if s == "" {
			continue
		}
		return truncate(s, maxLabelLength)
	}

	return spaceCamelCase(c.Type)
}

// ComponentIcon resolves the icon name for a component type. The registry is
// consulted first so installed modules can supply their own icon; unknown
// types fall back to DefaultIcon. Never fails.
func ComponentIcon(componentType string, registry Registry) string {
	if registry != nil {
		if d, ok := registry.Lookup(componentType); ok && d.Icon != "" {
			return d.Icon
		}
	}
	if icon, ok := builtinIcons[strings.ToLower(componentType)]; ok {
		return icon
	}
	return DefaultIcon
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// spaceCamelCase inserts a space before each interior capital letter, turning
// "contactForm" into "contact Form" and "TwoColumn" into "Two Column".
func spaceCamelCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
