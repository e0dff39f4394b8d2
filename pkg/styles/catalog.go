// Package styles holds the fixed visual style catalog and the prompt text
// each style resolves to. All functions are pure; the catalog never changes
// at runtime.
package styles

// DefaultID is the style substituted when a prompt lookup sees an id outside
// the catalog. Admission validates style ids before a job is created, so the
// fallback only matters for callers that skip validation.
const DefaultID = "cyberpunk"

var prompts = map[string]string{
	"cyberpunk": "Transform into a cyberpunk character in a neon-lit futuristic city. " +
		"High-tech augmentations, holographic displays, neon lighting, dystopian aesthetic, " +
		"cinematic lighting, highly detailed, 8k quality",
	"medieval": "Transform into a medieval noble or scholar in an ancient castle. " +
		"Medieval clothing, stone castle interior, candlelight, Gothic architecture, " +
		"parchment scrolls, historical accuracy, oil painting style",
	"anime": "Transform into an anime character with expressive features. " +
		"Studio Ghibli style, soft cel shading, vibrant colors, clean linework, " +
		"beautiful detailed eyes, soft background",
	"vintage": "Transform into a vintage 1920s portrait. " +
		"Art deco style, sepia tones, elegant vintage clothing, soft focus, " +
		"classic studio photography, timeless elegance",
	"fantasy": "Transform into a fantasy character in a magical realm. " +
		"Ethereal lighting, magical elements, enchanted forest, flowing robes, " +
		"fantasy armor, dramatic lighting",
}

var order = []string{"cyberpunk", "medieval", "anime", "vintage", "fantasy"}

// Valid reports whether id is a member of the catalog.
func Valid(id string) bool {
	_, ok := prompts[id]
	return ok
}

// Prompt returns the generation prompt for id, falling back to the default
// style for unknown ids.
func Prompt(id string) string {
	if p, ok := prompts[id]; ok {
		return p
	}
	return prompts[DefaultID]
}

// IDs returns the catalog style ids in display order.
func IDs() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}
