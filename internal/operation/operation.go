// Package operation defines the closed set of generation request categories.
// The category selects both the rate-limit profile and the upstream system template.
package operation

// Type is a generation request category.
type Type string

const (
	TitleOptimization   Type = "title-optimization"
	OutlineGeneration   Type = "outline-generation"
	ContentGeneration   Type = "content-generation"
	TextImprovement     Type = "text-improvement"
	ContentRegeneration Type = "content-regeneration"
	General             Type = "general"
)

// All returns every known operation type in a stable order.
func All() []Type {
	return []Type{
		TitleOptimization,
		OutlineGeneration,
		ContentGeneration,
		TextImprovement,
		ContentRegeneration,
		General,
	}
}

// Parse resolves a raw tag. Empty and unknown tags resolve to General;
// the boolean reports whether the tag was recognized.
func Parse(s string) (Type, bool) {
	switch t := Type(s); t {
	case TitleOptimization, OutlineGeneration, ContentGeneration,
		TextImprovement, ContentRegeneration, General:
		return t, true
	default:
		return General, false
	}
}

func (t Type) String() string {
	return string(t)
}
