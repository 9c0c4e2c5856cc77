package graph

// Kind is the normalized project classification understood by the surface.
type Kind string

const (
	KindProject     Kind = "project"
	KindBigProject  Kind = "big_project"
	KindModule      Kind = "module"
	KindFinalModule Kind = "final_module"
	KindExam        Kind = "exam"
)

// innerKinds maps the patch source's vocabulary onto normalized kinds.
var innerKinds = map[string]Kind{
	"inner_solo":      KindProject,
	"inner_linked":    KindProject,
	"inner_big":       KindBigProject,
	"inner_satellite": KindModule,
	"inner_planet":    KindFinalModule,
	"inner_exam":      KindExam,
}

// KindFromInner translates a patch kind. The boolean is false for kinds
// outside the vocabulary, which callers ignore.
func KindFromInner(inner string) (Kind, bool) {
	k, ok := innerKinds[inner]
	return k, ok
}
