package graph

// Option is an id/name pair offered to the surface's cursus and campus
// selectors.
type Option struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// extraSuffix marks catalog entries the host page did not offer itself.
const extraSuffix = " (Improved Intra)"

// DefaultCursuses is the catalog of cursuses known to carry a project graph.
func DefaultCursuses() []Option {
	return []Option{
		{ID: 1, Name: "42"},
		{ID: 3, Name: "Discovery Piscine"},
		{ID: 4, Name: "Piscine C"},
		{ID: 6, Name: "Piscine C décloisonnée"},
		{ID: 7, Name: "Piscine C à distance"},
		{ID: 9, Name: "C Piscine"},
		{ID: 10, Name: "Formation Pole Emploi"},
		{ID: 11, Name: "Bootcamp"},
		{ID: 12, Name: "Créa"},
		{ID: 13, Name: "42 Labs"},
		{ID: 21, Name: "42cursus"},
		{ID: 53, Name: "42.zip"},
	}
}

// MergeCursuses appends every catalog entry whose id is missing from
// available. Appended names are suffixed so the surface can tell them apart.
// The available slice is not modified.
func MergeCursuses(available, catalog []Option) []Option {
	seen := make(map[int]struct{}, len(available))
	out := make([]Option, 0, len(available)+len(catalog))
	for _, o := range available {
		seen[o.ID] = struct{}{}
		out = append(out, o)
	}
	for _, o := range catalog {
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		out = append(out, Option{ID: o.ID, Name: o.Name + extraSuffix})
	}
	return out
}
