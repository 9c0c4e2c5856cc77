package cachestore

// anonymousViewer stands in for a viewer that could not be identified, so
// that it never matches a real login.
const anonymousViewer = "_"

// SelectScope picks the persistent scope when the viewer requests their own
// dataset and the ephemeral scope otherwise.
func SelectScope(viewer, login string) Scope {
	if viewer == "" {
		viewer = anonymousViewer
	}
	if viewer == login {
		return ScopePersistent
	}
	return ScopeEphemeral
}

// Selector owns one Store per scope.
type Selector struct {
	persistent *Store
	ephemeral  *Store
}

// NewSelector builds a selector over the two backends.
func NewSelector(persistent, ephemeral Backend) *Selector {
	return &Selector{
		persistent: NewStore(ScopePersistent, persistent),
		ephemeral:  NewStore(ScopeEphemeral, ephemeral),
	}
}

// For returns the store for the scope chosen by SelectScope.
func (s *Selector) For(viewer, login string) *Store {
	if SelectScope(viewer, login) == ScopePersistent {
		return s.persistent
	}
	return s.ephemeral
}
