package graph

import (
	"errors"
	"fmt"
)

// RequestKey identifies one graph dataset. It doubles as the cache key and
// as the discriminator for log lines.
type RequestKey struct {
	CursusID int
	CampusID int
	Login    string
}

// NewRequestKey builds a key and validates it.
func NewRequestKey(cursusID, campusID int, login string) (RequestKey, error) {
	key := RequestKey{CursusID: cursusID, CampusID: campusID, Login: login}
	if err := key.Validate(); err != nil {
		return RequestKey{}, err
	}
	return key, nil
}

// Validate rejects partially specified keys.
func (k RequestKey) Validate() error {
	var errs []error
	if k.CursusID <= 0 {
		errs = append(errs, fmt.Errorf("cursus id must be positive, got %d", k.CursusID))
	}
	if k.CampusID <= 0 {
		errs = append(errs, fmt.Errorf("campus id must be positive, got %d", k.CampusID))
	}
	if k.Login == "" {
		errs = append(errs, errors.New("login must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid request key: %w", errors.Join(errs...))
	}
	return nil
}

// CacheKey returns the storage key under which the dataset is cached.
func (k RequestKey) CacheKey() string {
	return fmt.Sprintf("graph-%d-%d-%s", k.CursusID, k.CampusID, k.Login)
}

// String implements fmt.Stringer.
func (k RequestKey) String() string {
	return fmt.Sprintf("cursus=%d campus=%d login=%s", k.CursusID, k.CampusID, k.Login)
}
