package app

import (
	"context"
	"os"

	"github.com/specialistvlad/galaxygraph/internal/config"
)

// staticLoader hands out a prepared model.
type staticLoader struct {
	model *config.Model
}

func (l staticLoader) Load(context.Context, ...string) (*config.Model, error) {
	return l.model, nil
}

func writeString(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
