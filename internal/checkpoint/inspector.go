package checkpoint

import (
	"context"
	"fmt"
	"graph-diag/internal/storage"
	"io"
	"log/slog"
	"strings"
)

type Inspector struct {
	store storage.ObjectStore
	load  Loader
	out   io.Writer
}

func NewInspector(store storage.ObjectStore, load Loader, out io.Writer) *Inspector {
	return &Inspector{store: store, load: load, out: out}
}

// Run loads the checkpoint stored under key and prints its parameter names
// and shapes. Any failure is printed and reported as false.
func (i *Inspector) Run(ctx context.Context, key string) bool {
	if err := i.inspect(ctx, key); err != nil {
		slog.Debug("checkpoint inspection failed", "key", key, "error", err)
		fmt.Fprintf(i.out, "Error loading model: %v\n", err)
		return false
	}

	fmt.Fprintln(i.out, "\nModel loaded successfully!")
	return true
}

func (i *Inspector) inspect(ctx context.Context, key string) error {
	path, cleanup, err := i.store.Fetch(ctx, key)
	if err != nil {
		return err
	}
	defer cleanup()

	obj, err := i.load(path)
	if err != nil {
		return fmt.Errorf("failed to deserialize %s: %w", key, err)
	}

	ckpt, err := Decode(obj)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}

	fmt.Fprintln(i.out, "Model Analysis:")
	fmt.Fprintln(i.out, strings.Repeat("=", 40))

	switch c := ckpt.(type) {
	case *StateDict:
		fmt.Fprintln(i.out, "Model is a state dictionary")
		fmt.Fprintf(i.out, "Keys: [%s]\n", strings.Join(c.Keys(), ", "))
	case *ModelObject:
		fmt.Fprintln(i.out, "Model is a complete model object")
		fmt.Fprintf(i.out, "Model type: %s\n", c.TypeName)
	}

	params, err := ckpt.Parameters()
	if err != nil {
		return err
	}
	for _, p := range params {
		fmt.Fprintf(i.out, "%s: %s\n", p.Name, p.Shape)
	}
	return nil
}
