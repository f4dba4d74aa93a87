package gguf

import (
	"golang.org/x/sync/errgroup"
)

// LoadAll parses a batch of independent files concurrently, one goroutine
// per path, since independent containers share no mutable state beyond
// the format registry (which is read-only after its one-shot init). If
// any file fails to load, LoadAll returns the first error encountered and
// any containers already produced are closed before returning.
func LoadAll(paths []string, opts ...Option) ([]*Container, error) {
	containers := make([]*Container, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			c, err := Load(path, opts...)
			if err != nil {
				return err
			}
			containers[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, c := range containers {
			if c != nil {
				c.Close()
			}
		}
		return nil, err
	}
	return containers, nil
}
