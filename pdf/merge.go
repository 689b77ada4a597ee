package pdf

import (
	"context"
	"fmt"
)

// Item is one input of a batch merge
type Item struct {
	Source any `json:"source" yaml:"source"`
	Pages  any `json:"pages,omitempty" yaml:"pages,omitempty"`
}

// MergeOptions controls a batch merge
type MergeOptions struct {
	Metadata Metadata
	Optimize bool
}

// Merge adds items in order to a new merger and returns the serialized result
func Merge(ctx context.Context, items []Item, opts MergeOptions, mergerOpts ...Option) ([]byte, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}

	merger := New(mergerOpts...)
	for i, item := range items {
		if err := merger.Add(ctx, item.Source, item.Pages); err != nil {
			return nil, fmt.Errorf("input %d: %w", i+1, err)
		}
	}

	if err := merger.SetMetadata(opts.Metadata); err != nil {
		return nil, err
	}

	data, err := merger.SaveAsBuffer()
	if err != nil {
		return nil, err
	}
	if opts.Optimize {
		return Optimize(data)
	}
	return data, nil
}
