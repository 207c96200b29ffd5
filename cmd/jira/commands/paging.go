package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/spf13/cobra"
)

// pagingFlags are shared by every list command.
type pagingFlags struct {
	all     bool
	perPage int
	startAt int
}

func (f *pagingFlags) register(cmd *cobra.Command, defaultPerPage int) {
	cmd.Flags().BoolVar(&f.all, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&f.perPage, "per-page", defaultPerPage, "results per page")
	cmd.Flags().IntVar(&f.startAt, "start-at", 0, "index of the first result (ignored with --all)")
}

// listing is the outcome of a list command.
type listing[T any] struct {
	items       []T
	declared    int
	hasDeclared bool
}

// collect fetches one page, or every page through a walker when --all is set.
// A nil newWalker walks page directly.
func collect[T any](ctx context.Context, paging *pagingFlags, query string, fields []string, page jira.PageFunc[T], newWalker func(perPage int) *jira.Walker[T]) (*listing[T], error) {
	if !paging.all {
		result, err := page(ctx, query, fields, paging.startAt, paging.perPage)
		if err != nil {
			return nil, err
		}

		declared, ok := result.DeclaredTotal()

		return &listing[T]{items: result.Entities(), declared: declared, hasDeclared: ok}, nil
	}

	var walker *jira.Walker[T]
	if newWalker != nil {
		walker = newWalker(paging.perPage)
	} else {
		walker = jira.NewWalker(page, paging.perPage)
	}

	walker.Push(query, fields...)

	items, err := walker.All(ctx)
	if err != nil {
		return nil, err
	}

	if walker.Err() != nil {
		return nil, fmt.Errorf("listing stopped after %d records: %w", len(items), walker.Err())
	}

	return &listing[T]{items: items}, nil
}
