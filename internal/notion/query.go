package notion

import (
	"context"

	"github.com/jomei/notionapi"
)

// FallbackPageSize bounds the unsorted retry when no explicit page size
// was requested.
const FallbackPageSize = 100

// QueryOptions configures a single-page listing query.
type QueryOptions struct {
	// SortProperty requests a server-side sort; leave empty for unsorted.
	SortProperty string
	Direction    notionapi.SortOrder
	PageSize     int
}

// QueryResult tags the records with the path that produced them, so
// callers can tell a server-sorted page from an unsorted fallback and
// re-sort client-side when needed.
type QueryResult struct {
	Pages  []notionapi.Page
	Sorted bool
}

// QueryWithSort runs a sorted listing query, retrying exactly once without
// the sort when the service rejects it; user-renamed properties routinely
// break sort requests. Only the first response page is read; callers
// needing exhaustive listings must follow cursors themselves.
func QueryWithSort(ctx context.Context, api API, databaseID string, opts QueryOptions) (QueryResult, error) {
	req := &notionapi.DatabaseQueryRequest{PageSize: opts.PageSize}
	if opts.SortProperty != "" {
		req.Sorts = []notionapi.SortObject{{
			Property:  opts.SortProperty,
			Direction: opts.Direction,
		}}
	}

	resp, err := api.QueryDatabase(ctx, databaseID, req)
	if err == nil {
		return QueryResult{Pages: resp.Results, Sorted: opts.SortProperty != ""}, nil
	}
	if opts.SortProperty == "" {
		return QueryResult{}, err
	}

	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = FallbackPageSize
	}
	resp, err = api.QueryDatabase(ctx, databaseID, &notionapi.DatabaseQueryRequest{PageSize: pageSize})
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{Pages: resp.Results, Sorted: false}, nil
}
