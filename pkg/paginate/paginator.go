package paginate

import (
	"context"
	"time"

	"github.com/Sternrassler/shopify-gql-client/pkg/client"
	"github.com/Sternrassler/shopify-gql-client/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultPageSize is the connection page size requested per round trip.
// 250 is the Admin API maximum for most connections.
const DefaultPageSize = 250

// Config holds paginator configuration.
type Config struct {
	// PageSize is the value injected as the "first" variable.
	PageSize int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: DefaultPageSize,
	}
}

// Pager is a single-pass pull iterator over the items of a cursor-based
// connection. Usage mirrors bufio.Scanner:
//
//	p := paginate.Pages(ctx, session, query, vars, []string{"data", "products"}, paginate.DefaultConfig())
//	for p.Next() {
//		item := p.Item()
//		...
//	}
//	if err := p.Err(); err != nil {
//		...
//	}
//
// Pages are fetched on demand inside Next; abandoning the pager early
// leaves no background work behind. Each Pages call returns a fresh,
// independent pager.
type Pager struct {
	ctx       context.Context
	session   *client.Session
	query     string
	variables map[string]any
	path      []string
	pageSize  int

	cursor   *string
	items    []map[string]any
	pos      int
	item     map[string]any
	done     bool
	err      error
	requests int
	yielded  int
	started  time.Time
	logger   zerolog.Logger
}

// Pages creates a pager over the connection located at connectionPath in
// the response, e.g. []string{"data", "products"}. The path is walked from
// the response root, so its first element is normally "data".
func Pages(ctx context.Context, session *client.Session, query string, variables map[string]any, connectionPath []string, cfg Config) *Pager {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Pager{
		ctx:       ctx,
		session:   session,
		query:     query,
		variables: variables,
		path:      connectionPath,
		pageSize:  cfg.PageSize,
		started:   time.Now(),
		logger:    logging.NewLogger("paginate"),
	}
}

// Next advances to the next item. It returns false at the end of the
// connection or on the first fatal error; Err distinguishes the two.
func (p *Pager) Next() bool {
	for p.pos >= len(p.items) {
		if p.err != nil {
			return false
		}
		if p.done {
			p.logger.Debug().
				Int("requests", p.requests).
				Int("items", p.yielded).
				Dur("duration", time.Since(p.started)).
				Msg("Pagination complete")
			return false
		}
		if !p.fetch() {
			return false
		}
	}
	p.item = p.items[p.pos]
	p.pos++
	p.yielded++
	return true
}

// Item returns the item produced by the last successful Next call.
func (p *Pager) Item() map[string]any {
	return p.item
}

// Err returns the fatal error that stopped the pager, if any. A clean end
// of sequence leaves Err nil.
func (p *Pager) Err() error {
	return p.err
}

// Requests returns the number of GraphQL round trips made so far.
func (p *Pager) Requests() int {
	return p.requests
}

// fetch executes one page request and loads its items. It returns false
// when the pager cannot continue (error); an empty page with a next cursor
// returns true so the loop in Next advances without yielding.
func (p *Pager) fetch() bool {
	vars := make(map[string]any, len(p.variables)+2)
	for key, value := range p.variables {
		vars[key] = value
	}
	vars["first"] = p.pageSize
	if p.cursor != nil {
		vars["after"] = *p.cursor
	} else {
		// Explicit null on the first page, matching the wire contract.
		vars["after"] = nil
	}

	resp, err := client.Execute(p.ctx, p.session, p.query, vars)
	if err != nil {
		p.err = err
		return false
	}
	p.requests++

	conn, err := walkPath(resp.Data, p.path)
	if err != nil {
		p.err = err
		return false
	}

	items, err := connectionItems(conn, p.path)
	if err != nil {
		p.err = err
		return false
	}
	p.items = items
	p.pos = 0

	hasNext, cursor, err := pageInfo(conn)
	if err != nil {
		// The violating page's items are still delivered in order; the
		// error surfaces once the buffer drains, never deferred past the
		// page that caused it.
		p.err = err
		return true
	}
	if !hasNext {
		p.done = true
	} else {
		p.cursor = &cursor
	}

	p.logger.Debug().
		Int("page", p.requests).
		Int("items", len(items)).
		Bool("has_next", hasNext).
		Msg("Fetched connection page")
	return true
}

// walkPath descends the connection path from the response root. The root
// map exposes the decoded data object under "data" so caller paths match
// the raw response shape.
func walkPath(data map[string]any, path []string) (map[string]any, error) {
	var node any = map[string]any{"data": data}
	for _, key := range path {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, &client.PathError{Path: path, Key: key}
		}
		node, ok = obj[key]
		if !ok {
			return nil, &client.PathError{Path: path, Key: key}
		}
	}
	conn, ok := node.(map[string]any)
	if !ok && node != nil {
		return nil, &client.PathError{Path: path, Key: path[len(path)-1]}
	}
	return conn, nil
}

// connectionItems extracts the ordered item list from a connection object,
// accepting either the nodes or the edges form.
func connectionItems(conn map[string]any, path []string) ([]map[string]any, error) {
	if raw, ok := conn["nodes"]; ok {
		return castItems(raw, path, "nodes")
	}
	if raw, ok := conn["edges"]; ok {
		edges, ok := raw.([]any)
		if !ok {
			return nil, &client.PathError{Path: path, Key: "edges"}
		}
		items := make([]map[string]any, 0, len(edges))
		for _, rawEdge := range edges {
			edge, ok := rawEdge.(map[string]any)
			if !ok {
				return nil, &client.PathError{Path: path, Key: "edges"}
			}
			node, ok := edge["node"].(map[string]any)
			if !ok {
				return nil, &client.PathError{Path: path, Key: "node"}
			}
			items = append(items, node)
		}
		return items, nil
	}
	return nil, &client.PathError{Path: path, Key: "nodes"}
}

func castItems(raw any, path []string, key string) ([]map[string]any, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, &client.PathError{Path: path, Key: key}
	}
	items := make([]map[string]any, 0, len(list))
	for _, rawItem := range list {
		item, ok := rawItem.(map[string]any)
		if !ok {
			return nil, &client.PathError{Path: path, Key: key}
		}
		items = append(items, item)
	}
	return items, nil
}

// pageInfo reads hasNextPage and endCursor. A missing pageInfo block ends
// the sequence; hasNextPage without a usable cursor is a protocol violation
// by the API and fatal, since continuing would loop on a null cursor.
func pageInfo(conn map[string]any) (hasNext bool, cursor string, err error) {
	info, ok := conn["pageInfo"].(map[string]any)
	if !ok {
		return false, "", nil
	}
	hasNext, _ = info["hasNextPage"].(bool)
	if !hasNext {
		return false, "", nil
	}
	cursor, ok = info["endCursor"].(string)
	if !ok || cursor == "" {
		return false, "", &client.PaginationError{
			Reason: "hasNextPage is true but endCursor is missing",
		}
	}
	return true, cursor, nil
}

// Collect drains a pager into a slice. It returns the items yielded before
// any error together with that error.
func Collect(p *Pager) ([]map[string]any, error) {
	var items []map[string]any
	for p.Next() {
		items = append(items, p.Item())
	}
	return items, p.Err()
}
