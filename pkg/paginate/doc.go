// Package paginate walks cursor-based GraphQL connections lazily.
//
// Shopify connections paginate through opaque cursors: each page reports
// pageInfo{hasNextPage, endCursor} and the next page is requested with
// after=endCursor. This package drives repeated executions of a query with
// an advancing cursor and exposes the items as a demand-driven pull
// iterator, so large result sets stream without buffering whole pages
// ahead of the consumer.
//
// Example usage:
//
//	query := `query Products($first: Int!, $after: String) {
//	  products(first: $first, after: $after) {
//	    nodes { id title }
//	    pageInfo { hasNextPage endCursor }
//	  }
//	}`
//
//	p := paginate.Pages(ctx, session, query, nil,
//		[]string{"data", "products"}, paginate.DefaultConfig())
//	for p.Next() {
//		fmt.Println(p.Item()["title"])
//	}
//	if err := p.Err(); err != nil {
//		log.Fatal(err)
//	}
//
// The pager:
//   - Injects first/after into a copy of the caller's variables
//   - Accepts both the nodes and the edges connection forms
//   - Treats an empty page with hasNextPage=true as an advance, not an end
//   - Fails fast on unresolvable paths (PathError) and on protocol
//     violations such as a missing end cursor (PaginationError)
//   - Fetches only inside Next, so abandoning the pager early leaks nothing
package paginate
