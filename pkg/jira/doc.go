// Package jira provides types, interfaces, and helpers for working with the
// Jira REST API.
//
// # Overview
//
// The jira package defines the entities (User, Project, Group, Issue), the
// decoded JSON model they are built from (Value and Payload), the ResultSet
// that wraps one response page and the Walker that iterates a paginated query
// page by page. A concrete client is provided by the jiraclient package, which
// wires configuration, transport, credentials and the metadata cache.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/jira-client/pkg/jira"
//	  "github.com/fivetwenty-io/jira-client/pkg/jiraclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := jiraclient.New(ctx, &jira.Config{
//	    Endpoint: "https://jira.example.com",
//	    Username: "jane",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  users, err := cli.Users().Search(ctx, "jane", 0, 50)
//	  if err != nil { log.Fatal(err) }
//	  _ = users.Entities()
//	}
//
// # Walking paginated results
//
// A Walker fetches the next page only when the cursor runs off the current
// one:
//
//	walker := cli.Issues().Walker(100)
//	walker.Push("project = ABC ORDER BY key", "summary", "status")
//
//	for issue, err := range walker.Seq(ctx) {
//	  if err != nil { /* unauthorized or cancelled */ }
//	  fmt.Println(issue.Key(), issue.Summary())
//	}
//
//	if err := walker.Err(); err != nil { /* a page failed and ended the walk */ }
//
// # Empty results
//
// An empty response body is not an error. Client.API returns the zero Value,
// searches return an empty ResultSet and single lookups return nil.
//
// # Errors
//
// Non-success responses are returned as *ResponseError, which matches
// ErrUnauthorized, ErrForbidden and ErrNotFound through errors.Is. Helpers such
// as IsUnauthorized and IsNotFound make branching on them easy.
//
// # Field automapping
//
// With the AutomapFields option, issue fields keyed by id (customfield_10010)
// are renamed to their display names using the field definitions of the
// endpoint. The definitions are fetched once per endpoint and kept in a
// MetadataCache, in memory by default or in a NATS JetStream key-value bucket.
package jira
