// Package jiraclient provides the primary entry point for constructing a Jira
// REST API client that implements the jira.Client interface.
//
// It puts the retrying HTTP transport, the credential and the metadata cache
// together on top of the interfaces and types defined in the jira package.
// Most applications import jiraclient to build a client and then use the
// returned jira.Client for the resource clients: Users(), Projects(),
// Groups(), Issues() and Metadata().
//
// Quick start
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
//
//	  cli, err := jiraclient.New(ctx, &jira.Config{
//	    Endpoint: "https://jira.example.com",
//	    Username: "jane",
//	    Password: "api-token",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  info, err := jiraclient.GetServerInfo(ctx, cli)
//	  if err != nil { log.Fatal(err) }
//	  log.Printf("connected to %s %s", info.ServerTitle, info.Version)
//
//	  walker := cli.Issues().Walker(100)
//	  walker.Push("project = ABC ORDER BY key", "summary", "status")
//
//	  for issue, err := range walker.Seq(ctx) {
//	    if err != nil { log.Fatal(err) }
//	    log.Println(issue.Key(), issue.Summary())
//	  }
//	}
//
// # Helpers
//
// NewWithEndpoint, NewWithToken, NewWithPassword, NewWithOAuth2 and
// NewWithRefreshToken wrap New with the matching configuration.
package jiraclient
