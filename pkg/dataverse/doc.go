// Package dataverse provides types, interfaces, and helpers for extracting
// solution documentation metadata from the Dataverse Web API.
//
// # Overview
//
// The dataverse package defines the domain records (EnvironmentVariable,
// Queue, SecurityRole, OptionSet, Process, CloudFlow, EntityRelationship), the
// reader interfaces, the OData QueryBuilder and the error taxonomy. A concrete
// client is provided by the dvclient package, which wires authentication, the
// retrying transport and the readers.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/dvdoc/pkg/dataverse"
//	  "github.com/fivetwenty-io/dvdoc/pkg/dvclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := dvclient.New(ctx, &dataverse.Config{
//	    Connection: dataverse.ConnectionOptions{
//	      URL:          "https://contoso.crm.dynamics.com",
//	      AuthMode:     dataverse.AuthModeServicePrincipal,
//	      TenantID:     "00000000-0000-0000-0000-000000000000",
//	      ClientID:     "11111111-1111-1111-1111-111111111111",
//	      ClientSecret: "secret",
//	    },
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  queues, err := cli.Queues().List(ctx, "ContosoCore")
//	  if err != nil { log.Fatal(err) }
//	  _ = queues
//	}
//
// # Solution scoping
//
// Every solution reader resolves the solution by unique name, reads the ids of
// its components of one type, reads the full table and keeps only the member
// rows (see Intersect). The Web API cannot filter a table by an id set, so the
// intersection happens client side.
//
// # Queries
//
// QueryBuilder renders $select, $filter, $expand, $orderby and $top in that
// fixed order:
//
//	q, _ := dataverse.NewQuery("queues")
//	q.Select("queueid", "name").FilterEqual("queuetypecode", 1).Top(10)
//	q.Build() // queues?$select=queueid,name&$filter=queuetypecode eq 1&$top=10
//
// # Errors
//
// ConfigurationError, AuthenticationError, NotFoundError, APIError and
// TransportError carry enough structure for callers to branch with errors.As or
// the IsNotFound, IsAuthentication, IsTransient and IsCanceled helpers.
package dataverse
