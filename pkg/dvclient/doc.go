// Package dvclient provides the primary entry point for constructing a
// Dataverse metadata client that implements the dataverse.Client interface.
//
// It layers connection validation, authentication against Microsoft Entra ID
// and the retrying HTTP transport on top of the reader interfaces and types
// defined in the dataverse package. Most applications import dvclient to
// build a client, then use the returned dataverse.Client to reach the
// solution-scoped readers, for example Queues(), SecurityRoles(), CloudFlows().
//
// Quick start
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
//
//	  // A service principal with a client secret.
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
//	  // Every reader takes the unique name of a solution.
//	  queues, err := cli.Queues().List(ctx, "contoso_core")
//	  if err != nil { log.Fatal(err) }
//	  _ = queues
//	}
//
// # Authentication
//
// Interactive mode runs the device-code flow: Config.DeviceCodeHandler
// receives the text telling the user where to sign in, and later tokens are
// renewed silently for the lifetime of the client. Service principals use a
// client secret or a certificate (PEM, or PKCS#12 when a password is given).
// Config.AccessToken bypasses the identity provider altogether.
//
// # Retries
//
// Requests answered with 429, 500, 502, 503 or 504, and requests that fail at
// the network level, are retried up to Config.RetryMax times (default 3). A
// Retry-After header sets the wait; otherwise the wait doubles from
// Config.RetryWaitMin with 20% jitter, capped at Config.RetryWaitMax
// (default 30s). Cancelling the context aborts a pending wait.
//
// # Helpers
//
// The package also provides convenience constructors NewWithToken,
// NewInteractive, NewWithClientSecret and NewWithCertificate that wrap New
// with the appropriate configuration.
package dvclient
