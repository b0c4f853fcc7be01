package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

// Client implements the dataverse.Client interface.
type Client struct {
	httpClient *http.Client

	// Resource clients
	solutions            *SolutionsClient
	environmentVariables *EnvironmentVariablesClient
	queues               *QueuesClient
	securityRoles        *SecurityRolesClient
	optionSets           *OptionSetsClient
	processes            *ProcessesClient
	cloudFlows           *CloudFlowsClient
	entityRelationships  *EntityRelationshipsClient
}

// New creates a metadata client on top of an authenticated transport. All
// readers share the transport and its connection pool.
func New(httpClient *http.Client) *Client {
	client := &Client{httpClient: httpClient}
	client.initializeResourceClients()

	return client
}

func (c *Client) initializeResourceClients() {
	c.solutions = NewSolutionsClient(c.httpClient)
	c.environmentVariables = NewEnvironmentVariablesClient(c.httpClient, c.solutions)
	c.queues = NewQueuesClient(c.httpClient, c.solutions)
	c.securityRoles = NewSecurityRolesClient(c.httpClient, c.solutions)
	c.optionSets = NewOptionSetsClient(c.httpClient, c.solutions)
	c.processes = NewProcessesClient(c.httpClient, c.solutions)
	c.cloudFlows = NewCloudFlowsClient(c.httpClient, c.solutions)
	c.entityRelationships = NewEntityRelationshipsClient(c.httpClient, c.solutions)
}

// WhoAmI implements dataverse.Client.WhoAmI.
func (c *Client) WhoAmI(ctx context.Context) (*dataverse.WhoAmI, error) {
	var whoAmI dataverse.WhoAmI

	err := c.httpClient.Execute(ctx, dataverse.WhoAmIQuery(), &whoAmI)
	if err != nil {
		return nil, fmt.Errorf("calling WhoAmI: %w", err)
	}

	return &whoAmI, nil
}

// Resource client accessors

// Solutions implements dataverse.Client.Solutions.
func (c *Client) Solutions() dataverse.SolutionsClient {
	return c.solutions
}

// EnvironmentVariables implements dataverse.Client.EnvironmentVariables.
func (c *Client) EnvironmentVariables() dataverse.EnvironmentVariablesClient {
	return c.environmentVariables
}

// Queues implements dataverse.Client.Queues.
func (c *Client) Queues() dataverse.QueuesClient {
	return c.queues
}

// SecurityRoles implements dataverse.Client.SecurityRoles.
func (c *Client) SecurityRoles() dataverse.SecurityRolesClient {
	return c.securityRoles
}

// OptionSets implements dataverse.Client.OptionSets.
func (c *Client) OptionSets() dataverse.OptionSetsClient {
	return c.optionSets
}

// Processes implements dataverse.Client.Processes.
func (c *Client) Processes() dataverse.ProcessesClient {
	return c.processes
}

// CloudFlows implements dataverse.Client.CloudFlows.
func (c *Client) CloudFlows() dataverse.CloudFlowsClient {
	return c.cloudFlows
}

// EntityRelationships implements dataverse.Client.EntityRelationships.
func (c *Client) EntityRelationships() dataverse.EntityRelationshipsClient {
	return c.entityRelationships
}

var _ dataverse.Client = (*Client)(nil)
