package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/dvdoc/cmd/dvdoc/commands"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// fakeClient serves canned metadata for a single solution.
type fakeClient struct {
	solution      *dataverse.Solution
	variables     []dataverse.EnvironmentVariable
	queues        []dataverse.Queue
	roles         []dataverse.SecurityRole
	optionSets    []dataverse.OptionSet
	processes     []dataverse.Process
	flows         []dataverse.CloudFlow
	entities      []string
	graph         *dataverse.EntityGraph
	err           error
	readRoots     []string
	readDepth     int
	solutionCalls int
}

func (f *fakeClient) WhoAmI(context.Context) (*dataverse.WhoAmI, error) {
	if f.err != nil {
		return nil, f.err
	}

	return &dataverse.WhoAmI{}, nil
}

func (f *fakeClient) Solutions() dataverse.SolutionsClient { return fakeSolutions{f} }

func (f *fakeClient) EnvironmentVariables() dataverse.EnvironmentVariablesClient {
	return fakeList[dataverse.EnvironmentVariable]{f, f.variables}
}

func (f *fakeClient) Queues() dataverse.QueuesClient {
	return fakeList[dataverse.Queue]{f, f.queues}
}

func (f *fakeClient) SecurityRoles() dataverse.SecurityRolesClient {
	return fakeList[dataverse.SecurityRole]{f, f.roles}
}

func (f *fakeClient) OptionSets() dataverse.OptionSetsClient {
	return fakeList[dataverse.OptionSet]{f, f.optionSets}
}

func (f *fakeClient) Processes() dataverse.ProcessesClient {
	return fakeList[dataverse.Process]{f, f.processes}
}

func (f *fakeClient) CloudFlows() dataverse.CloudFlowsClient {
	return fakeList[dataverse.CloudFlow]{f, f.flows}
}

func (f *fakeClient) EntityRelationships() dataverse.EntityRelationshipsClient {
	return fakeRelationships{f}
}

func (f *fakeClient) check(solution string) error {
	if f.err != nil {
		return f.err
	}

	if f.solution == nil || solution != f.solution.UniqueName {
		return &dataverse.NotFoundError{Kind: "solution", Name: solution}
	}

	return nil
}

type fakeSolutions struct{ f *fakeClient }

func (s fakeSolutions) Get(_ context.Context, name string) (*dataverse.Solution, error) {
	s.f.solutionCalls++

	if err := s.f.check(name); err != nil {
		return nil, err
	}

	return s.f.solution, nil
}

type fakeList[T any] struct {
	f     *fakeClient
	items []T
}

func (l fakeList[T]) List(_ context.Context, solution string) ([]T, error) {
	if err := l.f.check(solution); err != nil {
		return nil, err
	}

	if l.items == nil {
		return []T{}, nil
	}

	return l.items, nil
}

type fakeRelationships struct{ f *fakeClient }

func (r fakeRelationships) Read(_ context.Context, roots []string, depth int) (*dataverse.EntityGraph, error) {
	r.f.readRoots = roots
	r.f.readDepth = depth

	if r.f.err != nil {
		return nil, r.f.err
	}

	return r.f.graph, nil
}

func (r fakeRelationships) SolutionEntities(_ context.Context, solution string) ([]string, error) {
	if err := r.f.check(solution); err != nil {
		return nil, err
	}

	return r.f.entities, nil
}

// result captures one CLI invocation.
type result struct {
	stdout string
	stderr string
	err    error
	config *dataverse.Config
}

// run executes the CLI against fake with an isolated config file and
// environment.
func run(t *testing.T, fake *fakeClient, env map[string]string, args ...string) result {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("output: table\n"), 0o600))

	return runWithConfig(t, fake, env, path, args...)
}

func runWithConfig(t *testing.T, fake *fakeClient, env map[string]string, path string, args ...string) result {
	t.Helper()

	var (
		stdout, stderr bytes.Buffer
		res            result
	)

	app := commands.NewApp()
	app.Out = &stdout
	app.Err = &stderr
	app.LookupEnv = func(key string) (string, bool) {
		value, ok := env[key]

		return value, ok
	}
	app.ReadSecret = func() (string, error) { return "prompted-secret", nil }
	app.NewClient = func(_ context.Context, config *dataverse.Config) (dataverse.Client, error) {
		res.config = config

		return fake, nil
	}

	root := commands.NewRootCommand(app, commands.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2025-01-02"})
	root.SetArgs(append([]string{"--config", path, "--no-color"}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	res.err = root.ExecuteContext(context.Background())
	res.stdout = stdout.String()
	res.stderr = stderr.String()

	return res
}
