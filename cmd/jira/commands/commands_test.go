package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/jira-client/cmd/jira/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
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

// fakeJira answers the handful of endpoints the commands call.
func fakeJira(t *testing.T) *httptest.Server {
	t.Helper()

	routes := map[string]string{
		"/rest/api/2/serverInfo": `{"baseUrl":"https://jira.example.com","version":"9.12.4","versionNumbers":[9,12,4],"serverTitle":"Example Jira"}`,
		"/rest/api/latest/user/search": `[
			{"accountId":"acc-1","displayName":"jane.smith","active":true},
			{"accountId":"acc-2","displayName":"John Doe","active":false}
		]`,
		"/rest/api/2/search": `{"startAt":0,"maxResults":50,"total":1,"issues":[
			{"id":"10000","key":"ABC-1","fields":{"summary":"First issue","status":{"name":"Open"}}}
		]}`,
		"/rest/api/2/priority": `[{"id":"3","name":"Medium"},{"id":"1","name":"Highest"}]`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("Authorization") != "Bearer pat-123" {
			writer.WriteHeader(http.StatusUnauthorized)

			return
		}

		body, ok := routes[request.URL.Path]
		if !ok {
			writer.WriteHeader(http.StatusNotFound)

			return
		}

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

// run executes the root command with args against a fresh viper state and
// returns its standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigFile(filepath.Join(t.TempDir(), "config.yml"))

	var out bytes.Buffer

	root := commands.NewRootCommand("1.2.3", "abc123", "2024-01-01")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	root := commands.NewRootCommand("dev", "none", "unknown")
	t.Cleanup(viper.Reset)

	for _, name := range []string{
		"version", "config", "info", "users", "projects", "groups", "issues",
		"fields", "statuses", "priorities", "resolutions",
	} {
		assert.NotNil(t, findSubcommand(root, name), name)
	}

	for _, flag := range []string{"config", "endpoint", "user", "token", "output", "verbose"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}

	issues := findSubcommand(root, "issues")
	search := findSubcommand(issues, "search")
	require.NotNil(t, search)
	assert.Equal(t, "search JQL", search.Use)

	for _, flag := range []string{"all", "per-page", "start-at", "fields", "automap"} {
		assert.NotNil(t, search.Flags().Lookup(flag), flag)
	}

	assert.Equal(t, "50", search.Flags().Lookup("per-page").DefValue)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "--output", "json", "version")
	require.NoError(t, err)

	var info commands.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.Commit)
}

func TestUsersSearchCommand(t *testing.T) {
	server := fakeJira(t)

	out, err := run(t, "--endpoint", server.URL, "--token", "pat-123", "--output", "json", "users", "search", "j")
	require.NoError(t, err)

	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Jane Smith", users[0]["displayName"])
	assert.Equal(t, "jane.smith@redflaggroup.com", users[0]["email"])
	assert.Equal(t, "john.doe@redflaggroup.com", users[1]["email"])
}

func TestIssuesSearchCommand(t *testing.T) {
	server := fakeJira(t)

	out, err := run(t, "--endpoint", server.URL, "--token", "pat-123", "issues", "search", "project = ABC", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "ABC-1")
	assert.Contains(t, out, "First issue")
	assert.Contains(t, out, "Open")
}

func TestPrioritiesCommand(t *testing.T) {
	server := fakeJira(t)

	out, err := run(t, "--endpoint", server.URL, "--token", "pat-123", "--output", "yaml", "priorities")
	require.NoError(t, err)

	var priorities []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &priorities))
	require.Len(t, priorities, 2)
	assert.Equal(t, "Highest", priorities[0]["name"])
}

func TestInfoCommandUnauthorized(t *testing.T) {
	server := fakeJira(t)

	_, err := run(t, "--endpoint", server.URL, "--token", "wrong", "info")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCommandsRequireEndpoint(t *testing.T) {
	_, err := run(t, "users", "search", "jane")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Jira endpoint configured")
}

func TestConfigSetAndShow(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	configFile := filepath.Join(t.TempDir(), "jira", "config.yml")

	execute := func(args ...string) string {
		t.Helper()

		var out bytes.Buffer

		viper.SetConfigFile(configFile)

		root := commands.NewRootCommand("dev", "none", "unknown")
		root.SetOut(&out)
		root.SetArgs(args)

		require.NoError(t, root.ExecuteContext(context.Background()))

		return out.String()
	}

	assert.Contains(t, execute("config", "set", "endpoint", "https://jira.example.com"), "Set endpoint")
	assert.Contains(t, execute("config", "set", "token", "pat-123"), "Set token to ********")
	execute("config", "set", "automap", "true")

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)

	var saved commands.Config
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "https://jira.example.com", saved.Endpoint)
	assert.Equal(t, "pat-123", saved.Token)
	assert.True(t, saved.Automap)

	out := execute("--output", "json", "config", "show")

	var shown commands.Config
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "https://jira.example.com", shown.Endpoint)
	assert.Equal(t, "********", shown.Token)

	execute("config", "unset", "token")

	data, err = os.ReadFile(configFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "pat-123")
}
