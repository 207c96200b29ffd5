package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand creates the jira command with every subcommand attached.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jira",
		Short: "Jira REST API CLI",
		Long: `A command-line interface for the Jira REST API.

It searches users, projects, groups and issues, walking through paginated
results, and lists the field, status, priority and resolution definitions of
a Jira server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.jira/config.yml)")
	flags.StringP("endpoint", "e", "", "Jira base URL")
	flags.StringP("user", "u", "", "username for basic authentication")
	flags.StringP("token", "t", "", "personal access token")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("endpoint", flags.Lookup("endpoint"))
	_ = viper.BindPFlag("username", flags.Lookup("user"))
	_ = viper.BindPFlag("token", flags.Lookup("token"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewInfoCommand())
	rootCmd.AddCommand(NewUsersCommand())
	rootCmd.AddCommand(NewProjectsCommand())
	rootCmd.AddCommand(NewGroupsCommand())
	rootCmd.AddCommand(NewIssuesCommand())
	rootCmd.AddCommand(NewFieldsCommand())
	rootCmd.AddCommand(NewStatusesCommand())
	rootCmd.AddCommand(NewPrioritiesCommand())
	rootCmd.AddCommand(NewResolutionsCommand())

	return rootCmd
}

// InitConfig loads the config file and the JIRA_* environment variables.
func InitConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, constants.ConfigDirName)

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		}

		// Search config in ~/.jira/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName(strings.TrimSuffix(constants.ConfigFileName, filepath.Ext(constants.ConfigFileName)))
	}

	// JIRA_ENDPOINT, JIRA_TOKEN, JIRA_OAUTH_CLIENT_ID, ...
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil && viper.GetBool("verbose") {
		_, _ = fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
