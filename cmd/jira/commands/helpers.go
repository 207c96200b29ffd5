package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// column is one table column computed from a record.
type column[T any] struct {
	header string
	value  func(T) string
}

// commandContext returns the context the command was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		return context.Background()
	}

	return ctx
}

// outputFormat returns the requested output format.
func outputFormat() (string, error) {
	output := strings.ToLower(viper.GetString("output"))

	switch output {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return output, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, output)
	}
}

// StandardJSONRenderer writes data as indented JSON.
func StandardJSONRenderer(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes data as YAML.
func StandardYAMLRenderer(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	defer func() { _ = encoder.Close() }()

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}

	return nil
}

// renderRecords prints items as JSON or YAML from their raw records, or as a
// table with the given columns.
func renderRecords[T any](cmd *cobra.Command, items []T, record func(T) jira.Payload, columns []column[T], empty string) error {
	output, err := outputFormat()
	if err != nil {
		return err
	}

	writer := cmd.OutOrStdout()

	switch output {
	case constants.FormatJSON, constants.FormatYAML:
		records := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			records = append(records, record(item).Interface())
		}

		if output == constants.FormatJSON {
			return StandardJSONRenderer(writer, records)
		}

		return StandardYAMLRenderer(writer, records)
	default:
		if len(items) == 0 {
			_, _ = fmt.Fprintln(writer, empty)

			return nil
		}

		headers := make([]any, len(columns))
		for i, col := range columns {
			headers[i] = col.header
		}

		table := tablewriter.NewWriter(writer)
		table.Header(headers...)

		for _, item := range items {
			row := make([]string, len(columns))
			for i, col := range columns {
				row[i] = truncate(col.value(item))
			}

			_ = table.Append(row)
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// renderValue prints an undecoded response, as a key/value table for objects.
func renderValue(cmd *cobra.Command, value jira.Value) error {
	output, err := outputFormat()
	if err != nil {
		return err
	}

	writer := cmd.OutOrStdout()

	switch output {
	case constants.FormatJSON:
		return StandardJSONRenderer(writer, value)
	case constants.FormatYAML:
		return StandardYAMLRenderer(writer, value.Interface())
	}

	record, ok := value.Object()
	if !ok {
		_, _ = fmt.Fprintln(writer, cellText(value))

		return nil
	}

	table := tablewriter.NewWriter(writer)
	table.Header("Property", "Value")

	for _, key := range record.Keys() {
		_ = table.Append(key, truncate(cellText(record[key])))
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// cellText renders a value for a table cell. Composite values are shown as
// compact JSON.
func cellText(value jira.Value) string {
	switch value.Kind() {
	case jira.KindArray, jira.KindObject:
		data, err := json.Marshal(value)
		if err != nil {
			return ""
		}

		return string(data)
	default:
		return value.Text()
	}
}

// nestedText follows a dotted path of object keys.
func nestedText(record jira.Payload, path string) string {
	keys := strings.Split(path, ".")

	for _, key := range keys[:len(keys)-1] {
		record = record.Object(key)
		if record == nil {
			return ""
		}
	}

	return cellText(record.Get(keys[len(keys)-1]))
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")

	runes := []rune(s)
	if len(runes) <= constants.TableTruncateWidth {
		return s
	}

	return string(runes[:constants.TableTruncateWidth-3]) + "..."
}

// printFooter tells the user that more records exist than were printed.
func printFooter(cmd *cobra.Command, shown int, declared int, hasDeclared bool) {
	output, _ := outputFormat()
	if output != constants.FormatTable || !hasDeclared || declared <= shown {
		return
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d. Use --all to fetch all records.\n", shown, declared)
}

// closeClient releases the client once a command is done with it.
func closeClient(cmd *cobra.Command, client jira.Client) {
	err := client.Close()
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(username string) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return "", constants.ErrPasswordPrompt
	}

	_, _ = fmt.Fprintf(os.Stderr, "Password for %s: ", username)

	password, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}
