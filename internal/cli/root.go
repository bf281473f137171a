package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alimgiray/codenexus/internal/services"
	"github.com/alimgiray/codenexus/internal/views"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const tokenEnvVar = "GITHUB_TOKEN"

// Dependencies are the services the commands call into
type Dependencies struct {
	Client       *services.GitHubClient
	Repositories *services.RepositoryService
	Export       *services.ExportService
}

type rootOptions struct {
	output string
	token  string
}

// NewRootCommand builds the codenexus command tree
func NewRootCommand(deps Dependencies) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "codenexus",
		Short: "Look up GitHub profiles and create repositories",
		Long: `codenexus talks to the GitHub REST API with retries, rate limit
tracking and typed errors.

Read commands work without a token; a token raises the rate limit. Creating
repositories needs a token with the repo scope, taken from --token, the
GITHUB_TOKEN environment variable, or an interactive prompt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.output {
			case "text", "json", "yaml":
				return nil
			}
			return fmt.Errorf("unsupported output format %q (use text, json or yaml)", opts.output)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "GitHub token (defaults to $"+tokenEnvVar+")")

	rootCmd.AddCommand(
		newUserCommand(deps, opts),
		newReposCommand(deps, opts),
		newCreateCommand(deps, opts),
		newCreationsCommand(deps, opts),
		newReconcileCommand(deps, opts),
		newExportCommand(deps, opts),
	)

	return rootCmd
}

// Execute runs the command tree and prints failures the way the web page
// words them
func Execute(deps Dependencies) int {
	rootCmd := NewRootCommand(deps)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", describeError(err))
		return 1
	}
	return 0
}

func describeError(err error) string {
	if services.KindOf(err) != "" {
		return views.ErrorMessage(err)
	}
	return err.Error()
}

// credential returns the token from the flag or the environment
func (o *rootOptions) credential() string {
	if token := strings.TrimSpace(o.token); token != "" {
		return token
	}
	return strings.TrimSpace(os.Getenv(tokenEnvVar))
}

// requireCredential falls back to prompting for a token. On a terminal the
// input is not echoed; piped input is read as one line.
func (o *rootOptions) requireCredential(cmd *cobra.Command) (string, error) {
	if token := o.credential(); token != "" {
		return token, nil
	}

	stdin := cmd.InOrStdin()
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "GitHub token: ")
		tokenBytes, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(tokenBytes)), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// render writes value as JSON or YAML, or calls text for the text format
func (o *rootOptions) render(cmd *cobra.Command, value interface{}, text func(w io.Writer) error) error {
	out := cmd.OutOrStdout()
	switch o.output {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	}
	return text(out)
}
