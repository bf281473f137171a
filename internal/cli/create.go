package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/alimgiray/codenexus/internal/models"
	"github.com/spf13/cobra"
)

func newCreateCommand(deps Dependencies, opts *rootOptions) *cobra.Command {
	var private bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a repository for the token's owner",
		Long: `Create a repository for the account the token belongs to.

Every attempt is recorded in the creation journal. When GitHub does not confirm
the outcome, the attempt is marked ambiguous; run "codenexus reconcile <id>"
to check whether the repository exists before trying again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			credential, err := opts.requireCredential(cmd)
			if err != nil {
				return err
			}

			request := models.CreateRepoRequest{Name: args[0], IsPrivate: private}
			repo, creation, err := deps.Repositories.CreateRepository(cmd.Context(), request, credential)
			if err != nil {
				if creation != nil {
					return fmt.Errorf("%w (journal entry %s)", err, creation.ID)
				}
				return err
			}

			result := struct {
				Repository models.RepositorySummary `json:"repository" yaml:"repository"`
				Creation   *models.RepoCreation     `json:"creation" yaml:"creation"`
			}{repo, creation}

			return opts.render(cmd, result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created %s (%s)\n", repo.Name, repo.HTMLURL)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&private, "private", false, "Create a private repository")
	return cmd
}

func newCreationsCommand(deps Dependencies, opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "creations",
		Short: "List recent repository creation attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creations, err := deps.Repositories.ListCreations(limit)
			if err != nil {
				return err
			}

			return opts.render(cmd, creations, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tERROR\tCREATED")
				for _, creation := range creations {
					errorKind := "-"
					if creation.ErrorKind != nil {
						errorKind = *creation.ErrorKind
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						creation.ID, creation.Name, creation.Status, errorKind,
						creation.CreatedAt.Local().Format(time.DateTime))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries to show")
	return cmd
}

func newReconcileCommand(deps Dependencies, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <id>",
		Short: "Check whether an ambiguous creation produced a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			credential, err := opts.requireCredential(cmd)
			if err != nil {
				return err
			}

			creation, err := deps.Repositories.Reconcile(cmd.Context(), args[0], credential)
			if err != nil {
				return err
			}

			return opts.render(cmd, creation, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s: %s\n", creation.Name, creation.Status)
				return err
			})
		},
	}
}
