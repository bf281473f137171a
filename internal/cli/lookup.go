package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alimgiray/codenexus/internal/models"
	"github.com/alimgiray/codenexus/internal/services"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newUserCommand(deps Dependencies, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "user <username>",
		Short: "Show a user's public profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := deps.Client.GetUser(cmd.Context(), args[0], opts.credential())
			if err != nil {
				return err
			}

			return opts.render(cmd, profile, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Username:\t%s\n", profile.Login)
				fmt.Fprintf(tw, "Name:\t%s\n", profile.DisplayName)
				fmt.Fprintf(tw, "Public Repositories:\t%d\n", profile.PublicRepoCount)
				fmt.Fprintf(tw, "Followers:\t%d\n", profile.FollowerCount)
				fmt.Fprintf(tw, "Following:\t%d\n", profile.FollowingCount)
				return tw.Flush()
			})
		},
	}
}

func newReposCommand(deps Dependencies, opts *rootOptions) *cobra.Command {
	var maxItems int

	cmd := &cobra.Command{
		Use:   "repos <username>",
		Short: "List a user's repositories in the order GitHub returns them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := deps.Client.ListRepos(cmd.Context(), args[0], opts.credential(), services.ListReposOptions{MaxItems: maxItems})
			if err != nil {
				return err
			}

			return opts.render(cmd, repos, func(w io.Writer) error {
				return writeRepositories(w, repos)
			})
		},
	}

	cmd.Flags().IntVar(&maxItems, "max", 0, "Maximum number of repositories to list (0 uses the configured cap, -1 lists all)")
	return cmd
}

func newExportCommand(deps Dependencies, opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export <username>",
		Short: "Save a user's profile and repositories to an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			credential := opts.credential()

			var profile models.UserProfile
			var repos []models.RepositorySummary

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				profile, err = deps.Client.GetUser(ctx, username, credential)
				return err
			})
			g.Go(func() error {
				var err error
				repos, err = deps.Client.ListRepos(ctx, username, credential, services.ListReposOptions{})
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			workbook, err := deps.Export.RepositoriesWorkbook(profile, repos)
			if err != nil {
				return err
			}
			defer workbook.Close()

			path := file
			if path == "" {
				path = profile.Login + "-repositories.xlsx"
			}
			if err := workbook.SaveAs(path); err != nil {
				return fmt.Errorf("failed to save workbook: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d repositories to %s\n", len(repos), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Output file (defaults to <username>-repositories.xlsx)")
	return cmd
}

func writeRepositories(w io.Writer, repos []models.RepositorySummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVISIBILITY\tURL")
	for _, repo := range repos {
		visibility := "public"
		if repo.IsPrivate {
			visibility = "private"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", repo.ID, repo.Name, visibility, repo.HTMLURL)
	}
	return tw.Flush()
}
