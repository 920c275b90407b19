package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cchalm/scm-folders/internal/folder"
	"github.com/cchalm/scm-folders/internal/git"
	"github.com/cchalm/scm-folders/internal/repository"
)

var folderFlags struct {
	repo             string
	branch           string
	message          string
	expectedRevision string
}

var createCmd = &cobra.Command{
	Use:   "create <path>",
	Short: "Create a folder with a single commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFolderCommand(args[0], (*folder.Service).Create)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <path>",
	Short: "Delete a folder and everything below it with a single commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFolderCommand(args[0], (*folder.Service).Delete)
	},
}

func init() {
	for _, c := range []*cobra.Command{createCmd, deleteCmd} {
		c.Flags().StringVar(&folderFlags.repo, "repo", "", "Repository name in the format 'owner/repo'")
		c.Flags().StringVar(&folderFlags.branch, "branch", "", "Branch to commit to, defaults to the repository's default branch")
		c.Flags().StringVarP(&folderFlags.message, "message", "m", "", "Commit message")
		c.Flags().StringVar(&folderFlags.expectedRevision, "expected-revision", "", "Fail unless the branch head is this revision")
		_ = c.MarkFlagRequired("repo")
		_ = c.MarkFlagRequired("message")
		rootCmd.AddCommand(c)
	}
}

type folderOperation func(s *folder.Service, ctx context.Context, ref repository.Ref, branch string, path string, commitMessage string, opts ...folder.Option) (*git.Changeset, error)

func runFolderCommand(path string, operation folderOperation) error {
	ctx := setupContext()

	ref, err := repository.ParseRef(folderFlags.repo)
	if err != nil {
		return err
	}

	telemetryProvider, err := createTelemetryProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(telemetryProvider)

	c, err := createComponents(cfg)
	if err != nil {
		return err
	}

	var opts []folder.Option
	if folderFlags.expectedRevision != "" {
		opts = append(opts, folder.WithExpectedRevision(folderFlags.expectedRevision))
	}

	changeset, err := operation(c.folders, ctx, ref, folderFlags.branch, path, folderFlags.message, opts...)
	if err != nil {
		return err
	}

	fmt.Println(changeset.ID)
	return nil
}
