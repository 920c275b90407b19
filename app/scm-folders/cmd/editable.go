package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cchalm/scm-folders/internal/repository"
)

var editableFlags struct {
	repo   string
	branch string
}

var editableCmd = &cobra.Command{
	Use:   "editable",
	Short: "Report whether folders of a repository can be edited",
	Args:  cobra.NoArgs,
	RunE:  runEditable,
}

func init() {
	editableCmd.Flags().StringVar(&editableFlags.repo, "repo", "", "Repository name in the format 'owner/repo'")
	editableCmd.Flags().StringVar(&editableFlags.branch, "branch", "", "Branch to check, defaults to the repository's default branch")
	_ = editableCmd.MarkFlagRequired("repo")
	rootCmd.AddCommand(editableCmd)
}

func runEditable(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	ref, err := repository.ParseRef(editableFlags.repo)
	if err != nil {
		return err
	}

	c, err := createComponents(cfg)
	if err != nil {
		return err
	}

	editable, err := c.preconditions.IsEditable(ctx, ref, editableFlags.branch)
	if err != nil {
		return err
	}
	fmt.Println(editable)
	return nil
}
