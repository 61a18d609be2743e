package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/api/drive/v3"

	"github.com/tonimelisma/gopener/internal/driveapi"
)

func newFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Browse and create Drive folders to upload into",
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List folders under a parent (My Drive root by default)",
		Args:  cobra.NoArgs,
		RunE:  runFoldersLs,
	}
	ls.Flags().String("parent", "", "parent folder ID")

	mkdir := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE:  runFoldersMkdir,
	}
	mkdir.Flags().String("parent", "", "parent folder ID")

	cmd.AddCommand(ls, mkdir)

	return cmd
}

// folderOutput is the JSON schema for folder listings and creation.
type folderOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

func newFolderOutput(f *drive.File) folderOutput {
	return folderOutput{ID: f.Id, Name: f.Name, URL: driveapi.FileURL(f.Id, f.MimeType)}
}

func runFoldersLs(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	parent, err := cmd.Flags().GetString("parent")
	if err != nil {
		return err
	}

	sess, err := NewSession(cc)
	if err != nil {
		return err
	}

	folders, err := sess.Drive.ListFolders(cmd.Context(), parent)
	if err != nil {
		return err
	}

	out := make([]folderOutput, 0, len(folders))
	for _, f := range folders {
		out = append(out, newFolderOutput(f))
	}

	if cc.Flags.JSON {
		return printJSON(os.Stdout, out)
	}

	if len(out) == 0 {
		cc.Statusf("No folders.\n")
		return nil
	}

	rows := make([][]string, 0, len(out))
	for _, f := range out {
		rows = append(rows, []string{f.ID, f.Name})
	}

	printTable(os.Stdout, []string{"ID", "NAME"}, rows)

	return nil
}

func runFoldersMkdir(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	parent, err := cmd.Flags().GetString("parent")
	if err != nil {
		return err
	}

	sess, err := NewSession(cc)
	if err != nil {
		return err
	}

	created, err := sess.Drive.CreateFolder(cmd.Context(), args[0], parent)
	if err != nil {
		return err
	}

	out := newFolderOutput(created)

	if cc.Flags.JSON {
		return printJSON(os.Stdout, out)
	}

	fmt.Printf("Created %s (%s)\n", out.Name, out.ID)

	return nil
}
