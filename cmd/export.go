package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/flintmod/bumpath/pkg/fantome"
	"github.com/flintmod/bumpath/pkg/safeio"
	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <content-root>",
	Short: "Package a repathed content root as a .fantome archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("entity", "", "Entity name for the WAD folder (e.g. Ahri)")
	exportCmd.Flags().String("output", "", "Output file path (default: <name>_<version>.fantome)")
	exportCmd.Flags().String("name", "", "Mod display name")
	exportCmd.Flags().String("author", "", "Mod author")
	exportCmd.Flags().String("mod-version", "1.0.0", "Mod version")
	exportCmd.Flags().String("description", "", "Mod description")
	_ = exportCmd.MarkFlagRequired("entity")
}

func runExport(cmd *cobra.Command, args []string) error {
	contentRoot, err := safeio.CleanUserPath(args[0])
	if err != nil {
		return fmt.Errorf("content root %q: %w", args[0], err)
	}

	entity, _ := cmd.Flags().GetString("entity")
	output, _ := cmd.Flags().GetString("output")
	name, _ := cmd.Flags().GetString("name")
	author, _ := cmd.Flags().GetString("author")
	modVersion, _ := cmd.Flags().GetString("mod-version")
	description, _ := cmd.Flags().GetString("description")

	meta := fantome.DefaultMetadata()
	if name != "" {
		meta.Name = name
	}
	if author != "" {
		meta.Author = author
	}
	if modVersion != "" {
		meta.Version = modVersion
	}
	if description != "" {
		meta.Description = description
	}

	if output == "" {
		output = fantome.GenerateFilename(meta.Name, meta.Version)
	}
	output = filepath.Clean(output)

	result, err := fantome.Export(contentRoot, output, entity, meta)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d files, %d bytes)\n",
		result.OutputPath, result.FileCount, result.TotalSize)
	return nil
}
