package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flintmod/bumpath/pkg/project"
	"github.com/spf13/cobra"
)

// projectCmd represents the project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage mod project configuration files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var projectInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a mod.config.json in the current directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectInit,
}

var projectValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a mod.config.json against the project schema",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectValidate,
}

func init() {
	projectCmd.AddCommand(projectInitCmd)
	projectCmd.AddCommand(projectValidateCmd)

	projectInitCmd.Flags().String("entity", "", "Target entity identifier")
	projectInitCmd.Flags().Uint32("variant", 0, "Target variant id")
	projectInitCmd.Flags().Bool("force", false, "Overwrite an existing project file")
}

func runProjectInit(cmd *cobra.Command, args []string) error {
	entity, _ := cmd.Flags().GetString("entity")
	variant, _ := cmd.Flags().GetUint32("variant")
	force, _ := cmd.Flags().GetBool("force")

	path := project.ConfigFileName
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	var p *project.ModProject
	if entity != "" {
		p = project.NewForVariant(args[0], entity, variant)
	} else {
		p = project.New(args[0], args[0])
	}

	if err := p.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}

func runProjectValidate(cmd *cobra.Command, args []string) error {
	path := project.ConfigFileName
	if len(args) == 1 {
		path = filepath.Clean(args[0])
	}

	if _, err := project.Load(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
	return nil
}
