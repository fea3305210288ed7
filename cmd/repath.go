package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/flintmod/bumpath/pkg/config"
	"github.com/flintmod/bumpath/pkg/logger"
	"github.com/flintmod/bumpath/pkg/repath"
	"github.com/flintmod/bumpath/pkg/safeio"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// repathCmd represents the repath command
var repathCmd = &cobra.Command{
	Use:   "repath <content-root>...",
	Short: "Namespace asset paths in one or more content roots",
	Long: `Repath rewrites every asset reference in the content root's documents
under ASSETS/<creator>/<project> and moves the referenced files to match.

Multiple content roots are processed concurrently. Roots must be disjoint
directory trees; the engine assumes exclusive ownership of each root for
the duration of the run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRepath,
}

func init() {
	repathCmd.Flags().String("creator", "", "Creator name for the namespace prefix")
	repathCmd.Flags().String("project", "", "Project name for the namespace prefix")
	repathCmd.Flags().String("entity", "", "Target entity identifier (e.g. Ahri)")
	repathCmd.Flags().Uint32("variant", 0, "Target variant id")
	repathCmd.Flags().Bool("combine", true, "Combine linked documents into one")
	repathCmd.Flags().Bool("cleanup-unused", false, "Delete files no processed document references")
	repathCmd.Flags().String("mappings", "", "JSON file mapping normalized logical paths to on-disk paths")
	repathCmd.Flags().Int("jobs", 0, "Max concurrent roots (0 = number of CPUs)")
	repathCmd.Flags().Bool("output-json", false, "Print run results as JSON")
}

func runRepath(cmd *cobra.Command, args []string) error {
	toolCfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	creator, _ := cmd.Flags().GetString("creator")
	projectName, _ := cmd.Flags().GetString("project")
	entity, _ := cmd.Flags().GetString("entity")
	variant, _ := cmd.Flags().GetUint32("variant")
	combine, _ := cmd.Flags().GetBool("combine")
	cleanupUnused, _ := cmd.Flags().GetBool("cleanup-unused")
	mappingsPath, _ := cmd.Flags().GetString("mappings")
	jobs, _ := cmd.Flags().GetInt("jobs")
	outputJSON, _ := cmd.Flags().GetBool("output-json")

	if creator == "" {
		creator = toolCfg.Repath.Creator
	}
	if projectName == "" {
		projectName = toolCfg.Repath.Project
	}
	if !cmd.Flags().Changed("combine") {
		combine = toolCfg.Repath.CombineLinked
	}
	if !cmd.Flags().Changed("cleanup-unused") {
		cleanupUnused = toolCfg.Repath.CleanupUnused
	}

	runCfg := repath.Config{
		CreatorName:     creator,
		ProjectName:     projectName,
		Entity:          entity,
		TargetVariantID: variant,
		CombineLinked:   combine,
		CleanupUnused:   cleanupUnused,
	}

	mappings, err := loadMappings(mappingsPath)
	if err != nil {
		return err
	}

	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	type rootResult struct {
		Root   string         `json:"root"`
		Result *repath.Result `json:"result"`
	}
	results := make([]rootResult, len(args))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, root := range args {
		i := i
		cleaned, err := safeio.CleanUserPath(root)
		if err != nil {
			return fmt.Errorf("content root %q: %w", root, err)
		}
		g.Go(func() error {
			logger.Info("Repathing content root", logger.String("root", cleaned))
			res, err := repath.Repath(cleaned, runCfg, mappings)
			if err != nil {
				return fmt.Errorf("%s: %w", cleaned, err)
			}
			results[i] = rootResult{Root: cleaned, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, rr := range results {
		fmt.Fprintf(out, "%s: %d docs, %d paths modified, %d files relocated, %d combined, %d removed\n",
			rr.Root, rr.Result.DocsProcessed, rr.Result.PathsModified,
			rr.Result.FilesRelocated, rr.Result.DocsCombined, rr.Result.FilesRemoved)
		for _, missing := range rr.Result.MissingPaths {
			fmt.Fprintf(out, "  missing: %s\n", missing)
		}
	}
	return nil
}

// loadMappings reads an optional JSON path-mapping table.
func loadMappings(path string) (repath.PathMapping, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied mapping file
	if err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}
	var m repath.PathMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode mappings: %w", err)
	}
	return m, nil
}
