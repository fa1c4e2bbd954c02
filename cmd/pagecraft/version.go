package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pagecraft/internal/pdfdoc"
)

// buildInfo describes the binary and the PDF engine it links.
type buildInfo struct {
	Version string `yaml:"version"`
	Engine  string `yaml:"engine"`
	Go      string `yaml:"go"`
}

func currentBuild() buildInfo {
	return buildInfo{Version: version, Engine: pdfdoc.EngineVersion(), Go: runtime.Version()}
}

func printVersion(w io.Writer, info buildInfo, asYAML bool) error {
	if asYAML {
		return writePlan(w, info)
	}
	fmt.Fprintf(w, "pagecraft %s (%s, %s)\n", info.Version, info.Engine, info.Go)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of pagecraft and its PDF engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		asYAML, _ := cmd.Flags().GetBool("yaml")
		return printVersion(os.Stdout, currentBuild(), asYAML)
	},
}

func init() {
	versionCmd.Flags().Bool("yaml", false, "print build information as YAML")
	rootCmd.AddCommand(versionCmd)
}
