package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/loader"
)

// regionsCommand creates the regions command listing the data directory.
func (c *CLI) regionsCommand() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List the regions available in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataDir == "" {
				dataDir = c.Config.DataDir
			}
			regions, err := loader.ListRegions(dataDir)
			if err != nil {
				return err
			}
			if len(regions) == 0 {
				printInfo("No regions in %s", dataDir)
				return nil
			}

			rows := make([][]string, len(regions))
			for i, r := range regions {
				rows[i] = []string{r, fileSize(loader.NodesPath(dataDir, r)), fileSize(loader.EdgesPath(dataDir, r))}
			}
			printTable([]string{"Region", "Nodes file", "Edges file"}, rows)
			printDetail("Directory: %s", dataDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory with region files")
	return cmd
}

// pickRegion lets the user choose a region interactively. It returns ""
// when the picker is dismissed.
func (c *CLI) pickRegion(dataDir string) (string, error) {
	if !term.IsTerminal(os.Stdin.Fd()) {
		return "", errors.New(errors.ErrCodeInvalidInput, "region argument required when not running in a terminal")
	}
	regions, err := loader.ListRegions(dataDir)
	if err != nil {
		return "", err
	}
	if len(regions) == 0 {
		printError("No regions found in %s", dataDir)
		return "", errors.New(errors.ErrCodeInvalidInput, "no regions found in %s", dataDir)
	}

	p := tea.NewProgram(NewRegionListModel(regions))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := finalModel.(RegionListModel)
	if !ok || m.Selected == "" {
		printDetail("No selection made")
		return "", nil
	}
	printInfo("Selected %s", StyleHighlight.Render(m.Selected))
	return m.Selected, nil
}

// fileSize formats the size of path for display.
func fileSize(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "-"
	}
	size := float64(fi.Size())
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", size/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", size/(1<<10))
	default:
		return fmt.Sprintf("%d B", fi.Size())
	}
}
