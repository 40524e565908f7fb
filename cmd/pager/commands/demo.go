package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eachlabs/pager/internal/browse"
	"github.com/eachlabs/pager/internal/config"
	"github.com/eachlabs/pager/internal/pager"
	"github.com/eachlabs/pager/internal/session"
	"github.com/eachlabs/pager/internal/tui"
)

var (
	demoCmdFile     string
	demoCmdStream   bool
	demoCmdPageSize int
)

var demoCmd = &cobra.Command{
	Use:   "demo [path]",
	Short: "Browse files in an interactive terminal pager",
	Long: `Browse a directory tree or page through a file in the terminal.

Examples:
  pager demo                   Browse the configured root directory
  pager demo ./docs            Browse a directory
  pager demo --file README.md  Page through one file
  journalctl | pager demo --stream
                               Page lines from stdin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringVarP(&demoCmdFile, "file", "f", "", "page through a single file")
	demoCmd.Flags().BoolVar(&demoCmdStream, "stream", false, "page lines from stdin")
	demoCmd.Flags().IntVar(&demoCmdPageSize, "page-size", 0, "lines or entries per page")

	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pageSize := demoCmdPageSize
	if pageSize <= 0 {
		pageSize = cfg.Pager.PageSize
	}

	var src pager.Source
	switch {
	case demoCmdStream:
		src, err = browse.NewReaderSource(os.Stdin, "stdin", pageSize)
	case demoCmdFile != "":
		src, err = browse.NewFileSource(demoCmdFile, pageSize)
	default:
		root := cfg.Browse.Root
		if len(args) == 1 {
			root = args[0]
		}
		src, err = browse.NewSource(root, pageSize)
	}
	if err != nil {
		return err
	}

	// Load already validated these.
	stopAction, _ := cfg.StopAction()
	timeoutAction, _ := cfg.TimeoutAction()
	timeout, _ := cfg.TimeoutDuration()

	mgr := session.NewManager(timeout)
	return tui.Run(cmd.Context(), mgr, pager.ViewConfig{
		Sources:       []pager.Source{src},
		StopAction:    stopAction,
		TimeoutAction: timeoutAction,
	})
}
