package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jjenkins/billt/internal/store"
	"github.com/jjenkins/billt/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored bills in the terminal",
	Long: `Browse opens a terminal view of every bill in the local store, most
recently checked first. Press ? for keys; q saves and quits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.ReadLocal(cfg.DBPath)
		if err != nil {
			return err
		}

		final, err := tea.NewProgram(tui.New(db, cfg.DBPath), tea.WithAltScreen()).Run()
		if err != nil {
			return fmt.Errorf("terminal UI failed: %w", err)
		}

		if m, ok := final.(tui.Model); ok && m.Err() != nil {
			return m.Err()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
