package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tasknest/internal/localstate"
)

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show the local UI preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			p := localstate.Open(e.cfg.StatePath, e.logger).Preferences()
			fmt.Fprintf(cmd.OutOrStdout(), "darkMode=%t\nsidebarOpen=%t\n", p.DarkMode, p.SidebarOpen)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "set <darkMode|sidebarOpen> <true|false>",
		Short:     "Change a preference",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{localstate.KeyDarkMode, localstate.KeySidebarOpen},
		RunE:      runPrefsSet,
	})
	return cmd
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("value must be true or false, got %q", args[1])
	}
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	state := localstate.Open(e.cfg.StatePath, e.logger)
	p := state.Preferences()
	switch args[0] {
	case localstate.KeyDarkMode:
		p.DarkMode = value
	case localstate.KeySidebarOpen:
		p.SidebarOpen = value
	default:
		return fmt.Errorf("unknown preference %q", args[0])
	}
	return state.SavePreferences(p)
}
