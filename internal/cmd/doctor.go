package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fernglen/crewdeck/internal/cfg"
	"github.com/fernglen/crewdeck/internal/doctor"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/style"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupDiag,
	Short:   "Run environment health checks on the state root",
	Long: `doctor checks whether the state root is hardened, whether the
configured agent binary is on PATH, whether any lock files look
abandoned, and how many entries the state root holds.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	root := resolveRoot()
	c, err := cfg.Load(statepath.ConfigFile(root))
	if err != nil {
		return fmt.Errorf("doctor: loading config: %w", err)
	}

	d := doctor.NewDoctor()
	for _, check := range doctor.DefaultChecks() {
		d.Register(check)
	}

	results := d.Run(&doctor.CheckContext{Root: root, AgentBinary: c.AgentBinary})

	errs := 0
	for _, r := range results {
		fmt.Printf("  %s %s\n", statusGlyph(r.Status), style.Bold.Render(r.Name)+": "+r.Message)
		for _, detail := range r.Details {
			fmt.Printf("      %s\n", style.Dim.Render(detail))
		}
		if r.Status == doctor.StatusError {
			errs++
		}
	}
	if errs > 0 {
		return fmt.Errorf("doctor found %d error(s)", errs)
	}
	return nil
}

func statusGlyph(s doctor.Status) string {
	switch s {
	case doctor.StatusOK:
		return style.Success.Render("✓")
	case doctor.StatusWarning:
		return style.Warn.Render("!")
	default:
		return style.Danger.Render("✗")
	}
}
