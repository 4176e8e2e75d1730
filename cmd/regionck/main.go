package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"regionck/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "regionck",
	Short: "Region checker for type-checker scenario files",
	Long: `regionck runs borrow and instantiation scenarios through the region
core of a type checker and reports every case whose result differs from
the expected one`,
	SilenceUsage:      true,
	PersistentPreRunE: startTracing,
	PersistentPostRun: func(*cobra.Command, []string) { stopTracing() },
}

func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.String(false)

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to regionck.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "ring", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept in the trace ring")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "heartbeat interval for long runs (0 disables)")

	err := rootCmd.Execute()
	stopTracing()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return isTerminal(os.Stdout), nil
	}
}
