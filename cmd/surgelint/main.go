package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"surgelint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "surgelint",
	Short:         "Lint tool for compiled surge IR bundles",
	Long:          `surgelint analyzes .sgir bundles produced by the surge compiler and reports redundant reference operations with suggested fixes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries the process exit code: 1 findings at error severity,
// 2 usage/config/input error, 3 internal error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) *exitError {
	return &exitError{code: code, err: err}
}

func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Number

	// Добавляем команды
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(lintsCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show per module")
	rootCmd.PersistentFlags().String("ui", "auto", "interactive progress (auto|on|off)")

	rootCmd.PersistentFlags().String("trace", "", "trace output path ('-' for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer size for trace events")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "trace heartbeat interval (0 disables)")

	rootCmd.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write heap profile to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write runtime trace to file")

	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.err != nil {
				fmt.Fprintf(os.Stderr, "surgelint: %v\n", ee.err)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "surgelint: %v\n", err)
		os.Exit(2)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
