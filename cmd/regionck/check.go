package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"regionck/internal/driver"
	"regionck/internal/prof"
	"regionck/internal/project"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.toml|directory]...",
	Short: "Run scenario files through the region checker",
	Long: `Run every borrow and instantiation case of the given scenario files.
Directories are searched for *.toml files. Without arguments the paths
listed in regionck.toml are checked.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=from config, then auto)")
	checkCmd.Flags().Int("max-diagnostics", 0, "maximum diagnostics per file (0=from config)")
	checkCmd.Flags().String("self-fallback", "", "region of an unassigned receiver (borrow|abort)")
	checkCmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	checkCmd.Flags().Bool("timings", false, "show per-file phase timings")
	checkCmd.Flags().Bool("verbose", false, "list passing cases too")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	checkCmd.Flags().String("format", "text", "report format (text|json)")
	checkCmd.Flags().String("cpuprofile", "", "write a CPU profile to file")
	checkCmd.Flags().String("memprofile", "", "write a heap profile to file")
	checkCmd.Flags().String("runtime-trace", "", "write a Go runtime trace to file")
}

// errCheckFailed is returned after the report has already been printed.
var errCheckFailed = errors.New("check failed")

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("jobs") {
		cfg.Run.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("max-diagnostics") {
		cfg.Check.MaxDiagnostics, _ = flags.GetInt("max-diagnostics")
	}
	if flags.Changed("self-fallback") {
		cfg.Check.SelfFallback, _ = flags.GetString("self-fallback")
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	regionOpts, err := cfg.RegionOptions()
	if err != nil {
		return err
	}

	timings, _ := flags.GetBool("timings")
	verbose, _ := flags.GetBool("verbose")
	withNotes, _ := flags.GetBool("with-notes")
	format, _ := flags.GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q (expected text|json)", format)
	}
	uiValue, _ := flags.GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Run.Paths
	}

	opts := driver.Options{
		Jobs:           cfg.Run.Jobs,
		MaxDiagnostics: cfg.Check.MaxDiagnostics,
		Regions:        regionOpts,
		Timings:        timings,
	}
	if cfg.Cache.Enabled {
		cache, err := driver.OpenCache(cfg.Cache.Dir)
		if err != nil {
			// без кэша проверка всё равно работает
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: result cache disabled: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}

	var profOpts prof.Options
	profOpts.CPU, _ = flags.GetString("cpuprofile")
	profOpts.Mem, _ = flags.GetString("memprofile")
	profOpts.Trace, _ = flags.GetString("runtime-trace")
	session, err := prof.Start(profOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
	}()

	var res *driver.Result
	if shouldUseTUI(mode, format, os.Stdout) {
		files, err := driver.ListScenarios(paths)
		if err != nil {
			return err
		}
		res, err = runCheckWithUI(cmd.Context(), "checking", files, paths, opts)
		if err != nil {
			return err
		}
	} else {
		res, err = driver.Run(cmd.Context(), paths, opts)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	width := 0
	if isTerminal(os.Stdout) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}
	if format == "json" {
		if err := driver.WriteJSON(out, res); err != nil {
			return err
		}
	} else if err := driver.WriteReport(out, res, driver.ReportOptions{Color: colored, Verbose: verbose, Notes: withNotes, Width: width}); err != nil {
		return err
	}
	if timings && format == "text" {
		if err := driver.WriteTimings(out, res); err != nil {
			return err
		}
	}
	if res.HasFatal() {
		dumpTraceRing(cmd.Context(), cmd.ErrOrStderr())
	}
	if res.Failed() {
		cmd.SilenceErrors = true
		return errCheckFailed
	}
	return nil
}

// loadProjectConfig reads --config, or the nearest regionck.toml, or
// falls back to the defaults.
func loadProjectConfig(cmd *cobra.Command) (project.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return project.Config{}, err
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return project.Config{}, err
		}
		found, ok, err := project.FindConfig(wd)
		if err != nil {
			return project.Config{}, err
		}
		if !ok {
			return project.DefaultConfig(), nil
		}
		path = found
	}
	cfg, err := project.LoadConfig(path)
	if err != nil {
		return project.Config{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}
