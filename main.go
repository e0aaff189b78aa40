// ABOUTME: Entry point for the cutline timeline editor
// ABOUTME: Builds the cobra command tree and handles profiling and debug logging flags

// Package main provides the entry point for cutline, a terminal editor for MLT timelines.
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"
)

const debugLogFile = "cutline-debug.log"

var (
	cpuprofile string
	memprofile string
	debugFlag  bool
	configFlag string

	stopCPUProfile = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "cutline",
	Short: "Terminal editor for MLT video timelines",
	Long: `cutline opens MLT XML projects as an editable multi-track timeline with undo/redo,
snapping and grouping, and keeps versioned backups of every save.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRun,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		stopCPUProfile()

		if memprofile != "" {
			writeMemoryProfile(memprofile)
		}
	},
}

var viewCmd = &cobra.Command{
	Use:   "view <project.mlt>",
	Short: "Edit a project in the interactive timeline editor",
	Long:  "Edit a project in the interactive timeline editor. A missing project is created with the configured empty tracks.",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

var infoCmd = &cobra.Command{
	Use:   "info <project.mlt|glob>...",
	Short: "Summarize one or more projects",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

var dumpCmd = &cobra.Command{
	Use:   "dump <project.mlt>",
	Short: "Print the timeline of a project as YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

var backupCmd = &cobra.Command{
	Use:   "backup <project.mlt>",
	Short: "Store a snapshot of a project in the backup database",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackup,
}

var backupsCmd = &cobra.Command{
	Use:   "backups <project.mlt>",
	Short: "List the stored snapshots of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackups,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Write a stored snapshot back to disk",
	Long:  "Write a stored snapshot back to disk. The id may be abbreviated to any unique prefix.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

var (
	outputFlag  string
	dryRunFlag  bool
	watchFlag   bool
	workersFlag int
	formatFlag  string
	labelFlag   string
	excludeFlag []string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "write cpu profile to file")
	rootCmd.PersistentFlags().StringVar(&memprofile, "memprofile", "", "write memory profile to file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging to "+debugLogFile)
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ./cutline.toml or ~/.config/cutline/config.toml)")

	viewCmd.Flags().StringVar(&outputFlag, "output", "", "write the edited project to this file (default: overwrite input)")
	viewCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "edit without writing changes")
	viewCmd.Flags().BoolVar(&watchFlag, "watch", true, "reload the project and config when they change on disk")

	infoCmd.Flags().IntVar(&workersFlag, "workers", 0, "projects loaded in parallel (default: number of CPUs)")
	infoCmd.Flags().StringSliceVar(&excludeFlag, "exclude", nil, "skip projects matching these glob patterns")

	dumpCmd.Flags().StringVar(&formatFlag, "format", "yaml", "output format: yaml or json")

	backupCmd.Flags().StringVar(&labelFlag, "label", "", "label stored with the snapshot")

	restoreCmd.Flags().StringVar(&outputFlag, "output", "", "write to this file (default: the project path of the snapshot)")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(restoreCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}

// setupRun applies the global flags before any command runs
func setupRun(_ *cobra.Command, _ []string) error {
	if debugFlag {
		if err := SetupDebugLog(debugLogFile); err != nil {
			return err
		}
	}

	if cpuprofile != "" {
		stopCPUProfile = setupCPUProfile(cpuprofile)
	}

	return nil
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
