// ABOUTME: Command implementations for the non-interactive and interactive modes
// ABOUTME: Runs the editor, summarizes and dumps projects and manages stored snapshots

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cutline/config"
	"cutline/melt"
	"cutline/pool"
	"cutline/store"
	"cutline/tui"
)

// isTTY checks if the given file is a terminal
func isTTY(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// runView opens the interactive editor
func runView(_ *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}

	backups, err := openBackups(cfg)
	if err != nil {
		return err
	}
	if backups != nil {
		defer func() { _ = backups.Close() }()
	}

	path := args[0]
	projects := &projectIO{cfg: cfg, backups: backups}

	return tui.Run(tui.Options{
		ProjectPath: path,
		OutputPath:  outputFlag,
		DryRun:      dryRunFlag,
		Watch:       watchFlag,
	}, tui.Dependencies{
		Config:     config.NewSharedConfig(cfg),
		Loader:     projects,
		Writer:     projects,
		Logger:     debugLogger{},
		ConfigPath: cfgPath,
	})
}

// runInfo loads every project in parallel and prints one summary line each
// expandProjects resolves glob patterns ("**" included) into project paths.
// Plain arguments are kept even when they do not exist so the load error is
// reported for them. Paths matching any exclude pattern are dropped.
func expandProjects(args, exclude []string) ([]string, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	var paths []string
	seen := make(map[string]bool)

	add := func(path string) {
		if seen[path] {
			return
		}

		for _, pattern := range exclude {
			if ok, _ := doublestar.PathMatch(pattern, path); ok {
				return
			}
		}

		seen[path] = true
		paths = append(paths, path)
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no projects match %q", arg)
		}

		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}

	if len(paths) == 0 {
		return nil, errors.New("every project was excluded")
	}

	return paths, nil
}

func runInfo(_ *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	paths, err := expandProjects(args, excludeFlag)
	if err != nil {
		return err
	}

	progress := newProgressTracker(os.Stderr, len(paths))
	defer progress.close()

	summaries := pool.Map(workersFlag, paths, func(path string) projectSummary {
		defer progress.done(path)
		return summarizeProject(path, cfg)
	})

	progress.close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "Project\tTracks\tClips\tComp\tGroups\tSkipped\tDuration"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	failed := 0

	for _, s := range summaries {
		if s.Err != nil {
			failed++
			if _, err := fmt.Fprintf(w, "%s\terror: %v\n", truncate(s.Path, 40), s.Err); err != nil {
				log.Printf("Warning: failed to write %s: %v", s.Path, err)
			}

			continue
		}

		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			truncate(s.Path, 40),
			s.Stats.Tracks,
			s.Stats.Clips,
			s.Stats.Compositions,
			s.Stats.Groups,
			s.Stats.Skipped,
			melt.Timecode(s.Duration, float64(cfg.FPS)),
		); err != nil {
			log.Printf("Warning: failed to write %s: %v", s.Path, err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d projects failed to load", failed, len(summaries))
	}

	return nil
}

// runDump prints the timeline of a project
func runDump(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	project, _, err := loadProject(args[0], cfg)
	if err != nil {
		return err
	}

	dump := dumpTimeline(project, cfg.FPS)

	var out []byte
	switch formatFlag {
	case "yaml":
		out, err = yaml.Marshal(dump)
	case "json":
		out, err = json.MarshalIndent(dump, "", "  ")
		out = append(out, '\n')
	default:
		return fmt.Errorf("unknown format %q, want yaml or json", formatFlag)
	}

	if err != nil {
		return fmt.Errorf("failed to encode timeline: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(out)

	return err
}

// runBackup stores the project file as it is on disk
func runBackup(_ *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read project: %w", err)
	}

	if _, err := melt.Read(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%s is not an MLT project: %w", path, err)
	}

	backups, err := openBackups(cfg)
	if err != nil {
		return err
	}
	if backups == nil {
		return errors.New("backups are disabled (backup_limit is 0)")
	}
	defer func() { _ = backups.Close() }()

	b, saved, err := backups.Save(store.ProjectKey(path), labelFlag, data)
	if err != nil {
		return err
	}

	if !saved {
		fmt.Printf("Unchanged since snapshot %s\n", shortID(b.ID))
		return nil
	}

	fmt.Printf("Stored snapshot %s of %s (%s)\n", shortID(b.ID), path, humanize.Bytes(uint64(b.Size)))

	return nil
}

// runBackups lists the snapshots of a project, newest first
func runBackups(_ *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	backups, err := openBackups(cfg)
	if err != nil {
		return err
	}
	if backups == nil {
		return errors.New("backups are disabled (backup_limit is 0)")
	}
	defer func() { _ = backups.Close() }()

	list, err := backups.List(store.ProjectKey(args[0]))
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Printf("No snapshots of %s\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tCreated\tSize\tChecksum\tLabel"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	for _, b := range list {
		if _, err := fmt.Fprintln(w, formatBackupRow(b)); err != nil {
			log.Printf("Warning: failed to write snapshot %s: %v", b.ID, err)
		}
	}

	return w.Flush()
}

// runRestore writes a snapshot back to disk
func runRestore(_ *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	backups, err := openBackups(cfg)
	if err != nil {
		return err
	}
	if backups == nil {
		return errors.New("backups are disabled (backup_limit is 0)")
	}
	defer func() { _ = backups.Close() }()

	b, err := backups.Load(args[0])
	if err != nil {
		return err
	}

	path := b.Project
	if outputFlag != "" {
		path = outputFlag
	}

	if err := writeWithBackup(path, b.Content); err != nil {
		return err
	}

	fmt.Printf("Restored snapshot %s (%s) to %s\n", shortID(b.ID), humanize.Time(b.CreatedAt), path)

	return nil
}

// formatBackupRow renders one tab separated line of the snapshot list
func formatBackupRow(b store.Backup) string {
	sum := hex.EncodeToString(b.Checksum)
	if len(sum) > 12 {
		sum = sum[:12]
	}

	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s",
		shortID(b.ID),
		humanize.Time(b.CreatedAt),
		humanize.Bytes(uint64(b.Size)),
		sum,
		truncate(b.Label, 30),
	)
}

// shortID is the unique-enough prefix shown for snapshot ids
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
