package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/peakscope/peakscope/internal/datasource"
	"github.com/peakscope/peakscope/pkg/config"
	"github.com/peakscope/peakscope/pkg/export"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/ui"
	"github.com/peakscope/peakscope/pkg/version"
	"github.com/peakscope/peakscope/pkg/watcher"
)

func main() {
	jobFlag := flag.String("job", "", "Job source: a results directory, a job.json or a results.db")
	exportFlag := flag.Bool("export", false, "Run the interactive snapshot export wizard instead of the viewer")
	reportFlag := flag.String("report", "", "Write a markdown variant report to the given path and exit")
	noWatch := flag.Bool("no-watch", false, "Disable auto-reload when the job source changes")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: pscope [options] [job]")
		fmt.Println("\nA TUI viewer for Sanger chromatogram analysis results.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("pscope %s\n", version.Version)
		os.Exit(0)
	}

	appCfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue without config
		appCfg = config.DefaultConfig()
	}

	jobPath := resolveJobPath(*jobFlag, flag.Args(), appCfg)

	warnings := 0
	job, err := ui.LoadJobFromPath(jobPath, func(msg string) {
		warnings++
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading job: %v\n", err)
		fmt.Fprintln(os.Stderr, "Point pscope at a results directory, a job.json or a results.db.")
		os.Exit(1)
	}
	if len(job.Reads) == 0 {
		fmt.Println("The job contains no usable reads.")
		os.Exit(0)
	}

	if *reportFlag != "" {
		if err := export.SaveMarkdown(job, "", *reportFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *reportFlag)
		os.Exit(0)
	}

	if *exportFlag {
		runExportWizard(job)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "pscope needs a terminal; use --export or --report for non-interactive output.")
		os.Exit(1)
	}

	var w *watcher.Watcher
	if appCfg.WatchEnabled() && !*noWatch {
		if sourcePath, err := resolveSourcePath(jobPath); err == nil {
			w, err = watcher.New(sourcePath)
			if err == nil {
				if err := w.Start(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: watch disabled: %v\n", err)
					w = nil
				}
			}
		}
	}
	if w != nil {
		defer w.Stop()
	}

	m := ui.NewModel(job, jobPath, appCfg, w)
	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running viewer: %v\n", err)
		os.Exit(1)
	}
}

// resolveJobPath picks the job source: flag, positional argument, a
// configured job by name, then the working directory.
func resolveJobPath(flagValue string, args []string, cfg config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if len(args) > 0 {
		arg := args[0]
		if entry := cfg.FindJob(arg); entry != nil {
			return entry.ResolvedPath()
		}
		return arg
	}
	return "."
}

// resolveSourcePath returns the concrete file the watcher should observe.
func resolveSourcePath(jobPath string) (string, error) {
	info, err := os.Stat(jobPath)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return jobPath, nil
	}
	src, err := datasource.Select(jobPath)
	if err != nil {
		return "", err
	}
	return src.Path, nil
}

func runExportWizard(job *model.Job) {
	opts, err := export.NewWizard(job).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export cancelled: %v\n", err)
		os.Exit(1)
	}
	if err := export.SaveSnapshot(*opts); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %s\n", opts.Path)
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set PSCOPE_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("PSCOPE_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
