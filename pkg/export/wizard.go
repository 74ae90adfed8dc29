package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/peakscope/peakscope/pkg/config"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
)

// WizardConfig holds the options collected by the interactive export flow.
type WizardConfig struct {
	Format       string   `json:"format"` // "svg" or "png"
	OutputPath   string   `json:"output_path"`
	Title        string   `json:"title,omitempty"`
	Reads        []string `json:"reads,omitempty"` // empty means all
	WindowStart  int      `json:"window_start,omitempty"`
	WindowEnd    int      `json:"window_end,omitempty"`
	ShowLabels   bool     `json:"show_labels"`
	ShowVariants bool     `json:"show_variants"`
}

// Wizard collects snapshot export options interactively.
type Wizard struct {
	job    *model.Job
	config *WizardConfig
}

// NewWizard creates an export wizard for the given job.
func NewWizard(job *model.Job) *Wizard {
	return &Wizard{
		job: job,
		config: &WizardConfig{
			Format:       "svg",
			ShowLabels:   true,
			ShowVariants: true,
		},
	}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run executes the interactive flow and returns the snapshot options ready
// for SaveSnapshot.
func (w *Wizard) Run() (*SnapshotOptions, error) {
	if w.job == nil || len(w.job.Reads) == 0 {
		return nil, fmt.Errorf("no job loaded")
	}

	// Offer a previously saved configuration first.
	if saved, err := LoadWizardConfig(); err == nil && saved != nil && saved.OutputPath != "" {
		useSaved, err := w.offerSavedConfig(saved)
		if err != nil {
			return nil, err
		}
		if useSaved {
			w.config = saved
			return w.toOptions(), nil
		}
	}

	if err := w.collectReads(); err != nil {
		return nil, err
	}
	if err := w.collectWindow(); err != nil {
		return nil, err
	}
	if err := w.collectOutput(); err != nil {
		return nil, err
	}

	if err := SaveWizardConfig(w.config); err != nil {
		// Saved settings are a convenience only.
		fmt.Fprintf(os.Stderr, "warning: could not save export settings: %v\n", err)
	}

	return w.toOptions(), nil
}

// GetConfig returns the collected wizard configuration.
func (w *Wizard) GetConfig() *WizardConfig {
	return w.config
}

func (w *Wizard) offerSavedConfig(saved *WizardConfig) (bool, error) {
	fmt.Println("Found previous export configuration:")
	fmt.Printf("  Format: %s\n", saved.Format)
	fmt.Printf("  Output: %s\n", saved.OutputPath)
	if len(saved.Reads) > 0 {
		fmt.Printf("  Reads:  %s\n", strings.Join(saved.Reads, ", "))
	}
	fmt.Println("")

	useSaved := true
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Export again with these settings?").
				Description("Select No to configure a new export").
				Value(&useSaved).
				Affirmative("Yes, reuse").
				Negative("No, reconfigure"),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}
	return useSaved, nil
}

func (w *Wizard) collectReads() error {
	options := make([]huh.Option[string], 0, len(w.job.Reads))
	selected := make([]string, 0, len(w.job.Reads))
	for _, read := range w.job.Reads {
		label := read.Name
		if read.Reverse {
			label += " (reverse)"
		}
		options = append(options, huh.NewOption(label, read.Name))
		selected = append(selected, read.Name)
	}

	form := newForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Reads to include").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if len(selected) == len(w.job.Reads) {
		w.config.Reads = nil // all reads: keep the saved config read-agnostic
	} else {
		w.config.Reads = selected
	}
	return nil
}

// positionValidator bounds a typed reference position entered as text.
func positionValidator(maxPos coord.RefPos) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("not a number")
		}
		if n < 1 || n > int(maxPos) {
			return fmt.Errorf("position must be between 1 and %d", int(maxPos))
		}
		return nil
	}
}

func (w *Wizard) collectWindow() error {
	maxPos := w.job.MaxRefPos()
	start := "1"
	end := strconv.Itoa(int(maxPos))
	validatePos := positionValidator(maxPos)

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Window start (reference position)").
				Value(&start).
				Validate(validatePos),
			huh.NewInput().
				Title("Window end").
				Value(&end).
				Validate(validatePos),
			huh.NewConfirm().
				Title("Draw base labels?").
				Value(&w.config.ShowLabels),
			huh.NewConfirm().
				Title("Mark called variants?").
				Value(&w.config.ShowVariants),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	w.config.WindowStart, _ = strconv.Atoi(strings.TrimSpace(start))
	w.config.WindowEnd, _ = strconv.Atoi(strings.TrimSpace(end))
	return nil
}

func (w *Wizard) collectOutput() error {
	defaultPath := defaultSnapshotPath(w.job)
	path := defaultPath

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output format").
				Options(
					huh.NewOption("SVG (vector, small files)", "svg"),
					huh.NewOption("PNG (raster)", "png"),
				).
				Value(&w.config.Format),
			huh.NewInput().
				Title("Output path").
				Value(&path).
				Placeholder(defaultPath),
			huh.NewInput().
				Title("Title (optional)").
				Value(&w.config.Title),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if path == "" {
		path = defaultPath
	}
	if filepath.Ext(path) == "" {
		path += "." + w.config.Format
	}
	w.config.OutputPath = path
	return nil
}

func (w *Wizard) toOptions() *SnapshotOptions {
	opts := &SnapshotOptions{
		Path:         w.config.OutputPath,
		Format:       w.config.Format,
		Title:        w.config.Title,
		Job:          w.job,
		Reads:        w.config.Reads,
		ShowLabels:   w.config.ShowLabels,
		ShowVariants: w.config.ShowVariants,
	}
	if w.config.WindowStart > 0 && w.config.WindowEnd > 0 {
		opts.Window = coord.RefRange{
			Start: coord.RefPos(w.config.WindowStart),
			End:   coord.RefPos(w.config.WindowEnd),
		}
	}
	return opts
}

func defaultSnapshotPath(job *model.Job) string {
	name := strings.TrimSpace(job.Reference)
	if name == "" {
		name = "snapshot"
	}
	return "./" + name + ".svg"
}

// WizardConfigPath returns the path to the saved export settings file.
func WizardConfigPath() string {
	dir := config.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "export-wizard.json")
}

// LoadWizardConfig loads previously saved export settings.
func LoadWizardConfig() (*WizardConfig, error) {
	path := WizardConfigPath()
	if path == "" {
		return nil, fmt.Errorf("could not determine config path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No saved config
		}
		return nil, err
	}

	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveWizardConfig saves export settings for future runs.
func SaveWizardConfig(cfg *WizardConfig) error {
	path := WizardConfigPath()
	if path == "" {
		return fmt.Errorf("could not determine config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
