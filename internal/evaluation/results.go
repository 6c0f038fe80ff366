package evaluation

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanha-creative/autonamer/internal/models"
)

// RunConfig records the settings an evaluation ran with.
type RunConfig struct {
	Folder           string  `yaml:"folder"`
	Labels           string  `yaml:"labels"`
	HashThreshold    float64 `yaml:"hashthreshold"`
	OverlapThreshold float64 `yaml:"overlapthreshold"`
	OCRProvider      string  `yaml:"ocrprovider"`
	Timestamp        string  `yaml:"timestamp"`
}

// Run is the outcome for one threshold.
type Run struct {
	HashThreshold float64    `yaml:"hashthreshold"`
	Metrics       Metrics    `yaml:"metrics"`
	Groups        [][]string `yaml:"groups"`
	Ungrouped     []string   `yaml:"ungrouped,omitempty"`
}

// Report is the saved evaluation, one run per threshold tried.
type Report struct {
	Config RunConfig `yaml:"config"`
	Runs   []Run     `yaml:"runs"`
}

// NewRun scores grouped against labels.
func NewRun(threshold float64, labels *Labels, grouped *models.GroupedAssets) Run {
	groups, ungrouped := Predicted(grouped)
	return Run{
		HashThreshold: threshold,
		Metrics:       Compare(labels, grouped),
		Groups:        groups,
		Ungrouped:     ungrouped,
	}
}

// Best returns the run with the highest F1, earliest on ties.
func (r *Report) Best() (Run, bool) {
	if len(r.Runs) == 0 {
		return Run{}, false
	}
	best := r.Runs[0]
	for _, run := range r.Runs[1:] {
		if run.Metrics.F1 > best.Metrics.F1 {
			best = run
		}
	}
	return best, true
}

// SaveYAML writes the report to dir and returns the file path.
func SaveYAML(report *Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if report.Config.Timestamp == "" {
		report.Config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	filename := filepath.Join(dir, fmt.Sprintf("grouping-%s.yaml", report.Config.Timestamp))

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return filename, nil
}

// LoadReport reads a saved report.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}
