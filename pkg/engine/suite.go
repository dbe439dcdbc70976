package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/mattn/go-zglob"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/reporters"
)

// Suite is one suite file: its name and its parsed content.
type Suite struct {
	Name    string
	Content SuiteContent
}

// SuiteContent is the trigger-config schema of suite files.
type SuiteContent struct {
	Tests []api.TriggerConfig `json:"tests"`
}

// LoadSuites expands the glob pattern and parses every matching file. An
// empty match set is reported but not fatal; an unreadable or malformed file
// is.
func LoadSuites(pattern string, rep *reporters.MultiReporter) ([]Suite, error) {
	files, err := zglob.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to expand suite glob %q: %w", pattern, err)
	}
	if len(files) == 0 {
		rep.Log(fmt.Sprintf("no suite files found matching %q", pattern))
		return nil, nil
	}
	sort.Strings(files)

	suites := make([]Suite, 0, len(files))
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read suite file %s: %w", f, err)
		}

		var content SuiteContent
		if err := json.Unmarshal(raw, &content); err != nil {
			return nil, fmt.Errorf("failed to parse suite file %s: %w", f, err)
		}
		for i := range content.Tests {
			content.Tests[i].Suite = f
		}
		suites = append(suites, Suite{Name: f, Content: content})
	}
	return suites, nil
}
