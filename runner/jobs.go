package runner

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hairizuanbinnoorazman/uiscript/datatable"
)

// ScriptExt is the extension of script files.
const ScriptExt = ".sui"

// ErrNoScripts is returned when the given paths hold no scripts.
var ErrNoScripts = errors.New("no scripts found")

// LoadJobs reads scripts from paths. A directory contributes its *.sui
// files, without descending. When dataTable is set every script is
// expanded into one job per table row.
func LoadJobs(paths []string, dataTable string) ([]Job, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*"+ScriptExt))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, ErrNoScripts
	}

	var table []byte
	if dataTable != "" {
		b, err := os.ReadFile(dataTable)
		if err != nil {
			return nil, fmt.Errorf("could not read data table: %w", err)
		}
		table = b
	}

	seen := make(map[string]int)
	var jobs []Job
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}

		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		seen[name]++
		if seen[name] > 1 {
			name = fmt.Sprintf("%s-%d", name, seen[name])
		}

		if table == nil {
			jobs = append(jobs, Job{Name: name, Path: f, Source: string(src)})
			continue
		}

		cases, err := datatable.Expand(string(src), bytes.NewReader(table))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dataTable, err)
		}
		for _, c := range cases {
			jobs = append(jobs, Job{
				Name:   name + "-" + c.Name,
				Path:   f,
				Source: c.Script,
				Values: c.Values,
			})
		}
	}
	return jobs, nil
}

// WithStartURL returns jobs with StartURL set on each.
func WithStartURL(jobs []Job, url string) []Job {
	out := make([]Job, len(jobs))
	for i, j := range jobs {
		j.StartURL = url
		out[i] = j
	}
	return out
}
