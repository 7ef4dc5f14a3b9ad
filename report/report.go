// Package report turns finished interpreter runs into artifacts: numbered
// screenshots, a JSON document and a standalone HTML page, all written
// through a blob store.
package report

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/uiscript/interpreter"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/hairizuanbinnoorazman/uiscript/storage"
	"github.com/hairizuanbinnoorazman/uiscript/testrun"
)

const (
	jsonFile = "report.json"
	htmlFile = "report.html"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("report.html.tmpl").
	Funcs(template.FuncMap{"base": path.Base}).
	ParseFS(templateFS, "templates/report.html.tmpl"))

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName turns a run name into a single path segment.
func SafeName(name string) string {
	s := strings.Trim(unsafeName.ReplaceAllString(name, "_"), "._")
	if s == "" {
		return "run"
	}
	return s
}

// Statement is one executed statement as written to report.json.
type Statement struct {
	Text        string   `json:"text"`
	Error       string   `json:"error,omitempty"`
	Skipped     bool     `json:"skipped,omitempty"`
	Screenshots []string `json:"screenshots,omitempty"`
}

// Document is the serialised form of a run.
type Document struct {
	Name             string         `json:"name"`
	Status           testrun.Status `json:"status"`
	StartedAt        time.Time      `json:"started_at"`
	FinishedAt       time.Time      `json:"finished_at"`
	DurationMS       int64          `json:"duration_ms"`
	ExitedEarly      bool           `json:"exited_early"`
	OutstandingError bool           `json:"outstanding_error"`
	TerminalError    string         `json:"terminal_error,omitempty"`
	ErrorCount       int            `json:"error_count"`
	NumScreenshots   int            `json:"num_screenshots"`
	Statements       []Statement    `json:"statements"`
}

// Manifest lists the artifacts written for one run.
type Manifest struct {
	Name        string
	Dir         string
	Screenshots []string
	JSON        string
	HTML        string
	Status      testrun.Status
	// Sizes maps each artifact path to its length in bytes.
	Sizes map[string]int64
}

// Paths returns every artifact path, screenshots first.
func (m *Manifest) Paths() []string {
	out := append([]string(nil), m.Screenshots...)
	return append(out, m.JSON, m.HTML)
}

// Renderer writes reports to a blob store.
type Renderer struct {
	store  storage.BlobStorage
	logger logger.Logger
}

// NewRenderer creates a renderer that writes into store.
func NewRenderer(store storage.BlobStorage, log logger.Logger) *Renderer {
	return &Renderer{store: store, logger: log}
}

// Render writes every artifact of rep under a directory named after the
// run. Artifacts left by an earlier run with the same name are removed.
func (r *Renderer) Render(ctx context.Context, rep *interpreter.Report) (*Manifest, error) {
	name := SafeName(rep.Name)
	m := &Manifest{
		Name:   name,
		Dir:    name,
		JSON:   path.Join(name, jsonFile),
		HTML:   path.Join(name, htmlFile),
		Status: testrun.StatusForReport(rep.ExitedEarly, rep.OutstandingError, rep.ErrorCount()),
		Sizes:  make(map[string]int64),
	}

	if err := r.clean(ctx, name); err != nil {
		return nil, err
	}

	doc := Document{
		Name:             rep.Name,
		Status:           m.Status,
		StartedAt:        rep.StartedAt,
		FinishedAt:       rep.FinishedAt,
		DurationMS:       rep.Duration().Milliseconds(),
		ExitedEarly:      rep.ExitedEarly,
		OutstandingError: rep.OutstandingError,
		TerminalError:    rep.TerminalError,
		ErrorCount:       rep.ErrorCount(),
		Statements:       make([]Statement, 0, len(rep.Statements)),
	}

	n := 0
	for _, s := range rep.Statements {
		st := Statement{Text: s.Text, Error: s.Error, Skipped: s.Skipped}
		for _, img := range s.Screenshots {
			n++
			p := path.Join(name, fmt.Sprintf("%s_screenshot_%d.png", name, n))
			if err := r.put(ctx, m, p, img); err != nil {
				return nil, err
			}
			m.Screenshots = append(m.Screenshots, p)
			st.Screenshots = append(st.Screenshots, p)
		}
		doc.Statements = append(doc.Statements, st)
	}
	doc.NumScreenshots = n

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := r.put(ctx, m, m.JSON, body); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	if err := pageTemplate.Execute(&page, doc); err != nil {
		return nil, fmt.Errorf("failed to render report page: %w", err)
	}
	if err := r.put(ctx, m, m.HTML, page.Bytes()); err != nil {
		return nil, err
	}

	r.logger.Info(ctx, "report written", map[string]interface{}{
		"report":      m.HTML,
		"screenshots": len(m.Screenshots),
		"status":      m.Status,
	})
	return m, nil
}

func (r *Renderer) put(ctx context.Context, m *Manifest, p string, data []byte) error {
	if err := storage.Put(ctx, r.store, p, data); err != nil {
		return fmt.Errorf("failed to store %s: %w", p, err)
	}
	m.Sizes[p] = int64(len(data))
	return nil
}

func (r *Renderer) clean(ctx context.Context, dir string) error {
	stale, err := r.store.List(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to list previous artifacts: %w", err)
	}
	for _, p := range stale {
		if err := r.store.Delete(ctx, p); err != nil {
			return fmt.Errorf("failed to remove previous artifact %s: %w", p, err)
		}
	}
	if len(stale) > 0 {
		r.logger.Debug(ctx, "removed previous artifacts", map[string]interface{}{
			"dir":   dir,
			"count": len(stale),
		})
	}
	return nil
}

// Load reads a report.json previously written for name.
func Load(ctx context.Context, store storage.BlobStorage, name string) (*Document, error) {
	rc, err := store.Download(ctx, path.Join(SafeName(name), jsonFile))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var doc Document
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &doc, nil
}
