package www

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/icodeforyou/elpris-go/report"
	"github.com/icodeforyou/elpris-go/types/maybe"
)

//go:embed templates
var templatesDirEmbed embed.FS

const templatePattern = "*.html"

type TemplateManager struct {
	logger    *slog.Logger
	fsys      fs.FS
	mutex     sync.RWMutex
	templates *template.Template
}

var funcMap = template.FuncMap{
	"Decimal": report.FormatDecimal,
	"MaybeDecimal": func(m maybe.Maybe[float64]) string {
		if v, ok := m.Get(); ok {
			return report.FormatDecimal(v)
		}
		return "-"
	},
}

// NewTemplateManager parses the embedded templates, or the ones found in
// extDir/templates when extDir is set. External templates are watched and
// reparsed on every write.
func NewTemplateManager(logger *slog.Logger, extDir *string) (*TemplateManager, error) {
	tm := &TemplateManager{logger: logger}

	external := extDir != nil && *extDir != ""
	dir := ""
	if external {
		dir = filepath.Join(*extDir, "templates")
		tm.fsys = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(templatesDirEmbed, "templates")
		if err != nil {
			return nil, err
		}
		tm.fsys = sub
	}

	if err := tm.parse(); err != nil {
		return nil, err
	}

	if external {
		if err := tm.watch(dir); err != nil {
			return nil, err
		}
	}

	return tm, nil
}

func (tm *TemplateManager) parse() error {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(tm.fsys, templatePattern)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	tm.mutex.Lock()
	tm.templates = tmpl
	tm.mutex.Unlock()
	return nil
}

func (tm *TemplateManager) watch(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create template watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) {
					continue
				}
				// A half written file fails to parse; the previous set stays in use.
				if err := tm.parse(); err != nil {
					tm.logger.Error("template reload failed", slog.Any("error", err))
					continue
				}
				tm.logger.Debug("templates reloaded", slog.String("file", event.Name))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				tm.logger.Debug("template watcher error", slog.Any("error", err))
			}
		}
	}()

	return nil
}

func (tm *TemplateManager) Execute(name string, data any) (bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := tm.ExecuteToWriter(name, data, &buf); err != nil {
		return bytes.Buffer{}, err
	}
	return buf, nil
}

func (tm *TemplateManager) ExecuteToWriter(name string, data any, w io.Writer) error {
	tm.mutex.RLock()
	tmpl := tm.templates
	tm.mutex.RUnlock()

	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	return nil
}
