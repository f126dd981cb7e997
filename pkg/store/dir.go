package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
	"github.com/alsaadxx12/roda10-sub000/pkg/statement"
)

var extensions = map[statement.Format]string{
	statement.FormatHTML:     ".html",
	statement.FormatMarkdown: ".md",
}

var frontMatterDelim = []byte("---\n")

// frontMatter is the optional YAML header of a template file.
type frontMatter struct {
	Kind statement.Kind `yaml:"kind"`
}

// DirStore keeps one file per template in a directory, named <name>.html or
// <name>.md. A file may start with a YAML front matter block declaring its
// kind; files without one are statement templates.
type DirStore struct {
	dir    string
	logger *logging.Logger

	mu       sync.RWMutex
	cache    map[string]Template
	gen      uint64
	watching bool
	watcher  *fsnotify.Watcher
	changes  chan string
}

// NewDirStore opens dir, creating it when it does not exist.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create template dir: %w", err)
	}
	return &DirStore{
		dir:     dir,
		logger:  logging.L().Named("store").Named("dir"),
		cache:   make(map[string]Template),
		changes: make(chan string, 16),
	}, nil
}

// Dir returns the directory backing the store.
func (d *DirStore) Dir() string {
	return d.dir
}

// Changes publishes the name of every template changed on disk while the
// store is watching. Notifications are dropped when nobody reads them.
func (d *DirStore) Changes() <-chan string {
	return d.changes
}

// Watch starts watching the directory for external edits until ctx is done
// or Close is called. While watching, reads are served from memory.
func (d *DirStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store: create watcher: %w", err)
	}
	if err := watcher.Add(d.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("store: watch %s: %w", d.dir, err)
	}

	d.mu.Lock()
	if d.watching {
		d.mu.Unlock()
		watcher.Close()
		return errors.New("store: already watching")
	}
	d.watching = true
	d.watcher = watcher
	d.mu.Unlock()

	d.logger.Info("watching template directory", zap.String("dir", d.dir))

	go func() {
		defer d.stopWatching()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				d.handleEvent(event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.logger.Warn("template watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (d *DirStore) handleEvent(event fsnotify.Event) {
	name, _, ok := splitFileName(filepath.Base(event.Name))
	if !ok {
		return
	}

	d.invalidate(name)

	d.logger.Debug("template changed on disk",
		zap.String("name", name),
		zap.String("op", event.Op.String()),
	)

	select {
	case d.changes <- name:
	default:
	}
}

func (d *DirStore) stopWatching() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.watcher != nil {
		d.watcher.Close()
		d.watcher = nil
	}
	d.watching = false
	d.cache = make(map[string]Template)
}

// Close stops the watcher, if any.
func (d *DirStore) Close() error {
	d.mu.RLock()
	w := d.watcher
	d.mu.RUnlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

// Get reads the template stored under name.
func (d *DirStore) Get(ctx context.Context, name string) (Template, error) {
	if err := ValidateName(name); err != nil {
		return Template{}, err
	}
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}

	d.mu.RLock()
	tmpl, ok := d.cache[name]
	gen := d.gen
	d.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	for _, format := range []statement.Format{statement.FormatHTML, statement.FormatMarkdown} {
		tmpl, err := d.readFile(name, format)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Template{}, err
		}

		// A change seen while reading leaves the entry uncached.
		d.mu.Lock()
		if d.watching && d.gen == gen {
			d.cache[name] = tmpl
		}
		d.mu.Unlock()
		return tmpl, nil
	}
	return Template{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Put writes tmpl to <name>.<ext>, replacing a file of the other format.
func (d *DirStore) Put(ctx context.Context, tmpl Template) error {
	if err := tmpl.normalize(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	header, err := yaml.Marshal(frontMatter{Kind: tmpl.Kind})
	if err != nil {
		return fmt.Errorf("store: encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(frontMatterDelim)
	buf.Write(header)
	buf.Write(frontMatterDelim)
	buf.WriteString(tmpl.Source)

	if err := d.writeFile(d.path(tmpl.Name, tmpl.Format), buf.Bytes()); err != nil {
		return err
	}
	for format := range extensions {
		if format == tmpl.Format {
			continue
		}
		if err := os.Remove(d.path(tmpl.Name, format)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("store: remove stale template: %w", err)
		}
	}

	d.invalidate(tmpl.Name)
	return nil
}

// Delete removes every file stored under name.
func (d *DirStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	removed := false
	for format := range extensions {
		err := os.Remove(d.path(name, format))
		switch {
		case err == nil:
			removed = true
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("store: delete template: %w", err)
		}
	}
	d.invalidate(name)

	if !removed {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// List reads every template file in the directory, sorted by name.
func (d *DirStore) List(ctx context.Context) ([]Template, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("store: read template dir: %w", err)
	}

	seen := make(map[string]bool)
	var out []Template
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		name, format, ok := splitFileName(entry.Name())
		if !ok || seen[name] {
			continue
		}
		tmpl, err := d.readFile(name, format)
		if err != nil {
			return nil, err
		}
		seen[name] = true
		out = append(out, tmpl)
	}

	sortByName(out)
	return out, nil
}

func (d *DirStore) invalidate(name string) {
	d.mu.Lock()
	d.gen++
	delete(d.cache, name)
	d.mu.Unlock()
}

func (d *DirStore) path(name string, format statement.Format) string {
	return filepath.Join(d.dir, name+extensions[format])
}

func (d *DirStore) readFile(name string, format statement.Format) (Template, error) {
	path := d.path(name, format)
	content, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Template{}, err
	}

	meta, source, err := splitFrontMatter(content)
	if err != nil {
		return Template{}, fmt.Errorf("store: %s: %w", filepath.Base(path), err)
	}
	if meta.Kind == "" {
		meta.Kind = statement.KindStatement
	}

	return Template{
		Name:      name,
		Kind:      meta.Kind,
		Format:    format,
		Source:    source,
		UpdatedAt: info.ModTime().UTC(),
	}, nil
}

// writeFile replaces path atomically through a temporary file in the same
// directory.
func (d *DirStore) writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(d.dir, ".template-*.tmp")
	if err != nil {
		return fmt.Errorf("store: write template: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: write template: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: write template: %w", err)
	}
	return nil
}

// splitFileName maps a file name to a template name and format.
func splitFileName(file string) (string, statement.Format, bool) {
	ext := filepath.Ext(file)
	for format, e := range extensions {
		if ext != e {
			continue
		}
		name := strings.TrimSuffix(file, ext)
		if ValidateName(name) != nil {
			return "", "", false
		}
		return name, format, true
	}
	return "", "", false
}

func splitFrontMatter(content []byte) (frontMatter, string, error) {
	var meta frontMatter

	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(content, frontMatterDelim) {
		return meta, string(content), nil
	}

	rest := content[len(frontMatterDelim):]
	end := bytes.Index(rest, frontMatterDelim)
	if end < 0 || (end > 0 && rest[end-1] != '\n') {
		return meta, string(content), nil
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, "", fmt.Errorf("invalid front matter: %w", err)
	}
	if _, ok := statement.ParseKind(string(meta.Kind)); meta.Kind != "" && !ok {
		return meta, "", fmt.Errorf("unknown template kind %q", meta.Kind)
	}
	return meta, string(rest[end+len(frontMatterDelim):]), nil
}
