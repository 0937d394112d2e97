package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/itish2003/studysense/logger"
)

// ImportFile is a note file found under an import root. Subject is the name
// of the top-level directory that contains it.
type ImportFile struct {
	Path    string
	Subject string
}

// ImportResult counts what a directory import did.
type ImportResult struct {
	Imported int
	Skipped  int
	Failed   map[string]error
}

// ImportService loads notes from a directory tree laid out as
// <root>/<subject>/**/<file>.
type ImportService struct {
	knowledge KnowledgeService
	includes  []string
	log       logger.Logger
	// settle is how long a watched file must stay unchanged before import.
	settle time.Duration
}

func NewImportService(knowledge KnowledgeService, includes []string, log logger.Logger) *ImportService {
	return &ImportService{
		knowledge: knowledge,
		includes:  includes,
		log:       log,
		settle:    500 * time.Millisecond,
	}
}

// Discover walks root and returns every supported file that sits inside a
// subject directory and matches an include pattern.
func (s *ImportService) Discover(root string) ([]ImportFile, error) {
	var files []ImportFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if file, ok := s.match(root, path); ok {
			files = append(files, file)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// match resolves path to an ImportFile when it is importable.
func (s *ImportService) match(root, path string) (ImportFile, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ImportFile{}, false
	}
	rel = filepath.ToSlash(rel)

	parts := strings.SplitN(rel, "/", 2)
	if len(parts) < 2 || !IsSupported(path) || hiddenDir(rel) {
		return ImportFile{}, false
	}
	// extensions are case-insensitive, so patterns are matched lowercased
	lowered := strings.ToLower(rel)
	for _, pattern := range s.includes {
		if ok, _ := doublestar.Match(pattern, lowered); ok {
			return ImportFile{Path: path, Subject: parts[0]}, true
		}
	}
	return ImportFile{}, false
}

// hiddenDir reports whether a slash-separated relative path lies inside a
// directory whose name starts with a dot.
func hiddenDir(rel string) bool {
	dirs := strings.Split(rel, "/")
	for _, d := range dirs[:len(dirs)-1] {
		if strings.HasPrefix(d, ".") {
			return true
		}
	}
	return false
}

// Import ingests one file unless a note with the same content hash already
// exists in its subject. It reports whether a note was written.
func (s *ImportService) Import(ctx context.Context, file ImportFile) (bool, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", file.Path, err)
	}

	exists, err := s.knowledge.ContainsFile(ctx, file.Subject, FileHash(data))
	if err != nil {
		return false, err
	}
	if exists {
		s.log.Debug("IMPORT", "file unchanged, skipping", map[string]interface{}{"path": file.Path})
		return false, nil
	}

	if _, err := s.knowledge.Ingest(ctx, file.Subject, data, filepath.Base(file.Path)); err != nil {
		return false, err
	}
	return true, nil
}

// ImportAll imports every discovered file. A failing file is recorded and
// does not stop the rest. onFile, when set, is called after each file.
func (s *ImportService) ImportAll(ctx context.Context, files []ImportFile, onFile func(ImportFile)) *ImportResult {
	result := &ImportResult{Failed: make(map[string]error)}
	for _, file := range files {
		imported, err := s.Import(ctx, file)
		switch {
		case err != nil:
			result.Failed[file.Path] = err
			s.log.Error("IMPORT", "failed to import file", map[string]interface{}{"path": file.Path, "error": err})
		case imported:
			result.Imported++
		default:
			result.Skipped++
		}
		if onFile != nil {
			onFile(file)
		}
	}
	return result
}

// Watch imports files as they are created or written under root until ctx is
// cancelled. Removing a file does not remove its note.
func (s *ImportService) Watch(ctx context.Context, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// fsnotify is not recursive; every directory is registered on its own.
	if _, err := s.watchTree(watcher, root, root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	s.log.Info("IMPORT", "watching directory", map[string]interface{}{"root": root})

	// Editors emit several events per save; a file is imported once its
	// events have been quiet for the settle period.
	pending := make(map[string]*time.Timer)
	ready := make(chan string)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if strings.HasPrefix(info.Name(), ".") {
					continue
				}
				// a directory moved in may already hold files
				files, err := s.watchTree(watcher, root, event.Name)
				if err != nil {
					s.log.Warn("IMPORT", "failed to watch new directory", map[string]interface{}{"path": event.Name, "error": err.Error()})
				}
				if len(files) > 0 {
					s.ImportAll(ctx, files, nil)
				}
				continue
			}
			if _, ok := s.match(root, event.Name); !ok {
				continue
			}
			name := event.Name
			if t, ok := pending[name]; ok {
				t.Reset(s.settle)
				continue
			}
			pending[name] = time.AfterFunc(s.settle, func() {
				select {
				case ready <- name:
				case <-ctx.Done():
				}
			})

		case name := <-ready:
			delete(pending, name)
			file, _ := s.match(root, name)
			if info, err := os.Stat(name); err != nil || info.Size() == 0 {
				continue
			}
			if _, err := s.Import(ctx, file); err != nil {
				s.log.Error("IMPORT", "failed to import changed file", map[string]interface{}{"path": name, "error": err})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Error("IMPORT", "watcher error", map[string]interface{}{"error": err})

		case <-ctx.Done():
			s.log.Info("IMPORT", "watcher stopped", nil)
			return nil
		}
	}
}

// watchTree registers dir and every non-hidden directory below it, and
// returns the importable files already present.
func (s *ImportService) watchTree(watcher *fsnotify.Watcher, root, dir string) ([]ImportFile, error) {
	var files []ImportFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		if file, ok := s.match(root, path); ok {
			files = append(files, file)
		}
		return nil
	})
	return files, err
}
