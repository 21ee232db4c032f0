package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/mwantia/toolvault/pkg/db/models"
	"github.com/mwantia/toolvault/pkg/log"
)

// IntakeActor is recorded as the creator of revisions imported by the watcher.
const IntakeActor = "intake"

// docTypeExtensions lists the file extensions accepted per document type,
// matching what operators import by hand.
var docTypeExtensions = map[models.DocType][]string{
	models.DocTypeProgram: {".txt", ".nc", ".tap", ".cnc"},
	models.DocTypePrint:   {".pdf", ".png", ".jpg", ".jpeg"},
}

// AllowedExtension reports whether ext is a recognized extension for the
// document type. Matching is case-insensitive.
func AllowedExtension(docType models.DocType, ext string) bool {
	ext = strings.ToLower(ext)
	for _, candidate := range docTypeExtensions[docType] {
		if ext == candidate {
			return true
		}
	}
	return false
}

// IntakeRoute maps one watched directory onto an import target.
type IntakeRoute struct {
	Path    string
	Line    string
	Machine string
	DocType models.DocType
}

// IntakeWatcher feeds files dropped into intake directories through the
// import pipeline.
type IntakeWatcher struct {
	vault  *Vault
	log    log.LoggerService
	routes []IntakeRoute
}

// NewIntakeWatcher creates a watcher over the given intake routes.
func NewIntakeWatcher(v *Vault, logger log.LoggerService, routes []IntakeRoute) *IntakeWatcher {
	return &IntakeWatcher{
		vault:  v,
		log:    logger.Named("intake"),
		routes: routes,
	}
}

// Watch blocks until the context is done, importing every file created in a
// watched directory whose extension matches the route's document type.
func (w *IntakeWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer watcher.Close()

	byDir := make(map[string]IntakeRoute, len(w.routes))
	for _, route := range w.routes {
		if !route.DocType.Valid() {
			return fmt.Errorf("intake route %s has unknown document type %q", route.Path, route.DocType)
		}
		if err := os.MkdirAll(route.Path, 0755); err != nil {
			return fmt.Errorf("failed to create intake directory %s: %w", route.Path, err)
		}
		if err := watcher.Add(route.Path); err != nil {
			return fmt.Errorf("failed to watch intake directory %s: %w", route.Path, err)
		}

		byDir[filepath.Clean(route.Path)] = route
		w.log.Info("Watching %s for %s documents (%s/%s)", route.Path, route.DocType, route.Line, route.Machine)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}

			route, ok := byDir[filepath.Dir(event.Name)]
			if !ok {
				continue
			}
			w.handle(ctx, route, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("Watcher error: %v", err)
		}
	}
}

func (w *IntakeWatcher) handle(ctx context.Context, route IntakeRoute, sourcePath string) {
	ext := filepath.Ext(sourcePath)
	if !AllowedExtension(route.DocType, ext) {
		w.log.Debug("Ignoring %s: extension %q not valid for %s documents", sourcePath, ext, route.DocType)
		return
	}

	info, err := os.Stat(sourcePath)
	if err != nil || info.IsDir() {
		return
	}

	rev, err := w.vault.ImportFile(ctx, sourcePath, route.Line, route.Machine, route.DocType, IntakeActor)
	if err != nil {
		w.log.Error("Intake import of %s failed: %v", sourcePath, err)
		return
	}

	w.log.Info("Imported %s as revision %d of document %d", sourcePath, rev.RevisionNumber, rev.DocumentID)
}
