package vault

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mwantia/toolvault/pkg/db/models"
)

// revisionTimeFormat is the timestamp embedded in stored filenames. The
// revision number, not the timestamp, is what keeps paths unique.
const revisionTimeFormat = "20060102150405"

var folderReplacer = strings.NewReplacer("/", "_", "\\", "_", " ", "_")

// safeFolderName folds path separators and spaces into underscores so a
// free-form value can be used as a directory segment.
func safeFolderName(value string) string {
	safe := folderReplacer.Replace(value)
	if safe == "" {
		return "document"
	}
	return safe
}

// RevisionKey computes the storage key for a revision:
// <line>/<machine>/<doc_type>/<doc-name>/rev_<number>_<timestamp><ext>.
// The key is deterministic for a given identity and revision number, and
// collision-free because revision numbers are unique per document.
func RevisionKey(line, machine string, docType models.DocType, name string, revision int, at time.Time, ext string) string {
	filename := fmt.Sprintf("rev_%d_%s%s", revision, at.Format(revisionTimeFormat), ext)

	return path.Join(
		safeFolderName(line),
		safeFolderName(machine),
		string(docType),
		safeFolderName(name),
		filename,
	)
}
