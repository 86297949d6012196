package relation

import (
	"fmt"
	"os"
	"path/filepath"

	copy "github.com/otiai10/copy"
)

// BackupRelation copies a relation's three files (name.info, name.data,
// name.ovflow) from dir into destDir, creating destDir if necessary. It
// operates on files at rest and does not require the relation to be
// closed, though backing up a relation with in-flight unwritten changes
// is the caller's responsibility to avoid.
func BackupRelation(dir, name, destDir string) error {
	if err := os.MkdirAll(destDir, 0775); err != nil {
		return newErr(IOError, "backup", err)
	}
	for _, ext := range []string{".info", ".data", ".ovflow"} {
		src := filepath.Join(dir, name+ext)
		dst := filepath.Join(destDir, name+ext)
		if err := copy.Copy(src, dst); err != nil {
			return newErr(IOError, "backup", fmt.Errorf("copying %s: %w", src, err))
		}
	}
	return nil
}
