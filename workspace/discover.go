package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// skipDirs are vendored dependency trees that routinely contain .sol
// files which are not part of the workspace itself.
var skipDirs = []string{"node_modules/", "lib/forge-std/", ".git/"}

// Discover returns the Solidity source files under root, relative to
// root and sorted for a stable traversal order.
func Discover(root string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), "**/*.sol")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	files := matches[:0]
	for _, m := range matches {
		if vendored(m) {
			continue
		}
		files = append(files, filepath.FromSlash(m))
	}
	sort.Strings(files)
	return files, nil
}

func vendored(path string) bool {
	for _, d := range skipDirs {
		if strings.HasPrefix(path, d) || strings.Contains(path, "/"+d) {
			return true
		}
	}
	return false
}
