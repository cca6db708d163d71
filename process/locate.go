package process

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Locate returns path of the first HTML file in dir or empty string if there
// is none. Hidden files and anything but regular files (or links to them) are
// not considered, extension is matched case-insensitively and candidates are
// ordered naturally so "page2.html" comes before "page10.html".
func Locate(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".html") {
			continue
		}
		if isRegularFile(dir, e) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return natural.Less(candidates[i], candidates[j])
	})
	return filepath.Join(dir, candidates[0]), nil
}

// isRegularFile reports whether entry is a regular file, following symbolic
// links. Dangling links are not.
func isRegularFile(dir string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	fi, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && fi.Mode().IsRegular()
}

// outputNames derives names of the processed document and of the run log
// from the input file name.
func outputNames(name string) (processed, runLog string) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + ".processed" + ext, base + ".fonts.log"
}
