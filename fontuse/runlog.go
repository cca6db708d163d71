package fontuse

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/multierr"

	"fontprune/fonts"
)

// WriteRunLog writes a single run record.
func WriteRunLog(w io.Writer, stamp time.Time, htmlFile string, used, removed *fonts.Set) error {
	ew := &errWriter{w: w}

	ew.printf("=== RUN %s ===\n", stamp.Format("2006-01-02T15:04:05"))
	ew.printf("HTML file: %s\n\n", htmlFile)

	ew.printf("Used variants (family | weight | style):\n")
	writeTriplets(ew, used, "(none detected)")

	ew.printf("\nUnused variants (removed from @font-face):\n")
	writeTriplets(ew, removed, "(none removed)")

	ew.printf("\n\n")
	return ew.err
}

func writeTriplets(ew *errWriter, set *fonts.Set, empty string) {
	if set.Len() == 0 {
		ew.printf("  %s\n", empty)
		return
	}
	for _, t := range set.Sorted() {
		ew.printf("  - %s\n", t)
	}
}

// AppendRunLog appends a run record to the file at path, creating it when
// necessary. Earlier records are never touched.
func AppendRunLog(path string, stamp time.Time, htmlFile string, used, removed *fonts.Set) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to open font log: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if err := WriteRunLog(f, stamp, htmlFile, used, removed); err != nil {
		return fmt.Errorf("unable to write font log: %w", err)
	}
	return nil
}

// errWriter remembers the first write error and ignores everything after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
