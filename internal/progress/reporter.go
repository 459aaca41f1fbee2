// Package progress renders indexing progress for one-shot CLI runs.
package progress

import (
	"fmt"
	"os"
	"path"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives document-level progress during an index rebuild.
type Reporter interface {
	Start(total int)
	Update(done int, docPath string)
	Finish()
}

// NewReporter picks a bar for interactive terminals and plain line output
// when running under CI, where carriage-return redraws garble the log.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &lineReporter{w: os.Stderr}
	}
	return &barReporter{}
}

type barReporter struct {
	bar *progressbar.ProgressBar
}

func (r *barReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Indexing content"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *barReporter) Update(done int, docPath string) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(path.Base(docPath))
	_ = r.bar.Set(done)
}

func (r *barReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

type lineReporter struct {
	w     *os.File
	total int
}

func (r *lineReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.w, "Indexing %d documents\n", total)
}

func (r *lineReporter) Update(done int, docPath string) {
	fmt.Fprintf(r.w, "[%d/%d] %s\n", done, r.total, docPath)
}

func (r *lineReporter) Finish() {
	fmt.Fprintln(r.w, "Indexing complete")
}
