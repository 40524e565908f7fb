// Package browse provides filesystem-backed page sources: directory
// listings the user can drill into, and line-numbered file views. It is
// the content behind the /pager slash command and the demo TUI.
package browse

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eachlabs/pager/internal/pager"
)

const (
	maxLineLen    = 2000
	maxBufferSize = 1024 * 1024
)

// entry is one directory listing row.
type entry struct {
	name  string
	path  string
	isDir bool
	size  int64
}

// NewSource builds a source for a path: a directory listing for
// directories, a line-numbered view for files.
func NewSource(path string, pageSize int) (pager.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("browse: %w", err)
	}
	if info.IsDir() {
		return NewDirSource(path, pageSize)
	}
	return NewFileSource(path, pageSize)
}

// NewDirSource lists a directory one page at a time. Each page offers its
// entries as drill-down options: directories open as nested listings,
// files as line-numbered views. Hidden entries and common dependency
// directories are skipped.
func NewDirSource(path string, pageSize int) (pager.Source, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("browse: read dir: %w", err)
	}

	entries := make([]entry, 0, len(dirents))
	for _, d := range dirents {
		name := d.Name()
		if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" {
			continue
		}
		e := entry{name: name, path: filepath.Join(path, name), isDir: d.IsDir()}
		if info, err := d.Info(); err == nil {
			e.size = info.Size()
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].isDir != entries[j].isDir {
			return entries[i].isDir
		}
		return entries[i].name < entries[j].name
	})

	format := func(_ context.Context, v *pager.View, items []entry) (*pager.Payload, error) {
		var b strings.Builder
		for _, e := range items {
			if e.isDir {
				fmt.Fprintf(&b, "📁 %s/\n", e.name)
			} else {
				fmt.Fprintf(&b, "📄 %s (%s)\n", e.name, humanSize(e.size))
			}
		}
		body := b.String()
		if body == "" {
			body = "(empty directory)"
		}
		return &pager.Payload{Embed: &pager.Embed{
			Title:  path,
			Body:   body,
			Footer: fmt.Sprintf("Page %d/%d · %d entries", v.CurrentIndex()+1, v.CurrentSource().MaxPages(), len(entries)),
		}}, nil
	}

	options := func(_ context.Context, _ *pager.View, items []entry) ([]pager.Option, error) {
		opts := make([]pager.Option, 0, len(items))
		for _, e := range items {
			child, err := NewSource(e.path, pageSize)
			if err != nil {
				// Entry may have vanished or be unreadable; just
				// don't offer it.
				continue
			}
			if e.isDir {
				opts = append(opts, pager.NewOption(e.name+"/", child).WithDescription("directory"))
			} else {
				opts = append(opts, pager.NewOption(e.name, child).WithDescription(humanSize(e.size)))
			}
		}
		return opts, nil
	}

	src, err := pager.NewListSource(entries, pageSize, format)
	if err != nil {
		return nil, err
	}
	return src.WithOptions(options), nil
}

// NewFileSource pages through a file line by line. The file is opened on
// first use, so directory pages can offer many files without touching
// them all.
func NewFileSource(path string, pageSize int) (pager.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("browse: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("browse: %s is a directory, not a file", path)
	}
	return pager.NewStreamSource(&fileLines{path: path}, pageSize, fileFormat(path))
}

// NewReaderSource pages lines from a reader, pulling lazily so unbounded
// input (a pipe, a log tail) works without buffering it all.
func NewReaderSource(r io.Reader, title string, pageSize int) (pager.Source, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBufferSize)
	n := 0
	it := pager.IteratorFunc[string](func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", pager.End
		}
		n++
		return numberLine(n, scanner.Text()), nil
	})
	return pager.NewStreamSource(it, pageSize, fileFormat(title))
}

// fileLines yields a file's lines, already numbered. The file is opened
// on the first Next call.
type fileLines struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

func (it *fileLines) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if it.scanner == nil {
		f, err := os.Open(it.path)
		if err != nil {
			return "", fmt.Errorf("browse: %w", err)
		}
		it.file = f
		it.scanner = bufio.NewScanner(f)
		it.scanner.Buffer(make([]byte, 0, 64*1024), maxBufferSize)
	}
	if !it.scanner.Scan() {
		it.file.Close()
		if err := it.scanner.Err(); err != nil {
			return "", fmt.Errorf("browse: %w", err)
		}
		return "", pager.End
	}
	it.line++
	return numberLine(it.line, it.scanner.Text()), nil
}

func fileFormat(title string) pager.FormatFunc[string] {
	name := filepath.Base(title)
	return func(_ context.Context, v *pager.View, lines []string) (*pager.Payload, error) {
		body := "(empty file)"
		if len(lines) > 0 {
			body = "```\n" + strings.Join(lines, "\n") + "\n```"
		}
		return &pager.Payload{Embed: &pager.Embed{
			Title:  "📄 " + name,
			Body:   body,
			Footer: fmt.Sprintf("%s · page %d", title, v.CurrentIndex()+1),
		}}, nil
	}
}

func numberLine(n int, text string) string {
	if len(text) > maxLineLen {
		text = text[:maxLineLen] + "..."
	}
	return fmt.Sprintf("%6d\t%s", n, text)
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
