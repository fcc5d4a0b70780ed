package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/handiism/soundcloud-downloader/internal/download"
)

// printer writes progress events for humans. Decorations are only used when
// the output is a terminal.
type printer struct {
	mu        sync.Mutex
	w         io.Writer
	verbose   bool
	decorated bool
}

func newPrinter(w io.Writer, verbose bool) *printer {
	return &printer{w: w, verbose: verbose, decorated: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var (
	decoratedPrefixes = map[download.ProgressLevel]string{
		download.LevelError:   "❌ ",
		download.LevelWarning: "⚠️  ",
		download.LevelSuccess: "✅ ",
		download.LevelInfo:    "ℹ️  ",
	}
	plainPrefixes = map[download.ProgressLevel]string{
		download.LevelError:   "error: ",
		download.LevelWarning: "warning: ",
	}
)

// event is the manager's progress callback. It is called concurrently.
func (p *printer) event(event download.ProgressEvent) {
	if event.Level == download.LevelVerbose && !p.verbose {
		return
	}

	prefix := plainPrefixes[event.Level]
	if p.decorated {
		prefix = decoratedPrefixes[event.Level]
		if prefix == "" {
			prefix = "   "
		}
	}
	p.println(prefix + event.Message)
}

func (p *printer) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}

func (p *printer) rule() {
	if p.decorated {
		p.println(strings.Repeat("━", 40))
	}
}

func (p *printer) banner() {
	if !p.decorated {
		return
	}
	p.println("🎵 SoundCloud Downloader")
	p.rule()
	p.println("")
}

func (p *printer) section(title string) {
	if p.decorated {
		p.println("")
		p.println("📥 " + title)
		p.println("")
		return
	}
	p.println(title)
}

func (p *printer) dryRun(names []string) {
	p.section("Dry run, not downloading:")
	for _, name := range names {
		p.println("  " + name)
	}
}

func (p *printer) summary(received, total int64, filesReceived, filesTotal int32) {
	p.println("")
	p.rule()
	line := fmt.Sprintf("Complete! Downloaded %d/%d files (%s)", filesReceived, filesTotal, humanize.Bytes(uint64(received)))
	if p.decorated {
		line = "✨ " + line
	}
	p.println(line)
	if total > 0 && received < total {
		p.println(fmt.Sprintf("   (%s estimated)", humanize.Bytes(uint64(total))))
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
