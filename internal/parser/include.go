package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrIncludeCycle is matched by every *IncludeCycleError.
var ErrIncludeCycle = errors.New("include cycle")

// IncludeCycleError reports a file that includes itself, directly or not.
type IncludeCycleError struct {
	Chain []string // Active include chain, ending with the repeated file
}

func (e *IncludeCycleError) Error() string {
	return "include cycle: " + strings.Join(e.Chain, " -> ")
}

func (e *IncludeCycleError) Is(target error) bool {
	return target == ErrIncludeCycle
}

// IncludeReadError reports an include target that exists but could not be read.
type IncludeReadError struct {
	Path string
	Err  error
}

func (e *IncludeReadError) Error() string {
	return fmt.Sprintf("read include %s: %v", e.Path, e.Err)
}

func (e *IncludeReadError) Unwrap() error {
	return e.Err
}

// includeFrame is one file on the active include chain. The file's tokens
// are exhausted once the queue is back down to until entries.
type includeFrame struct {
	path  string
	until int
}

func (b *builder) leaveFinishedIncludes() {
	for n := len(b.chain); n > 0; n = len(b.chain) {
		f := b.chain[n-1]
		if f.until < 0 || b.tokens.Len() > f.until {
			return
		}
		b.log.Debug("end of include", "path", f.path)
		b.chain = b.chain[:n-1]
	}
}

// handleInclude splices the referenced file's tokens in front of the
// remaining input. A target that cannot be found is logged and skipped.
func (b *builder) handleInclude(arg string) error {
	// Finished frames are only retired at the top of the main loop, so the
	// file this directive was read from is still on the chain here.
	rel := strings.TrimSpace(arg)
	if b.confined && !filepath.IsLocal(rel) {
		b.log.Warn("include outside search path", "file", rel)
		return nil
	}
	dirs := b.searchDirs()
	path, ok := resolveInclude(rel, dirs)
	if !ok {
		b.log.Warn("include not found", "file", rel, "searched", dirs)
		return nil
	}

	for _, f := range b.chain {
		if f.path == path {
			chain := make([]string, 0, len(b.chain)+1)
			for _, f := range b.chain {
				chain = append(chain, f.path)
			}
			return &IncludeCycleError{Chain: append(chain, path)}
		}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return &IncludeReadError{Path: path, Err: err}
	}
	b.log.Debug("opening include", "file", rel, "path", path)

	until := b.tokens.Len()
	b.inject(Tokenize(string(src)))
	b.chain = append(b.chain, includeFrame{path: path, until: until})
	return nil
}

// searchDirs lists the directories an include is looked up in: the
// including file's directory, then the configured include paths.
func (b *builder) searchDirs() []string {
	current := b.baseDir
	if n := len(b.chain); n > 0 {
		current = filepath.Dir(b.chain[n-1].path)
	}
	return append([]string{current}, b.includePaths...)
}

// resolveInclude returns the absolute path of the first regular file named
// rel under dirs.
func resolveInclude(rel string, dirs []string) (string, bool) {
	if rel == "" {
		return "", false
	}
	candidates := dirs
	if filepath.IsAbs(rel) {
		candidates = []string{""}
	}
	for _, dir := range candidates {
		candidate := filepath.Join(dir, rel)
		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		return abs, true
	}
	return "", false
}
