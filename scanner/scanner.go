// Package scanner resolves the transitive closure of locally included
// headers for a source file. Each platform gets its own scanner because the
// same header name may resolve to a different file per platform.
package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/util"
)

var includeDirective = regexp.MustCompile(`^\s*#\s*include\s*(["<])([^">]+)[">]`)

// Scanner memoizes include resolution for one platform.
type Scanner struct {
	// includeDirs are searched in order for angle-bracket includes;
	// platform-specific directories come first.
	includeDirs []string
	memo        map[string][]string
}

// New creates a scanner searching the given include directories in order.
func New(includeDirs []string) *Scanner {
	return &Scanner{
		includeDirs: includeDirs,
		memo:        map[string][]string{},
	}
}

// ResolveIncludes returns the transitive closure of headers included by
// `source`, flat, deduplicated and in discovery order. Results are memoized
// per source file for the scanner's lifetime. Unresolvable includes are
// skipped with a warning; the compiler will report them if they matter.
func (s *Scanner) ResolveIncludes(source string) []string {
	if headers, resolved := s.memo[source]; resolved {
		return headers
	}

	headers := []string{}
	visited := map[string]bool{}
	queue := []string{source}
	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		for _, directive := range s.scanFile(file) {
			header := s.resolve(file, directive.name, directive.quoted)
			if header == "" {
				log.Warning("Unable to resolve '#include %s' in '%s'.\n", directive.name, file)
				continue
			}
			// A header already collected is never re-enqueued, which both
			// deduplicates the result and breaks include cycles.
			if visited[header] {
				continue
			}
			visited[header] = true
			headers = append(headers, header)
			queue = append(queue, header)
		}
	}

	s.memo[source] = headers
	return headers
}

type directive struct {
	name   string
	quoted bool
}

func (s *Scanner) scanFile(file string) []directive {
	handle, err := os.Open(file)
	if err != nil {
		log.Warning("Unable to scan '%s' for includes: %s.\n", file, err)
		return nil
	}
	defer handle.Close()

	directives := []directive{}
	lines := bufio.NewScanner(handle)
	for lines.Scan() {
		match := includeDirective.FindStringSubmatch(lines.Text())
		if match == nil {
			continue
		}
		directives = append(directives, directive{name: match[2], quoted: match[1] == `"`})
	}
	return directives
}

// resolve maps an include directive to a header path. Quoted includes are
// resolved relative to the including file, angle-bracket includes search the
// platform's include directories in declared order, first match wins.
func (s *Scanner) resolve(includer, name string, quoted bool) string {
	if quoted {
		candidate := filepath.Join(filepath.Dir(includer), name)
		if util.FileExists(candidate) {
			return candidate
		}
		return ""
	}
	for _, dir := range s.includeDirs {
		candidate := filepath.Join(dir, name)
		if util.FileExists(candidate) {
			return candidate
		}
	}
	return ""
}
