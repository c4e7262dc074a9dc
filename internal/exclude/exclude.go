// Package exclude builds the ignore-pattern set used when enumerating
// project files. The set combines built-in defaults with rules translated
// from the project root's ignore file.
package exclude

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"pathpick/internal/log"
)

// defaultPatterns covers version control, build output, dependency
// directories, lockfiles, and minified/sourcemap artifacts.
var defaultPatterns = []string{
	"**/.git/**",
	"**/.svn/**",
	"**/.hg/**",
	"**/node_modules/**",
	"**/bower_components/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/target/**",
	"**/.next/**",
	"**/.nuxt/**",
	"**/coverage/**",
	"**/__pycache__/**",
	"**/.venv/**",
	"*.min.js",
	"*.min.css",
	"*.map",
	"*.lock",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
}

// Spec is an immutable set of glob-style exclusion patterns derived once per
// session root. Matching distinguishes three rule shapes: wrapped directory
// rules (match any path segment), slashless wildcard rules (match the base
// name), and full path globs.
type Spec struct {
	patterns  []string
	segments  map[string]struct{}
	baseGlobs []glob.Glob
	pathGlobs []glob.Glob
}

// Build constructs the exclusion spec for a session root. It never fails:
// a missing or unreadable ignore file yields the default-only spec.
// ignoreFile is the name of the root-level ignore file (".gitignore" by
// default); extra patterns are appended after the ignore-file rules.
func Build(root, ignoreFile string, extra []string) *Spec {
	patterns := make([]string, 0, len(defaultPatterns)+len(extra))
	patterns = append(patterns, defaultPatterns...)
	patterns = append(patterns, readIgnoreFile(filepath.Join(root, ignoreFile))...)
	for _, p := range extra {
		if rule, ok := translateRule(p); ok {
			patterns = append(patterns, rule)
		}
	}
	return compile(patterns)
}

// readIgnoreFile translates the usable rules of an ignore file into
// exclusion patterns. Blank lines, comments, and negated rules are skipped;
// negation is an unsupported, documented limitation.
func readIgnoreFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("ignore file unreadable, using defaults only: %v", err)
		}
		return nil
	}
	defer f.Close()

	var rules []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if rule, ok := translateRule(scanner.Text()); ok {
			rules = append(rules, rule)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Debug("error reading ignore file %s: %v", path, err)
	}
	return rules
}

// translateRule converts a single ignore-file line into an exclusion
// pattern. Returns false for lines that produce no rule.
func translateRule(line string) (string, bool) {
	rule := strings.TrimSpace(line)
	if rule == "" || strings.HasPrefix(rule, "#") {
		return "", false
	}
	// Negation is unsupported; skipping keeps the spec a pure union.
	if strings.HasPrefix(rule, "!") {
		return "", false
	}
	rule = strings.TrimPrefix(rule, "/")
	rule = strings.TrimSuffix(rule, "/")
	if rule == "" {
		return "", false
	}
	if !hasWildcard(rule) {
		// Wildcard-free rules are directory/name rules.
		return "**/" + rule + "/**", true
	}
	return rule, true
}

func hasWildcard(rule string) bool {
	return strings.ContainsAny(rule, "*?[{")
}

func compile(patterns []string) *Spec {
	s := &Spec{
		patterns: patterns,
		segments: make(map[string]struct{}),
	}
	for _, p := range patterns {
		// Wrapped directory rules match whole path segments.
		if name, ok := segmentName(p); ok {
			s.segments[name] = struct{}{}
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			log.Warn("skipping unparsable exclude pattern %q: %v", p, err)
			continue
		}
		if strings.Contains(p, "/") {
			s.pathGlobs = append(s.pathGlobs, g)
		} else {
			s.baseGlobs = append(s.baseGlobs, g)
		}
	}
	return s
}

// segmentName extracts <name> from a "**/<name>/**" rule when <name>
// contains no wildcard.
func segmentName(pattern string) (string, bool) {
	if !strings.HasPrefix(pattern, "**/") || !strings.HasSuffix(pattern, "/**") {
		return "", false
	}
	name := pattern[3 : len(pattern)-3]
	if name == "" || hasWildcard(name) || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// Patterns returns the combined pattern list in build order.
func (s *Spec) Patterns() []string {
	out := make([]string, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// CombinedPattern returns the whole spec as a single brace-grouped glob,
// the form file enumeration excludes against.
func (s *Spec) CombinedPattern() string {
	return fmt.Sprintf("{%s}", strings.Join(s.patterns, ","))
}

// Match reports whether a slash-separated path relative to the session root
// is excluded.
func (s *Spec) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if len(s.segments) > 0 {
		for _, seg := range strings.Split(rel, "/") {
			if _, ok := s.segments[seg]; ok {
				return true
			}
		}
	}
	base := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		base = rel[i+1:]
	}
	for _, g := range s.baseGlobs {
		if g.Match(base) {
			return true
		}
	}
	for _, g := range s.pathGlobs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
