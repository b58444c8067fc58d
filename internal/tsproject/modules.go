package tsproject

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var sourceExtensions = []string{".ts", ".tsx", ".d.ts"}

// pathAlias is one "paths" mapping, e.g. "@app/*" -> ["src/app/*"].
type pathAlias struct {
	prefix  string
	suffix  string
	star    bool
	targets []string
}

func compileAliases(paths map[string][]string) []pathAlias {
	aliases := make([]pathAlias, 0, len(paths))
	for pattern, targets := range paths {
		a := pathAlias{prefix: pattern, targets: targets}
		if i := strings.IndexByte(pattern, '*'); i >= 0 {
			a.prefix, a.suffix, a.star = pattern[:i], pattern[i+1:], true
		}
		aliases = append(aliases, a)
	}
	// Longest prefix wins, as in tsc.
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i].prefix) != len(aliases[j].prefix) {
			return len(aliases[i].prefix) > len(aliases[j].prefix)
		}
		return aliases[i].prefix < aliases[j].prefix
	})
	return aliases
}

func (a pathAlias) match(specifier string) (string, bool) {
	if !a.star {
		return "", specifier == a.prefix
	}
	if !strings.HasPrefix(specifier, a.prefix) || !strings.HasSuffix(specifier, a.suffix) {
		return "", false
	}
	if len(specifier) < len(a.prefix)+len(a.suffix) {
		return "", false
	}
	return specifier[len(a.prefix) : len(specifier)-len(a.suffix)], true
}

func isRelativeSpecifier(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// resolveSpecifier maps a module specifier written in the file at from to an
// in-project source file, or "" when it cannot be resolved.
func (p *Project) resolveSpecifier(from, specifier string) string {
	var bases []string

	if isRelativeSpecifier(specifier) {
		bases = append(bases, filepath.Join(filepath.Dir(from), filepath.FromSlash(specifier)))
	} else {
		for _, alias := range p.aliases {
			captured, ok := alias.match(specifier)
			if !ok {
				continue
			}
			for _, target := range alias.targets {
				target = strings.Replace(target, "*", captured, 1)
				bases = append(bases, filepath.Join(p.baseURL, filepath.FromSlash(target)))
			}
			break
		}
		if p.bareBaseURL {
			bases = append(bases, filepath.Join(p.baseURL, filepath.FromSlash(specifier)))
		}
	}

	for _, base := range bases {
		if found := probe(base); found != "" && p.contains(found) {
			return found
		}
	}
	return ""
}

// probe finds the source file a module base path refers to.
func probe(base string) string {
	if hasSourceExtension(base) && isFile(base) {
		return base
	}
	for _, ext := range sourceExtensions {
		if isFile(base + ext) {
			return base + ext
		}
	}
	for _, ext := range sourceExtensions {
		index := filepath.Join(base, "index"+ext)
		if isFile(index) {
			return index
		}
	}
	return ""
}

func hasSourceExtension(path string) bool {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// contains reports whether path lies under the project root.
func (p *Project) contains(path string) bool {
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
