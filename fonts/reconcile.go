package fonts

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
)

// Name reconciliation maps an observed CSS family token to the best-known
// actual font name. Obfuscated tokens ("__foundersGrotesk_3f9a8b") are
// resolved through @font-face local() names, font-file URL basenames and
// document.fonts, in that order; an unreconciled token is better than a
// wrong guess, so every candidate must pass the sanity filter.

var (
	generatedTokenRe = regexp.MustCompile(`^__|[_-][0-9a-fA-F]{6,}$`)
	hexLikeRe        = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	fileSuffixRe     = regexp.MustCompile(`(?i)\.(woff2?|ttf|otf|eot|svg)$`)
	hashSegmentRe    = regexp.MustCompile(`[._-][0-9a-fA-F]{4,}$`)
	camelBoundaryRe  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// looksGenerated reports whether a token smells machine-generated: a
// leading double underscore or a trailing hex hash.
func looksGenerated(token string) bool {
	return generatedTokenRe.MatchString(token)
}

// saneName accepts a candidate display name only when it could plausibly
// be one: bounded length, at least one letter, not a bare hex string, no
// file-extension-like tail.
func saneName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 3 || len(name) > 40 {
		return false
	}
	if hexLikeRe.MatchString(name) {
		return false
	}
	if fileSuffixRe.MatchString(name) {
		return false
	}
	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	return hasLetter
}

// resolveName maps a CSS token to a display name. Non-generated tokens get
// the deterministic cleanup only.
func resolveName(token string, faces []FontFace, loaded []LoadedFace) string {
	if !looksGenerated(token) {
		return cleanDisplay(token)
	}

	// 1. local() fallback names declared for this family.
	for _, f := range faces {
		if !strings.EqualFold(f.Family, token) {
			continue
		}
		for _, local := range f.Locals {
			if saneName(local) {
				return local
			}
		}
	}

	// 2. Font-file URL basenames.
	for _, f := range faces {
		if !strings.EqualFold(f.Family, token) {
			continue
		}
		for _, src := range f.Sources {
			if name := nameFromURL(src); name != "" {
				return name
			}
		}
	}

	// 3. document.fonts faces whose reported family improves on the token.
	for _, lf := range loaded {
		if strings.EqualFold(lf.Family, token) && lf.Family != token && saneName(lf.Family) && !looksGenerated(lf.Family) {
			return cleanDisplay(lf.Family)
		}
	}

	return cleanDisplay(token)
}

// nameFromURL recovers a display name from a font-file URL basename, or ""
// when no sane candidate survives.
func nameFromURL(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	base = fileSuffixRe.ReplaceAllString(base, "")

	// Strip trailing hash and subset/style segments added by bundlers:
	// "FoundersGrotesk-Regular.3f9a8b" -> "FoundersGrotesk-Regular".
	for {
		next := hashSegmentRe.ReplaceAllString(base, "")
		if next == base {
			break
		}
		base = next
	}
	base = strings.TrimSuffix(base, "-Regular")
	base = strings.TrimSuffix(base, "-regular")

	if len(base) < 3 || len(base) > 40 || hexLikeRe.MatchString(base) {
		return ""
	}
	name := cleanDisplay(base)
	if !saneName(name) {
		return ""
	}
	return name
}

// cleanDisplay is the deterministic fallback transform: strip prefix/suffix
// noise, split camelCase and separators, Title Case the words.
func cleanDisplay(token string) string {
	s := strings.TrimSpace(token)
	s = strings.TrimLeft(s, "_")
	for {
		next := hashSegmentRe.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	s = camelBoundaryRe.ReplaceAllString(s, "$1 $2")
	s = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(s)

	words := strings.Fields(s)
	for i, w := range words {
		if w == strings.ToUpper(w) && len(w) > 1 {
			// Keep acronyms (e.g. "IBM") as-is.
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	out := strings.Join(words, " ")
	if out == "" {
		return token
	}
	return out
}
