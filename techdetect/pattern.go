package techdetect

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var patternsYAML []byte

// Pattern is one technology definition in the database. All channel lists
// are optional; a technology with no channels can still be injected by
// implications or heuristics. Patterns are read-only during detection.
type Pattern struct {
	Name       string   `yaml:"name"`
	Category   string   `yaml:"category"`
	URL        string   `yaml:"url"`
	Signal     bool     `yaml:"signal,omitempty"`
	Confidence int      `yaml:"confidence,omitempty"` // default 100
	Requires   []string `yaml:"requires,omitempty"`
	Implies    []string `yaml:"implies,omitempty"`
	Excludes   []string `yaml:"excludes,omitempty"`

	Match MatchSet `yaml:"match,omitempty"`

	// Version extraction, each optional. VersionGlobal names a page global
	// whose string value is the version; VersionScript is a regex with one
	// capture group applied to a matched script URL; VersionDOM reads an
	// attribute (or text) of a selected element.
	VersionGlobal string      `yaml:"version_global,omitempty"`
	VersionScript string      `yaml:"version_script,omitempty"`
	VersionDOM    *VersionDOM `yaml:"version_dom,omitempty"`
}

// MatchSet holds the per-channel match configuration. Map values are
// value/content regexes; an empty value means presence is enough.
type MatchSet struct {
	URL     []string          `yaml:"url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Cookies map[string]string `yaml:"cookies,omitempty"`
	Globals []string          `yaml:"globals,omitempty"`
	Meta    map[string]string `yaml:"meta,omitempty"`
	Scripts []string          `yaml:"scripts,omitempty"`
	DOM     []string          `yaml:"dom,omitempty"`
	CSS     []string          `yaml:"css,omitempty"`
	HTML    []string          `yaml:"html,omitempty"`
}

// VersionDOM extracts a version from a DOM element.
type VersionDOM struct {
	Selector string `yaml:"selector"`
	Attr     string `yaml:"attr,omitempty"`  // empty = element text
	Regex    string `yaml:"regex,omitempty"` // one capture group; empty = whole value
}

// Database is a parsed, compiled pattern database.
type Database struct {
	Patterns []*Pattern
	byName   map[string]*Pattern
	compiled []*compiledPattern
}

type cookieMatcher struct {
	nameSrc string
	name    *regexp.Regexp
	value   *regexp.Regexp // nil = presence only
}

type headerMatcher struct {
	name  string
	value *regexp.Regexp // nil = presence only
}

type metaMatcher struct {
	name    string
	content *regexp.Regexp // nil = presence only
}

type scriptMatcher struct {
	src string
	re  *regexp.Regexp
}

type compiledPattern struct {
	p             *Pattern
	url           []*regexp.Regexp
	headers       []headerMatcher
	cookies       []cookieMatcher
	meta          []metaMatcher
	scripts       []scriptMatcher
	css           []*regexp.Regexp
	html          []*regexp.Regexp
	versionScript *regexp.Regexp
	versionDOM    *regexp.Regexp
}

// Lookup returns the pattern for a technology name.
func (d *Database) Lookup(name string) (*Pattern, bool) {
	p, ok := d.byName[name]
	return p, ok
}

// GlobalPaths returns every dotted global path any pattern matches on,
// deduplicated in database order. The page-realm prober evaluates exactly
// this set.
func (d *Database) GlobalPaths() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range d.Patterns {
		for _, g := range p.Match.Globals {
			if !seen[g] {
				seen[g] = true
				out = append(out, g)
			}
		}
	}
	return out
}

// VersionGlobals returns the globals whose string values carry versions.
func (d *Database) VersionGlobals() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range d.Patterns {
		if g := p.VersionGlobal; g != "" && !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// Load parses and compiles a pattern database from YAML.
func Load(data []byte) (*Database, error) {
	var doc struct {
		Technologies []*Pattern `yaml:"technologies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("techdetect: parse patterns: %w", err)
	}

	db := &Database{
		Patterns: doc.Technologies,
		byName:   make(map[string]*Pattern, len(doc.Technologies)),
	}

	for _, p := range doc.Technologies {
		if p.Name == "" {
			return nil, fmt.Errorf("techdetect: pattern with empty name")
		}
		if _, dup := db.byName[p.Name]; dup {
			return nil, fmt.Errorf("techdetect: duplicate pattern %q", p.Name)
		}
		if p.Confidence <= 0 || p.Confidence > 100 {
			p.Confidence = 100
		}
		db.byName[p.Name] = p
	}

	// Cross-references must resolve: a dangling implies/requires/excludes
	// edge is a database authoring error, not a runtime condition.
	for _, p := range doc.Technologies {
		for _, refs := range [][]string{p.Requires, p.Implies, p.Excludes} {
			for _, ref := range refs {
				if _, ok := db.byName[ref]; !ok {
					return nil, fmt.Errorf("techdetect: %s references unknown technology %q", p.Name, ref)
				}
			}
		}
	}

	for _, p := range doc.Technologies {
		c, err := compile(p)
		if err != nil {
			return nil, err
		}
		db.compiled = append(db.compiled, c)
	}

	return db, nil
}

func compile(p *Pattern) (*compiledPattern, error) {
	c := &compiledPattern{p: p}

	ci := func(expr string) (*regexp.Regexp, error) {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("techdetect: %s: bad regex %q: %w", p.Name, expr, err)
		}
		return re, nil
	}

	for _, expr := range p.Match.URL {
		re, err := ci(expr)
		if err != nil {
			return nil, err
		}
		c.url = append(c.url, re)
	}
	for name, val := range p.Match.Headers {
		m := headerMatcher{name: strings.ToLower(name)}
		if val != "" {
			re, err := ci(val)
			if err != nil {
				return nil, err
			}
			m.value = re
		}
		c.headers = append(c.headers, m)
	}
	for name, val := range p.Match.Cookies {
		nameRe, err := ci("^(?:" + name + ")$")
		if err != nil {
			return nil, err
		}
		m := cookieMatcher{nameSrc: name, name: nameRe}
		if val != "" {
			re, err := ci(val)
			if err != nil {
				return nil, err
			}
			m.value = re
		}
		c.cookies = append(c.cookies, m)
	}
	for name, content := range p.Match.Meta {
		m := metaMatcher{name: strings.ToLower(name)}
		if content != "" {
			re, err := ci(content)
			if err != nil {
				return nil, err
			}
			m.content = re
		}
		c.meta = append(c.meta, m)
	}
	for _, expr := range p.Match.Scripts {
		re, err := ci(expr)
		if err != nil {
			return nil, err
		}
		c.scripts = append(c.scripts, scriptMatcher{src: expr, re: re})
	}
	for _, expr := range p.Match.CSS {
		re, err := ci(expr)
		if err != nil {
			return nil, err
		}
		c.css = append(c.css, re)
	}
	for _, expr := range p.Match.HTML {
		re, err := ci(expr)
		if err != nil {
			return nil, err
		}
		c.html = append(c.html, re)
	}
	if p.VersionScript != "" {
		re, err := ci(p.VersionScript)
		if err != nil {
			return nil, err
		}
		c.versionScript = re
	}
	if p.VersionDOM != nil && p.VersionDOM.Regex != "" {
		re, err := ci(p.VersionDOM.Regex)
		if err != nil {
			return nil, err
		}
		c.versionDOM = re
	}

	return c, nil
}

var (
	defaultDB     *Database
	defaultDBErr  error
	defaultDBOnce sync.Once
)

// DefaultDatabase returns the embedded pattern database, parsed once.
func DefaultDatabase() (*Database, error) {
	defaultDBOnce.Do(func() {
		defaultDB, defaultDBErr = Load(patternsYAML)
	})
	return defaultDB, defaultDBErr
}
