package techdetect

// Finding accumulates evidence for one technology during a run. Confidence
// only ever rises (max-combine): a weak second signal never lowers what a
// strong first signal established.
type Finding struct {
	Name       string
	Confidence int
	Version    string
	Matches    int
}

// Findings is the detection accumulator. It preserves insertion order so a
// run over fixed evidence is deterministic, and it is passed snapshot-wise
// through the rule stages: each stage takes one and returns a new one.
type Findings struct {
	m     map[string]*Finding
	order []string
}

func newFindings() *Findings {
	return &Findings{m: make(map[string]*Finding)}
}

// Add records a matching signal. Confidence combines by max and clamps to
// [0, 100]; the first non-empty version wins.
func (f *Findings) Add(name string, confidence int, version string) {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	fd, ok := f.m[name]
	if !ok {
		fd = &Finding{Name: name}
		f.m[name] = fd
		f.order = append(f.order, name)
	}
	if confidence > fd.Confidence {
		fd.Confidence = confidence
	}
	if fd.Version == "" && version != "" {
		fd.Version = version
	}
	fd.Matches++
}

// Get returns the finding for a technology, if present.
func (f *Findings) Get(name string) (*Finding, bool) {
	fd, ok := f.m[name]
	return fd, ok
}

// Has reports presence.
func (f *Findings) Has(name string) bool {
	_, ok := f.m[name]
	return ok
}

// Names returns surviving technology names in insertion order.
func (f *Findings) Names() []string {
	out := make([]string, 0, len(f.m))
	for _, n := range f.order {
		if _, ok := f.m[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Len is the number of surviving findings.
func (f *Findings) Len() int { return len(f.m) }

// clone copies the accumulator so a rule stage can filter without mutating
// its input snapshot.
func (f *Findings) clone() *Findings {
	c := newFindings()
	for _, n := range f.Names() {
		fd := *f.m[n]
		c.m[n] = &fd
		c.order = append(c.order, n)
	}
	return c
}

// without returns a copy with the named technologies removed.
func (f *Findings) without(names ...string) *Findings {
	c := f.clone()
	for _, n := range names {
		delete(c.m, n)
	}
	return c
}
