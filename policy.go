package catalog

// Policy is a fixed Manager, for embedding the engine without any
// configuration machinery.
type Policy struct {
	Override    bool      // PUBLIC entries override supplied system identifiers
	Locations   []string  // seed catalog locations
	FoldCase    bool      // case-insensitive SYSTEM matching
	Diagnostics *Debug    // defaults to discarding everything
	Fallback    Bootstrap // optional
}

// DefaultOverride implements Manager
func (p *Policy) DefaultOverride() bool {
	return p.Override
}

// SeedLocations implements Manager
func (p *Policy) SeedLocations() []string {
	return append([]string(nil), p.Locations...)
}

// FoldSystemCase implements Manager
func (p *Policy) FoldSystemCase() bool {
	return p.FoldCase
}

// Debug implements Manager
func (p *Policy) Debug() *Debug {
	if p.Diagnostics == nil {
		p.Diagnostics = Discard()
	}
	return p.Diagnostics
}

// Bootstrap implements Manager
func (p *Policy) Bootstrap() Bootstrap {
	return p.Fallback
}
