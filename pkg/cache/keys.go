package cache

import "strings"

// Key prefixes, also used as key types for observability hooks.
const (
	KeyTypeFit      = "fit"
	KeyTypeArtifact = "artifact"
)

// FitKeyOpts holds the options that change a fit result.
type FitKeyOpts struct {
	// Group is the single group to fit; empty means all groups.
	Group  string `json:"group,omitempty"`
	Strict bool   `json:"strict,omitempty"`
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Edges  bool    `json:"edges,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
	Layout string  `json:"layout,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// FitKey returns the key of a fit result for the diagram with the given hash.
	FitKey(diagramHash string, opts FitKeyOpts) string

	// ArtifactKey returns the key of an artifact rendered from the fitted
	// diagram with the given hash.
	ArtifactKey(fitHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds keys of the form "<type>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FitKey implements [Keyer].
func (DefaultKeyer) FitKey(diagramHash string, opts FitKeyOpts) string {
	return hashKey(KeyTypeFit, diagramHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(fitHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, fitHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix. The CLI scopes keys by build
// version so that a new release never reads fits cached by an older one.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.4.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FitKey generates a prefixed fit key.
func (k *ScopedKeyer) FitKey(diagramHash string, opts FitKeyOpts) string {
	return k.prefix + k.inner.FitKey(diagramHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(fitHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(fitHash, opts)
}

// KeyType returns the key type of key ("fit", "artifact"), ignoring any
// scope prefix. Unknown keys yield "other".
func KeyType(key string) string {
	const hashLen = 64
	if len(key) <= hashLen {
		return "other"
	}
	head := key[:len(key)-hashLen]
	for _, t := range []string{KeyTypeFit, KeyTypeArtifact} {
		if strings.HasSuffix(head, t+":") {
			return t
		}
	}
	return "other"
}
