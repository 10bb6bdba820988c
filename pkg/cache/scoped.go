package cache

// ScopedKeyer prefixes every key of an inner [Keyer]. The server uses it to
// keep API entries apart from CLI entries when both share a Redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer selects
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SampleKey(imageHash string, opts SampleKeyOpts) string {
	return k.prefix + k.inner.SampleKey(imageHash, opts)
}

func (k *ScopedKeyer) PathKey(gridHash string, opts PathKeyOpts) string {
	return k.prefix + k.inner.PathKey(gridHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(pathHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(pathHash, opts)
}
