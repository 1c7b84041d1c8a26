package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// deployments or tenants can share one Redis instance.
//
//	keyer := cache.NewScopedKeyer(nil, "genealogy:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HistoryKey(source string) string {
	return k.prefix + k.inner.HistoryKey(source)
}

func (k *ScopedKeyer) DrawingKey(historyHash string, opts DrawingKeyOpts) string {
	return k.prefix + k.inner.DrawingKey(historyHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(drawingHash, opts)
}
