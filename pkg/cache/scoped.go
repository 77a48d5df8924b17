package cache

// ScopedKeyer wraps a Keyer with a prefix so several logical tenants can
// share one backend - e.g. distinct watch sessions against the same Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
// A nil inner falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GraphKey generates a prefixed snapshot key.
func (k *ScopedKeyer) GraphKey(workspace string) string {
	return k.prefix + k.inner.GraphKey(workspace)
}

// PositionsKey generates a prefixed position-map key.
func (k *ScopedKeyer) PositionsKey(workspace string) string {
	return k.prefix + k.inner.PositionsKey(workspace)
}
