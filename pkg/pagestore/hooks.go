package pagestore

// Hooks lets an optional observer count page-level events (wired by
// pkg/btreemetrics to Prometheus counters): cache hits/misses on read,
// physical writes, and cache evictions. A nil Hooks is never stored,
// Open installs noopHooks instead.
type Hooks interface {
	OnPageRead(hit bool)
	OnPageWrite()
	OnPageEvict()
}

type noopHooks struct{}

func (noopHooks) OnPageRead(bool) {}
func (noopHooks) OnPageWrite()    {}
func (noopHooks) OnPageEvict()    {}
