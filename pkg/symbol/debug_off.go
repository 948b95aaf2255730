//go:build !merc_debug

package symbol

// debugInfo is empty outside of merc_debug builds: Symbol pays nothing for
// generation bookkeeping unless the tag is active.
type debugInfo struct{}

func newDebugInfo() debugInfo { return debugInfo{} }

// Generation always reports 0 outside of merc_debug builds.
func (d debugInfo) Generation() uint32 { return 0 }
