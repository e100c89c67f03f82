package executor

// DefaultRegistry returns the full action catalog: order entry, navigation,
// charting, portfolio reads, and raw screen access.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, group := range [][]Definition{
		orderActions(),
		navigationActions(),
		chartActions(),
		portfolioActions(),
		screenActions(),
	} {
		for _, def := range group {
			reg.MustRegister(def)
		}
	}
	return reg
}
