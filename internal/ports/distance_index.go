package ports

// Contract for resolving addresses and looking up precomputed distances.
type DistanceIndex interface {
	// Resolve returns the matrix index for an address.
	Resolve(address string) (int, bool)
	// Distance returns miles between two addresses. Unknown addresses yield
	// domain.ErrUnresolvableAddress; missing data in both directions yields +Inf.
	Distance(from string, to string) (float64, error)
}
