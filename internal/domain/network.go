package domain

// Location is one row of the address table; Index addresses the distance matrix.
type Location struct {
	Index   int
	Name    string
	Address string
}

// Network is the parsed address table and the raw distance matrix (nil cells are missing).
type Network struct {
	Locations []Location
	Distances [][]*float64
}
