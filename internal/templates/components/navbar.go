package components

// NavLink is one entry in the navigation bar.
type NavLink struct {
	Label string
	Path  string
}
