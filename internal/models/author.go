package models

// Author is a contributor identity keyed by login name. Authors are interned
// by the Repository: one instance per name, so identity comparison works.
type Author struct {
	name string
}

// Name returns the login name.
func (a *Author) Name() string { return a.name }

func (a *Author) String() string { return a.name }
