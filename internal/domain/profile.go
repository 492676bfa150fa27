package domain

import "strings"

type Profile struct {
	FirstName string
	LastName  string
}

func (p Profile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type DirectoryEntry struct {
	Name  string
	Email string
}
