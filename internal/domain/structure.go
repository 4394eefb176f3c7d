package domain

// ProjectStructure is a filesystem snapshot of a project's shape.
// It is rebuilt on every call and never persisted.
type ProjectStructure struct {
	RootPath        string   `json:"rootPath"`
	PackageManagers []string `json:"packageManagers"`
	Languages       []string `json:"languages"`
	Frameworks      []string `json:"frameworks"`
	HasTests        bool     `json:"hasTests"`
	HasDocs         bool     `json:"hasDocs"`
	HasCI           bool     `json:"hasCi"`
	HasDatabase     bool     `json:"hasDatabase"`
	SourceDirs      []string `json:"sourceDirs"`
}

// HasPackageManager reports whether the named manager was detected.
func (s *ProjectStructure) HasPackageManager(name string) bool {
	for _, pm := range s.PackageManagers {
		if pm == name {
			return true
		}
	}
	return false
}

// HasLanguage reports whether the named language was detected.
func (s *ProjectStructure) HasLanguage(name string) bool {
	for _, l := range s.Languages {
		if l == name {
			return true
		}
	}
	return false
}
