package server

// StorageServerConfig holds the document storage root and the intake
// directories watched by the agent.
type StorageServerConfig struct {
	Root   string              `mapstructure:"root"   yaml:"root"`
	Intake []IntakeRouteConfig `mapstructure:"intake" yaml:"intake"`
}

// IntakeRouteConfig maps one watched directory onto an import target.
type IntakeRouteConfig struct {
	Path    string `mapstructure:"path"    yaml:"path"`
	Line    string `mapstructure:"line"    yaml:"line"`
	Machine string `mapstructure:"machine" yaml:"machine"`
	Type    string `mapstructure:"type"    yaml:"type"`
}

// MasterDataLineConfig declares one production line and its machines.
// These lookups are consumed read-only by the document store.
type MasterDataLineConfig struct {
	Name     string   `mapstructure:"name"     yaml:"name"`
	Machines []string `mapstructure:"machines" yaml:"machines"`
}
