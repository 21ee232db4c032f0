package vault

import (
	config "github.com/mwantia/toolvault/internal/config/server"
)

// MasterData supplies the valid production lines and their machines. The
// document store only consumes these lookups; maintaining the master data
// is an external concern.
type MasterData interface {
	Lines() []string
	MachinesForLine(line string) []string
}

// StaticMasterData serves master-data lookups from server configuration.
type StaticMasterData struct {
	order    []string
	machines map[string][]string
}

var _ MasterData = (*StaticMasterData)(nil)

// NewStaticMasterData builds the lookup tables from the configured lines,
// preserving configuration order.
func NewStaticMasterData(lines []config.MasterDataLineConfig) *StaticMasterData {
	md := &StaticMasterData{
		machines: make(map[string][]string, len(lines)),
	}

	for _, line := range lines {
		if _, ok := md.machines[line.Name]; ok {
			continue
		}
		md.order = append(md.order, line.Name)
		md.machines[line.Name] = append([]string(nil), line.Machines...)
	}

	return md
}

func (md *StaticMasterData) Lines() []string {
	return append([]string(nil), md.order...)
}

func (md *StaticMasterData) MachinesForLine(line string) []string {
	return append([]string(nil), md.machines[line]...)
}
