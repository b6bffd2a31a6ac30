package derive

import (
	"fmt"

	"github.com/iafilius/SRTStatsPlot/src/stats"
)

// groupBit marks a group id: ids in (2^30; 2^31) are groups, [1; 2^30) single sockets.
const groupBit = 1 << 30

// IsGroupSocketID reports whether a SocketID belongs to a socket group.
func IsGroupSocketID(id int64) bool { return id&groupBit != 0 }

// SocketPart is the sub-table of one socket of a grouped statistics file.
type SocketPart struct {
	ID    int64
	Group bool
	Label string // "Group" or "Member N"
	Table *stats.Table
}

// SplitSockets partitions the table by the socket id column. Groups come first,
// then members, each in order of first appearance.
func SplitSockets(t *stats.Table, col string) []SocketPart {
	ids := t.Unique(col)
	vals, _ := t.Values(col)
	var groups, members []SocketPart
	for _, f := range ids {
		id := int64(f)
		part := SocketPart{ID: id, Group: IsGroupSocketID(id)}
		part.Table = t.Filter(func(i int) bool { return vals[i] == f })
		if part.Group {
			groups = append(groups, part)
		} else {
			members = append(members, part)
		}
	}
	for i := range groups {
		groups[i].Label = "Group"
		if len(groups) > 1 {
			groups[i].Label = fmt.Sprintf("Group %d", i+1)
		}
	}
	for i := range members {
		members[i].Label = fmt.Sprintf("Member %d", i+1)
	}
	return append(groups, members...)
}
