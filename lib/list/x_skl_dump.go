package list

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Dump renders the level chains, top level first, e.g.
//
//	max level: 10, level: 2, element count: 3
//	+-------+-----------------------------------+
//	| LEVEL |               CHAIN               |
//	+-------+-----------------------------------+
//	|     2 | (2, 8) -> nil                     |
//	|     1 | (2, 8) -> (3, 7) -> nil           |
//	|     0 | (1, 9) -> (2, 8) -> (3, 7) -> nil |
//	+-------+-----------------------------------+
func (skl *xSkl[K, V]) Dump() string {
	skl.lock.Lock()
	defer skl.lock.Unlock()

	builder := &strings.Builder{}
	_, _ = fmt.Fprintf(builder, "max level: %d, level: %d, element count: %d\n", skl.maxLevel, skl.levels, skl.nodeLen)

	rows := make([][]string, 0, skl.levels+1)
	head := skl.arena.head()
	for i := skl.levels; i >= 0; i-- {
		chain := strings.Builder{}
		for x := head.next(i); x != sklNilRef; {
			node := skl.arena.load(x)
			chain.WriteString(node.String())
			chain.WriteString(" -> ")
			x = node.next(i)
		}
		chain.WriteString("nil")
		rows = append(rows, []string{strconv.Itoa(int(i)), chain.String()})
	}

	table := tablewriter.NewWriter(builder)
	table.SetHeader([]string{"Level", "Chain"})
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})
	table.AppendBulk(rows)
	table.Render()
	return builder.String()
}
