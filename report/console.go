package report

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/encodeous/ripsim/state"
	"github.com/olekukonko/tablewriter"
)

// Console renders snapshots as text tables. One snapshot is always written as a whole.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	return table
}

func (c *Console) ReportTable(snap state.TableSnapshot) {
	rows := make([][]string, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		rows = append(rows, []string{
			strconv.Itoa(snap.Tick),
			string(snap.Node),
			string(e.Dest),
			e.Mask,
			string(e.NextHop),
			state.MetricString(e.Metric),
			strconv.Itoa(e.Age),
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w)
	table := newTable(c.w, []string{"time", "node ip", "destination ip", "destination subnet mask", "next hop", "metric", "timeout duration"})
	table.AppendBulk(rows)
	table.Render()
}

func (c *Console) ReportFailure(node state.NodeId, tick int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "\n%s has failed! (tick %d)\n", node, tick)
}

// PrintTopology writes every router and its links.
func PrintTopology(w io.Writer, topo *state.Topology) {
	rows := make([][]string, 0, len(topo.Links)*2)
	for _, id := range topo.Ids() {
		links := topo.Neighbours(id)
		if len(links) == 0 {
			rows = append(rows, []string{string(id), state.SubnetMask, "-", "-"})
		}
		for _, l := range links {
			rows = append(rows, []string{string(id), state.SubnetMask, string(l.Other(id)), strconv.FormatUint(uint64(l.Weight), 10)})
		}
	}
	table := newTable(w, []string{"router", "subnet mask", "neighbour", "weight"})
	table.AppendBulk(rows)
	table.Render()
}
