package renderer

import (
	"bytes"
	"fmt"

	"github.com/toshan-luktuke/retire-early"
	md "github.com/nao1215/markdown"
)

// ReturnsMarkdown renders one draw of annual returns next to the models they
// were sampled from.
func ReturnsMarkdown(year int, returns map[retire.AssetClass]float64, params retire.AssetParams) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Sampled Returns for Year %d", year))
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Asset Class", "Return", "Mean", "Std. Dev."},
	}
	for _, a := range retire.AssetClasses() {
		r, ok := returns[a]
		if !ok {
			continue
		}
		m := params[a]
		table.Rows = append(table.Rows, []string{a.String(), signedPercent(r), percent(m.Mean), percent(m.StdDev)})
	}
	doc.Table(table)
	return doc.String()
}
