package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/toshan-luktuke/retire-early"
	md "github.com/nao1215/markdown"
)

// ResultMarkdown renders a simulation and the request it answers.
func ResultMarkdown(resp retire.Response, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	req := resp.Request
	res := resp.Result

	doc.H1("Retirement Projection")
	if res == nil {
		doc.PlainText("No simulation was run.")
		return doc.String()
	}

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"Projection", "Value"},
		Rows: [][]string{
			{md.Bold("Probability of Success"), md.Bold(percent(res.Probability()))},
			{"Goal", money(req.Goal, currency)},
			{"Goal in Year " + strconv.Itoa(res.Years()) + " Money", money(res.InflatedGoal(), currency)},
			{"Trials", strconv.Itoa(res.Iterations())},
		},
	})

	doc.H2("Household")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Item", "Amount"},
		Rows: [][]string{
			{"Current Value", money(req.CurrentValue, currency)},
			{"Income", money(req.Income, currency)},
			{"Cash Flows", money(req.Cashflows, currency)},
			{"Expenses", money(-req.Expenses, currency)},
			{"Liabilities", money(-req.Liabilities, currency)},
			{md.Bold("= Net Contribution"), md.Bold(retire.M(resp.NetContribution(), currency).SignedString())},
		},
	})

	allocation := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Asset Class", "Weight"},
	}
	for _, a := range retire.AssetClasses() {
		if w, ok := req.Portfolio[a]; ok {
			allocation.Rows = append(allocation.Rows, []string{a.String(), percent(w)})
		}
	}
	if len(allocation.Rows) > 0 {
		doc.H2("Allocation")
		doc.Table(allocation)
	}

	avg := res.AverageNetWorth()
	if len(avg) > 0 {
		doc.H2("Average Net Worth")
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Year", "Net Worth", "Change"},
		}
		prev := req.CurrentValue
		for i, v := range avg {
			change := "-"
			if prev != 0 {
				change = signedPercent(v/prev - 1)
			}
			table.Rows = append(table.Rows, []string{strconv.Itoa(i + 1), money(v, currency), change})
			prev = v
		}
		doc.Table(table)
	}

	if notes := notes(req, res); len(notes) > 0 {
		doc.H2("Notes")
		doc.BulletList(notes...)
	}

	return doc.String()
}

// notes lists remarks worth the reader's attention.
func notes(req retire.Request, res *retire.SimulationResult) []string {
	var notes []string
	if res.Years() == 0 {
		notes = append(notes, "The horizon is zero years: the current value is not compared to the goal.")
	}
	if total := req.Portfolio.Total(); total != 1 && len(req.Portfolio) > 0 {
		notes = append(notes, fmt.Sprintf("Allocation weights add up to %s, not 100%%.", percent(total)))
	}
	for i, v := range res.AverageNetWorth() {
		if v < 0 {
			notes = append(notes, fmt.Sprintf("The average net worth turns negative in year %d.", i+1))
			break
		}
	}
	return notes
}
