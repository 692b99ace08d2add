package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"

	"github.com/toshan-luktuke/retire-early"
	"github.com/toshan-luktuke/retire-early/docs"
	"github.com/toshan-luktuke/retire-early/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name: "Facilitator",
		// Used by facilitators to know what they can expected from the expert
		Description: ``,
		ModelName:   model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is here to know whether their savings plan reaches their retirement goal.
			Collect their income, expenses, liabilities, current savings, allocation and goal,
			ask the Planner to run projections, and explain the outcome in plain words.
			Never invent figures the user did not give: ask for them instead.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewEconomist returns an expert grounded with Google Search, to discuss
// inflation and market expectations.
func NewEconomist() *Expert {
	return &Expert{
		Name: "Economist",
		Description: `This is an economist,
		aware of the latest inflation figures, interest rates and long term market return expectations.
		Ask the Economist whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an economist. You Leverage Google Search to ground your assertions
			about inflation, interest rates and expected returns of equities, bonds and
			alternative investments. Give figures as yearly rates.
				`}}},
		},
	}
}

// Options configures the simulations run on behalf of the assistant.
type Options struct {
	Params    retire.AssetParams // defaults to retire.DefaultAssetParams
	Inflation float64            // used when the call does not give one, zero keeps retire.DefaultInflation
	Workers   int
	Currency  string
	// Source returns the random source of a simulation. Defaults to a randomly seeded PCG.
	Source func() rand.Source
}

func (o Options) source() rand.Source {
	if o.Source != nil {
		return o.Source()
	}
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

func (o Options) params() retire.AssetParams {
	if o.Params != nil {
		return o.Params
	}
	return retire.DefaultAssetParams()
}

// NewPlanner returns the expert running retirement projections.
func NewPlanner(opts Options) *Expert {
	lib := []Function{Simulate(opts)}
	return &Expert{
		Name: "Planner",
		Description: `This is the Planner. It runs Monte Carlo projections of a household's savings
		and tells the probability of reaching a retirement goal.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a retirement planner. Use the Simulate tool to project the user's
				savings. Compare scenarios (longer horizon, lower expenses, another allocation)
				when the probability of success is low.

				How the projection works:

				` + must(docs.GetTopic("model"))}}},
		},
		Library: NewLibrary(lib),
	}
}

func number(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: description}
}

// Simulate returns the function running one simulation.
func Simulate(opts Options) *Func {
	const name = "Simulate"
	weight := "Share of the portfolio, between 0 and 1."
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: `Simulate projects a household's portfolio value year after year and returns a markdown report with the probability of reaching the goal.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"income":        number("Yearly income."),
					"expenses":      number("Yearly expenses."),
					"liabilities":   number("Yearly debt payments."),
					"cashflows":     number("Other yearly cash flows, positive or negative."),
					"current_value": number("Current value of the portfolio."),
					"goal":          number("Target value at the end of the horizon, in today's money."),
					"inflation":     number("Yearly inflation rate, 0.025 for 2.5%."),
					"year":          {Type: genai.TypeInteger, Description: "Horizon in years."},
					"iterations":    {Type: genai.TypeInteger, Description: "Number of trials, 100 by default."},
					"portfolio": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"equities":     number(weight),
							"fixed_income": number(weight),
							"alternatives": number(weight),
						},
						Required: []string{"equities", "fixed_income", "alternatives"},
					},
				},
				Required: []string{"income", "expenses", "liabilities", "current_value", "goal", "portfolio"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report of the projection.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			raw, err := json.Marshal(args)
			if err != nil {
				return failure(id, name, err)
			}
			dec := retire.NewRequestDecoder()
			if opts.Inflation != 0 {
				dec.Inflation = opts.Inflation
			}
			req, err := dec.Decode(bytes.NewReader(raw))
			if err != nil {
				return failure(id, name, err)
			}
			res, err := retire.RunMonteCarlo(ctx, req.Profile(), opts.params(), req.Goal, req.Config(opts.Workers), opts.source())
			if err != nil {
				return failure(id, name, err)
			}
			return success(id, name, renderer.ResultMarkdown(retire.NewResponse(req, res), opts.Currency))
		},
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
