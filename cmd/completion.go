package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/toshan-luktuke/retire-early/docs"
)

// fileFlags are the flags naming a file, by pattern.
var fileFlags = map[string]string{
	"f":      "*.json",
	"assets": "*.json",
	"chart":  "*",
}

// predictor returns how to complete the value of flag fl.
func predictor(fl *flag.Flag) complete.Predictor {
	if pattern, ok := fileFlags[fl.Name]; ok {
		return predict.Files(pattern)
	}
	if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch fl.Name {
	case "currency":
		return predict.Set{"USD", "EUR", "GBP", "CHF", "JPY", "CAD"}
	case "portfolio":
		return predict.Set{"equities=0.6,fixed_income=0.3,alternatives=0.1"}
	case "inflation":
		return predict.Set{"insee", "0.02", "0.025", "0.03"}
	}
	return predict.Something
}

// flags lists the flags of a flag set with their predictor.
func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(fl *flag.Flag) { m[fl.Name] = predictor(fl) })
	return m
}

// Completion returns the shell completion of the command line: top level
// flags, subcommands and their flags.
func Completion(global *flag.FlagSet) *complete.Command {
	c := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flags(global),
	}
	for _, cmds := range commands() {
		for _, cmd := range cmds {
			fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
			cmd.SetFlags(fs)
			c.Sub[cmd.Name()] = &complete.Command{Flags: flags(fs)}
		}
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		c.Sub["topic"].Args = predict.Set(append(topics, docs.All))
	}
	return c
}
