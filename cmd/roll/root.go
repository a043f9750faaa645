package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dune-bot-discord/internal/dice"
	"github.com/KirkDiggler/dune-bot-discord/internal/resolution"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
)

type app struct {
	engine      *dice.Engine
	resolver    *resolution.Resolver
	rulesetPath string
	jsonOutput  bool
}

func (a *app) ruleset() (*rules.Ruleset, error) {
	if a.rulesetPath == "" {
		return rules.Default()
	}
	return rules.Load(a.rulesetPath)
}

func (a *app) print(w io.Writer, v any, text string) error {
	if !a.jsonOutput {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newRootCmd builds the CLI; a nil roller uses real randomness
func newRootCmd(roller dice.Roller) *cobra.Command {
	logger := zap.NewNop()
	engine := dice.NewEngine(&dice.EngineConfig{Roller: roller, Logger: logger})
	a := &app{
		engine:   engine,
		resolver: resolution.NewResolver(&resolution.ResolverConfig{Engine: engine, Logger: logger}),
	}

	rootCmd := &cobra.Command{
		Use:           "roll",
		Short:         "Roll dice and resolve 2d20 tests from the terminal",
		Long:          "roll exercises the bot's dice systems and Dune 2d20 test resolution without Discord.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&a.rulesetPath, "ruleset", "", "ruleset YAML replacing the embedded default")

	rootCmd.AddCommand(
		newDiceCmd(a),
		newTestCmd(a),
		newExtendedCmd(a),
		newRulesCmd(a),
	)

	return rootCmd
}
