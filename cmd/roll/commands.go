package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/dune-bot-discord/internal/dice"
	"github.com/KirkDiggler/dune-bot-discord/internal/resolution"
)

func newDiceCmd(a *app) *cobra.Command {
	var (
		system string
		params dice.Params
	)

	cmd := &cobra.Command{
		Use:   "dice [notation]",
		Short: "Roll with one of the dice systems",
		Example: "  roll dice 3d6+2\n" +
			"  roll dice 2d10 --system exploding\n" +
			"  roll dice --system wod --count 6 --difficulty 7 --specialty\n" +
			"  roll dice --system dune --count 3 --target 12",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := dice.ParseSystem(system)
			if err != nil {
				return err
			}

			if sys == dice.SystemStandard || sys == dice.SystemExploding {
				notation := "1d20"
				if len(args) == 1 {
					notation = args[0]
				}
				n, err := dice.ParseNotation(notation)
				if err != nil {
					return err
				}
				params.Count, params.Sides, params.Modifier = n.Count, n.Sides, n.Modifier
			}

			res, err := a.engine.Roll(sys, params)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), res, describeRoll(res))
		},
	}

	cmd.Flags().StringVar(&system, "system", string(dice.SystemStandard), "dice system: standard, exploding, wod or dune")
	cmd.Flags().IntVar(&params.Count, "count", 0, "number of dice for wod and dune")
	cmd.Flags().IntVar(&params.Difficulty, "difficulty", 0, "World of Darkness difficulty")
	cmd.Flags().BoolVar(&params.Specialty, "specialty", false, "World of Darkness specialty")
	cmd.Flags().IntVar(&params.Target, "target", 0, "target number for dune rolls")

	return cmd
}

func describeRoll(res *dice.Result) string {
	switch res.System {
	case dice.SystemWorldOfDarkness:
		text := fmt.Sprintf("rolls: %v\nsuccesses: %d", res.Rolls, res.Successes)
		if res.Botch {
			text += "\nbotch"
		}
		return text
	case dice.SystemDune:
		return fmt.Sprintf("rolls: %v\nsuccesses: %d\ncomplications: %d", res.Rolls, res.Successes, res.Complications)
	default:
		return fmt.Sprintf("rolls: %v\ntotal: %d", res.Rolls, res.Total)
	}
}

func bindRequestFlags(cmd *cobra.Command, req *resolution.Request) {
	cmd.Flags().IntVar(&req.Attribute, "drive", 0, "drive rating")
	cmd.Flags().IntVar(&req.Skill, "skill", 0, "skill rating")
	cmd.Flags().IntVar(&req.Difficulty, "difficulty", 1, "successes needed")
	cmd.Flags().IntVar(&req.BonusDice, "bonus", 0, "bonus dice")
	cmd.Flags().IntVar(&req.AssistDice, "assist", 0, "assist dice")
	cmd.Flags().BoolVar(&req.Determination, "determination", false, "add a determination die")
	cmd.Flags().IntVar(&req.ComplicationThreshold, "complication", 0, "lowest face that causes a complication")
	_ = cmd.MarkFlagRequired("drive")
	_ = cmd.MarkFlagRequired("skill")
}

func newTestCmd(a *app) *cobra.Command {
	var req resolution.Request

	cmd := &cobra.Command{
		Use:     "test",
		Short:   "Resolve a 2d20 skill test",
		Example: "  roll test --drive 8 --skill 4 --difficulty 2 --assist 1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.resolver.Resolve(req)
			if err != nil {
				return err
			}
			text := fmt.Sprintf("rolls: %v\ntarget: %d\nsuccesses: %d/%d\nmomentum: %d\nthreat: %d\n%s",
				res.Rolls, res.TargetNumber, res.Successes, res.Difficulty, res.Momentum, res.Threat, res.Narrative(req))
			return a.print(cmd.OutOrStdout(), res, text)
		},
	}
	bindRequestFlags(cmd, &req)

	return cmd
}

func newExtendedCmd(a *app) *cobra.Command {
	var (
		req       resolution.Request
		target    int
		timeLimit int
		maxRolls  int
	)

	cmd := &cobra.Command{
		Use:     "extended",
		Short:   "Repeat a test until an extended target is met",
		Example: "  roll extended --drive 7 --skill 6 --target 6 --time 4",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit := maxRolls
			if timeLimit > 0 {
				limit = timeLimit
			}
			if limit < 1 {
				return fmt.Errorf("max-rolls must be at least 1")
			}

			var (
				results  []*resolution.Result
				progress *resolution.Progress
				lines    []string
			)
			for len(results) < limit {
				res, err := a.resolver.Resolve(req)
				if err != nil {
					return err
				}
				results = append(results, res)

				progress, err = resolution.ExtendedProgress(results, target, timeLimit)
				if err != nil {
					return err
				}
				lines = append(lines, fmt.Sprintf("roll %d: %v successes %d, total %d/%d (%d%%)",
					len(results), res.Rolls, res.Successes, progress.TotalSuccesses, target, progress.Percent))
				if progress.Complete {
					break
				}
			}

			if progress.Complete {
				lines = append(lines, "complete")
			} else {
				lines = append(lines, "incomplete")
			}
			return a.print(cmd.OutOrStdout(), progress, strings.Join(lines, "\n"))
		},
	}
	bindRequestFlags(cmd, &req)
	cmd.Flags().IntVar(&target, "target", 1, "total successes needed")
	cmd.Flags().IntVar(&timeLimit, "time", 0, "number of intervals available, 0 for untimed")
	cmd.Flags().IntVar(&maxRolls, "max-rolls", 10, "stop an untimed test after this many rolls")

	return cmd
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the archetypes and point-buy values of the ruleset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs, err := a.ruleset()
			if err != nil {
				return err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "ruleset: %s\n", rs.Name)
			fmt.Fprintf(&b, "skills: %s values %v\n", strings.Join(rs.Skills.Names, ", "), rs.Skills.Values)
			fmt.Fprintf(&b, "drives: %s values %v\n", strings.Join(rs.Drives.Names, ", "), rs.Drives.Values)
			b.WriteString("archetypes:")
			for _, name := range rs.ArchetypeNames() {
				fmt.Fprintf(&b, "\n  %s", name)
			}
			return a.print(cmd.OutOrStdout(), rs, b.String())
		},
	}
}
