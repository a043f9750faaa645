package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/dune-bot-discord/internal/dice"
	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
)

// CommandName is the root slash command
const CommandName = "dune"

// Subcommand groups and subcommands of /dune
const (
	GroupCreate    = "create"
	GroupPool      = "pool"
	GroupCharacter = "character"

	CmdRoll = "roll"
	CmdTest = "test"
	CmdHelp = "help"

	CmdStart        = "start"
	CmdStep         = "step"
	CmdStatus       = "status"
	CmdOptions      = "options"
	CmdFinalize     = "finalize"
	CmdCancel       = "cancel"
	CmdShow         = "show"
	CmdAdd          = "add"
	CmdSpend        = "spend"
	CmdReset        = "reset"
	CmdList         = "list"
	CmdDelete       = "delete"
	CmdDetermination = "determination"
)

// Commands builds the /dune command tree. Skill and drive choices come
// from the ruleset.
func Commands(rs *rules.Ruleset) []*discordgo.ApplicationCommand {
	minOne := 1.0
	zero := 0.0

	skillChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(rs.Skills.Names))
	for _, name := range rs.Skills.Names {
		skillChoices = append(skillChoices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}
	driveChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(rs.Drives.Names))
	for _, name := range rs.Drives.Names {
		driveChoices = append(driveChoices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}
	systemChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(dice.Systems))
	for _, system := range dice.Systems {
		systemChoices = append(systemChoices, &discordgo.ApplicationCommandOptionChoice{Name: string(system), Value: string(system)})
	}
	stepChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(entities.CreationSteps))
	for _, step := range entities.CreationSteps {
		stepChoices = append(stepChoices, &discordgo.ApplicationCommandOptionChoice{Name: string(step), Value: string(step)})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandName,
			Description: "Dune: Adventures in the Imperium",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        CmdRoll,
					Description: "Roll dice with any supported system",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "system",
							Description: "Dice system (standard by default)",
							Choices:     systemChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "dice",
							Description: "Dice notation such as 3d6+2 (standard and exploding)",
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "count",
							Description: "Number of dice (wod and dune)",
							MinValue:    &minOne,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "difficulty",
							Description: "World of Darkness difficulty",
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "specialty",
							Description: "World of Darkness specialty: tens count twice",
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "target",
							Description: "Target number for a 2d20 roll",
						},
					},
				},
				{
					Name:        CmdTest,
					Description: "Take a skill test with your character",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "skill",
							Description: "Skill to test",
							Required:    true,
							Choices:     skillChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "drive",
							Description: "Drive that motivates the attempt",
							Required:    true,
							Choices:     driveChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "difficulty",
							Description: "Successes needed (default 1)",
							MinValue:    &minOne,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "bonus",
							Description: "Extra dice bought with momentum or threat",
							MinValue:    &zero,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "assist",
							Description: "Dice from assisting characters",
							MinValue:    &zero,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "determination",
							Description: "Spend a point of determination for an extra die",
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "complication",
							Description: "Complication range starts at this face (default 20)",
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "character",
							Description: "Character ID (defaults to your first character here)",
						},
					},
				},
				{
					Name:        GroupCreate,
					Description: "Build a character step by step",
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        CmdStart,
							Description: "Start or resume character creation",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
						{
							Name:        CmdStep,
							Description: "Submit one creation step",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "step",
									Description: "Step to submit",
									Required:    true,
									Choices:     stepChoices,
								},
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "value",
									Description: "Step input, e.g. Battle=9, Move=7 or Duty: my statement; Faith: ...",
								},
							},
						},
						{
							Name:        CmdStatus,
							Description: "Show creation progress",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
						{
							Name:        CmdOptions,
							Description: "List archetypes, or talents and assets open to your archetypes",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
						{
							Name:        CmdFinalize,
							Description: "Finish creation and save the character",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
						{
							Name:        CmdCancel,
							Description: "Abandon character creation",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
					},
				},
				{
					Name:        GroupPool,
					Description: "Momentum and threat of this channel",
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        CmdShow,
							Description: "Show the pool",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
						{
							Name:        CmdAdd,
							Description: "Change momentum and threat (negative values remove)",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionInteger,
									Name:        "momentum",
									Description: "Momentum change",
								},
								{
									Type:        discordgo.ApplicationCommandOptionInteger,
									Name:        "threat",
									Description: "Threat change",
								},
							},
						},
						{
							Name:        CmdSpend,
							Description: "Spend momentum",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionInteger,
									Name:        "amount",
									Description: "Momentum to spend",
									Required:    true,
									MinValue:    &minOne,
								},
							},
						},
						{
							Name:        CmdReset,
							Description: "Set momentum and threat to zero",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
						{
							Name:        CmdList,
							Description: "List every pool in this server",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
					},
				},
				{
					Name:        GroupCharacter,
					Description: "Manage your characters",
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        CmdList,
							Description: "List your characters in this server",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
						{
							Name:        CmdShow,
							Description: "Show a character sheet",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "id",
									Description: "Character ID (defaults to your first character here)",
								},
							},
						},
						{
							Name:        CmdDelete,
							Description: "Delete one of your characters",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "id",
									Description: "Character ID",
									Required:    true,
								},
							},
						},
						{
							Name:        CmdDetermination,
							Description: "Gain or lose determination",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionInteger,
									Name:        "change",
									Description: "Points to add (negative removes)",
									Required:    true,
								},
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "id",
									Description: "Character ID (defaults to your first character here)",
								},
							},
						},
					},
				},
				{
					Name:        CmdHelp,
					Description: "How to use the bot",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
			},
		},
	}
}
