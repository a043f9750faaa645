package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dune-bot-discord/internal/dice"
	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/handlers/discord/utils"
	"github.com/KirkDiggler/dune-bot-discord/internal/services/checks"
)

// Command is a parsed /dune invocation
type Command struct {
	Group     string
	Name      string
	UserID    string
	GuildID   string
	ChannelID string
	Options   []*discordgo.ApplicationCommandInteractionDataOption
}

// Reply is what the bot sends back
type Reply struct {
	Content    string
	Ephemeral  bool
	Components []discordgo.MessageComponent
}

// ParseCommand extracts the subcommand path and caller from an interaction
func ParseCommand(i *discordgo.InteractionCreate) *Command {
	data := i.ApplicationCommandData()
	group, name, options := utils.CommandPath(data.Options)

	return &Command{
		Group:     group,
		Name:      name,
		UserID:    interactionUserID(i),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Options:   options,
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// Path is the group and name joined for logging
func (c *Command) Path() string {
	if c.Group == "" {
		return c.Name
	}
	return c.Group + " " + c.Name
}

func (c *Command) Text(name string) string {
	return utils.GetStringOption(c.Options, name)
}

func (c *Command) Int(name string) (int, bool) {
	return utils.GetIntOption(c.Options, name)
}

func (c *Command) IntOr(name string, fallback int) int {
	if v, ok := c.Int(name); ok {
		return v
	}
	return fallback
}

func (c *Command) Bool(name string) bool {
	return utils.GetBoolOption(c.Options, name)
}

// Dispatch runs a command against the services and renders the reply
func (h *Handler) Dispatch(ctx context.Context, cmd *Command) (*Reply, error) {
	if cmd.UserID == "" || cmd.GuildID == "" {
		return nil, dnderr.InvalidArgument("this command only works inside a server")
	}

	switch cmd.Group {
	case "":
		switch cmd.Name {
		case CmdRoll:
			return h.handleRoll(cmd)
		case CmdTest:
			return h.handleTest(ctx, cmd)
		case CmdHelp:
			return &Reply{Content: helpText, Ephemeral: true}, nil
		}
	case GroupCreate:
		return h.handleCreate(ctx, cmd)
	case GroupPool:
		return h.handlePool(ctx, cmd)
	case GroupCharacter:
		return h.handleCharacter(ctx, cmd)
	}

	return nil, dnderr.InvalidArgumentf("unknown command '%s'", cmd.Path())
}

func (h *Handler) handleRoll(cmd *Command) (*Reply, error) {
	tag := cmd.Text("system")
	if tag == "" {
		tag = string(dice.SystemStandard)
	}
	system, err := dice.ParseSystem(tag)
	if err != nil {
		return nil, err
	}

	params := dice.Params{
		Count:      cmd.IntOr("count", 0),
		Difficulty: cmd.IntOr("difficulty", 0),
		Specialty:  cmd.Bool("specialty"),
		Target:     cmd.IntOr("target", 0),
	}

	label := string(system)
	switch system {
	case dice.SystemStandard, dice.SystemExploding:
		notation := cmd.Text("dice")
		if notation == "" {
			notation = "1d20"
		}
		n, err := dice.ParseNotation(notation)
		if err != nil {
			return nil, err
		}
		params.Count, params.Sides, params.Modifier = n.Count, n.Sides, n.Modifier
		label = n.String()
		if system == dice.SystemExploding {
			label += "!"
		}
	case dice.SystemWorldOfDarkness:
		label = fmt.Sprintf("%d dice", params.Count)
	case dice.SystemDune:
		label = "2d20"
	}

	res, err := h.ServiceProvider.Dice.Roll(system, params)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: formatRoll(label, res)}, nil
}

func (h *Handler) handleTest(ctx context.Context, cmd *Command) (*Reply, error) {
	out, err := h.ServiceProvider.ChecksService.Perform(ctx, &checks.PerformInput{
		UserID:                cmd.UserID,
		GuildID:               cmd.GuildID,
		ChannelID:             cmd.ChannelID,
		CharacterID:           cmd.Text("character"),
		Skill:                 cmd.Text("skill"),
		Drive:                 cmd.Text("drive"),
		Difficulty:            cmd.IntOr("difficulty", 1),
		BonusDice:             cmd.IntOr("bonus", 0),
		AssistDice:            cmd.IntOr("assist", 0),
		UseDetermination:      cmd.Bool("determination"),
		ComplicationThreshold: cmd.IntOr("complication", 0),
	})
	if err != nil {
		return nil, err
	}
	return &Reply{Content: formatTest(out)}, nil
}

func (h *Handler) handleCreate(ctx context.Context, cmd *Command) (*Reply, error) {
	svc := h.ServiceProvider.CreationService

	switch cmd.Name {
	case CmdStart:
		if _, err := svc.Start(ctx, cmd.UserID, cmd.GuildID); err != nil {
			return nil, err
		}
		return h.progressReply(ctx, cmd)

	case CmdStep:
		step, ok := entities.ParseCreationStep(cmd.Text("step"))
		if !ok {
			return nil, dnderr.Validationf("unknown step '%s'", cmd.Text("step")).
				WithField("step", entities.CreationSteps, cmd.Text("step"))
		}
		payload, err := ParseStepPayload(step, cmd.Text("value"))
		if err != nil {
			return nil, err
		}
		if _, err := svc.Submit(ctx, cmd.UserID, cmd.GuildID, step, payload); err != nil {
			return nil, err
		}
		return h.progressReply(ctx, cmd)

	case CmdStatus:
		return h.progressReply(ctx, cmd)

	case CmdOptions:
		session, err := svc.Get(ctx, cmd.UserID, cmd.GuildID)
		if err != nil {
			return nil, err
		}
		return &Reply{Content: formatOptions(h.ServiceProvider.Ruleset, session), Ephemeral: true}, nil

	case CmdFinalize:
		return h.finalize(ctx, cmd.UserID, cmd.GuildID)

	case CmdCancel:
		return h.cancel(ctx, cmd.UserID, cmd.GuildID)
	}

	return nil, dnderr.InvalidArgumentf("unknown command '%s'", cmd.Path())
}

func (h *Handler) progressReply(ctx context.Context, cmd *Command) (*Reply, error) {
	progress, err := h.ServiceProvider.CreationService.Progress(ctx, cmd.UserID, cmd.GuildID)
	if err != nil {
		return nil, err
	}

	finalize := &ComponentAction{Action: ActionFinalize, UserID: cmd.UserID, GuildID: cmd.GuildID}
	cancel := &ComponentAction{Action: ActionCancel, UserID: cmd.UserID, GuildID: cmd.GuildID}

	return &Reply{
		Content:   formatProgress(progress),
		Ephemeral: true,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Finalize",
						Style:    discordgo.SuccessButton,
						CustomID: finalize.Encode(),
						Disabled: progress.Blocker != nil,
					},
					discordgo.Button{
						Label:    "Cancel",
						Style:    discordgo.DangerButton,
						CustomID: cancel.Encode(),
					},
				},
			},
		},
	}, nil
}

func (h *Handler) finalize(ctx context.Context, userID, guildID string) (*Reply, error) {
	char, err := h.ServiceProvider.CreationService.Finalize(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: "✅ Character created!\n" + formatCharacter(char)}, nil
}

func (h *Handler) cancel(ctx context.Context, userID, guildID string) (*Reply, error) {
	if err := h.ServiceProvider.CreationService.Cancel(ctx, userID, guildID); err != nil {
		return nil, err
	}
	return &Reply{Content: "Character creation cancelled.", Ephemeral: true}, nil
}

func (h *Handler) handlePool(ctx context.Context, cmd *Command) (*Reply, error) {
	svc := h.ServiceProvider.PoolService
	if cmd.ChannelID == "" {
		return nil, dnderr.InvalidArgument("pools belong to a channel")
	}

	var (
		pool *entities.ResourcePool
		err  error
	)
	switch cmd.Name {
	case CmdShow:
		pool, err = svc.Get(ctx, cmd.GuildID, cmd.ChannelID)
	case CmdAdd:
		pool, err = svc.Update(ctx, cmd.GuildID, cmd.ChannelID, cmd.IntOr("momentum", 0), cmd.IntOr("threat", 0))
	case CmdSpend:
		pool, err = svc.Spend(ctx, cmd.GuildID, cmd.ChannelID, cmd.IntOr("amount", 0))
	case CmdReset:
		pool, err = svc.Reset(ctx, cmd.GuildID, cmd.ChannelID)
	case CmdList:
		pools, err := svc.List(ctx, cmd.GuildID)
		if err != nil {
			return nil, err
		}
		return &Reply{Content: formatPoolList(pools)}, nil
	default:
		return nil, dnderr.InvalidArgumentf("unknown command '%s'", cmd.Path())
	}
	if err != nil {
		return nil, err
	}
	return &Reply{Content: formatPool(pool)}, nil
}

func (h *Handler) handleCharacter(ctx context.Context, cmd *Command) (*Reply, error) {
	svc := h.ServiceProvider.CharacterService

	switch cmd.Name {
	case CmdList:
		chars, err := svc.ListByOwner(ctx, cmd.UserID, cmd.GuildID)
		if err != nil {
			return nil, err
		}
		return &Reply{Content: formatCharacterList(chars), Ephemeral: true}, nil

	case CmdShow:
		char, err := h.ownedCharacter(ctx, cmd, cmd.Text("id"))
		if err != nil {
			return nil, err
		}
		return &Reply{Content: formatCharacter(char)}, nil

	case CmdDelete:
		id := cmd.Text("id")
		if err := svc.Delete(ctx, cmd.UserID, id); err != nil {
			return nil, err
		}
		return &Reply{Content: fmt.Sprintf("🗑️ Character `%s` deleted.", id), Ephemeral: true}, nil

	case CmdDetermination:
		char, err := h.ownedCharacter(ctx, cmd, cmd.Text("id"))
		if err != nil {
			return nil, err
		}
		char, err = svc.UpdateDetermination(ctx, char.ID, cmd.IntOr("change", 0))
		if err != nil {
			return nil, err
		}
		return &Reply{Content: fmt.Sprintf("%s has %d/%d determination.",
			char.Name, char.Resources.Determination, char.Resources.MaxDetermination)}, nil
	}

	return nil, dnderr.InvalidArgumentf("unknown command '%s'", cmd.Path())
}

// ownedCharacter loads id when given, otherwise the caller's first character
// in the guild. Characters of other users are reported as missing.
func (h *Handler) ownedCharacter(ctx context.Context, cmd *Command, id string) (*entities.Character, error) {
	svc := h.ServiceProvider.CharacterService

	if id != "" {
		char, err := svc.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if char.OwnerID != cmd.UserID || char.RealmID != cmd.GuildID {
			return nil, dnderr.NotFoundf("character '%s' not found", id)
		}
		return char, nil
	}

	chars, err := svc.ListByOwner(ctx, cmd.UserID, cmd.GuildID)
	if err != nil {
		return nil, err
	}
	if len(chars) == 0 {
		return nil, dnderr.NotFound("you have no character in this server")
	}
	return chars[0], nil
}

func (h *Handler) logDispatch(cmd *Command, err error) {
	fields := []zap.Field{
		zap.String("command", cmd.Path()),
		zap.String("user_id", cmd.UserID),
		zap.String("guild_id", cmd.GuildID),
	}
	switch dnderr.GetCode(err) {
	case dnderr.CodeInternal, dnderr.CodeUnknown:
		h.logger.Error("command failed", append(fields, zap.Error(err))...)
	default:
		h.logger.Debug("command rejected", append(fields, zap.Error(err))...)
	}
}
