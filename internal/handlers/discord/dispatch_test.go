package discord_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/suite"

	mockdice "github.com/KirkDiggler/dune-bot-discord/internal/dice/mock"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/handlers/discord"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/characters"
	"github.com/KirkDiggler/dune-bot-discord/internal/services"
	"github.com/KirkDiggler/dune-bot-discord/internal/testutils"
)

type DispatchTestSuite struct {
	suite.Suite
	ctx      context.Context
	roller   *mockdice.ManualMockRoller
	charRepo characters.Repository
	handler  *discord.Handler
}

func (s *DispatchTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.roller = mockdice.NewManualMockRoller()
	s.charRepo = characters.NewInMemoryRepository()

	provider := services.NewProvider(&services.ProviderConfig{
		CharacterRepository: s.charRepo,
		DiceRoller:          s.roller,
	})
	s.handler = discord.NewHandler(&discord.HandlerConfig{ServiceProvider: provider})
}

func TestDispatchSuite(t *testing.T) {
	suite.Run(t, new(DispatchTestSuite))
}

func (s *DispatchTestSuite) command(group, name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discord.Command {
	return &discord.Command{
		Group:     group,
		Name:      name,
		UserID:    "user-1",
		GuildID:   "guild-1",
		ChannelID: "chan-1",
		Options:   options,
	}
}

func str(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func num(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(value)}
}

func flag(name string, value bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionBoolean, Value: value}
}

func (s *DispatchTestSuite) step(step, value string) *discord.Reply {
	reply, err := s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdStep,
		str("step", step), str("value", value)))
	s.Require().NoError(err, step)
	return reply
}

func (s *DispatchTestSuite) TestRoll_StandardNotation() {
	s.roller.SetRolls([]int{3, 4})

	reply, err := s.handler.Dispatch(s.ctx, s.command("", discord.CmdRoll, str("dice", "2d6+1")))
	s.Require().NoError(err)
	s.Contains(reply.Content, "2d6+1")
	s.Contains(reply.Content, "[3, 4]")
	s.Contains(reply.Content, "Total: 8")
}

func (s *DispatchTestSuite) TestRoll_Errors() {
	_, err := s.handler.Dispatch(s.ctx, s.command("", discord.CmdRoll, str("system", "fate")))
	s.True(dnderr.IsValidation(err))

	_, err = s.handler.Dispatch(s.ctx, s.command("", discord.CmdRoll, str("dice", "lots of dice")))
	s.True(dnderr.IsValidation(err))

	// Dune rolls need a target
	_, err = s.handler.Dispatch(s.ctx, s.command("", discord.CmdRoll, str("system", "dune")))
	s.True(dnderr.IsValidation(err))
}

func (s *DispatchTestSuite) TestTest_FeedsChannelPool() {
	s.Require().NoError(s.charRepo.Create(s.ctx, testutils.CreateTestCharacter("char-1", "user-1", "guild-1", "Stilgar")))
	s.roller.SetRolls([]int{1, 15})

	reply, err := s.handler.Dispatch(s.ctx, s.command("", discord.CmdTest,
		str("skill", "Understand"), str("drive", "Duty")))
	s.Require().NoError(err)
	s.Contains(reply.Content, "Stilgar")
	s.Contains(reply.Content, "target 12")
	s.Contains(reply.Content, "Critical success")
	s.Contains(reply.Content, "Momentum **1** | Threat **0**")

	reply, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupPool, discord.CmdShow))
	s.Require().NoError(err)
	s.Equal("Momentum **1** | Threat **0**", reply.Content)
}

func (s *DispatchTestSuite) TestTest_WithoutCharacter() {
	_, err := s.handler.Dispatch(s.ctx, s.command("", discord.CmdTest,
		str("skill", "Battle"), str("drive", "Duty")))
	s.True(dnderr.IsNotFound(err))
	s.Contains(discord.ErrorMessage(err), "no character")
}

func (s *DispatchTestSuite) TestCreate_FullFlow() {
	reply, err := s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdStart))
	s.Require().NoError(err)
	s.True(reply.Ephemeral)
	s.Contains(reply.Content, "0% complete")
	s.Require().Len(reply.Components, 1)

	// Finalize stays disabled until every step passes
	row := reply.Components[0].(discordgo.ActionsRow)
	s.True(row.Components[0].(discordgo.Button).Disabled)

	s.step("name", "Chani")
	s.step("concept", "Daughter of the desert")

	reply, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdOptions))
	s.Require().NoError(err)
	s.Contains(reply.Content, "Fremen")

	s.step("archetype", "Fremen")

	reply, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdOptions))
	s.Require().NoError(err)
	s.Contains(reply.Content, "Sandwalker")

	s.step("skills", "Battle=9, Communicate=5, Discipline=6, Move=7, Understand=4")
	s.step("focuses", "Battle: Knives; Move: Stealth")
	s.step("drives", "Duty=7, Faith=8, Justice=6, Power=4, Truth=5")
	s.step("drive statements", "Duty: The tribe must endure; Faith: The desert provides for the patient; Justice: Harkonnen blood pays for Fremen water")
	s.step("talents", "Sandwalker, Desert Hunter, Wary")
	s.step("assets", "Crysknife, Stillsuit (Superior Quality), Water Rings")
	s.step("traits", "Fremen, Fierce")
	s.step("starting_pools", "1")
	reply = s.step("summary", "")
	s.Contains(reply.Content, "Ready to finalize")
	row = reply.Components[0].(discordgo.ActionsRow)
	s.False(row.Components[0].(discordgo.Button).Disabled)

	reply, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdFinalize))
	s.Require().NoError(err)
	s.Contains(reply.Content, "Character created")
	s.Contains(reply.Content, "Chani")
	s.Contains(reply.Content, "Determination 1/")

	chars, err := s.charRepo.GetByOwnerAndRealm(s.ctx, "user-1", "guild-1")
	s.Require().NoError(err)
	s.Len(chars, 1)

	reply, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCharacter, discord.CmdList))
	s.Require().NoError(err)
	s.Contains(reply.Content, "Chani")
}

func (s *DispatchTestSuite) TestCreate_StepErrors() {
	_, err := s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdStep,
		str("step", "name"), str("value", "Paul")))
	s.True(dnderr.IsState(err))

	_, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdStart))
	s.Require().NoError(err)

	_, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdStep,
		str("step", "equipment"), str("value", "")))
	s.True(dnderr.IsValidation(err))

	// Skipping ahead
	_, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdStep,
		str("step", "skills"), str("value", "Battle=9")))
	s.True(dnderr.IsState(err))

	reply, err := s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdCancel))
	s.Require().NoError(err)
	s.Contains(reply.Content, "cancelled")

	_, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdStatus))
	s.True(dnderr.IsNotFound(err))
}

func (s *DispatchTestSuite) TestComponentAction() {
	_, err := s.handler.Dispatch(s.ctx, s.command(discord.GroupCreate, discord.CmdStart))
	s.Require().NoError(err)

	action := &discord.ComponentAction{Action: discord.ActionCancel, UserID: "user-1", GuildID: "guild-1"}

	_, err = s.handler.HandleComponentAction(s.ctx, "user-2", action)
	s.True(dnderr.IsState(err))

	reply, err := s.handler.HandleComponentAction(s.ctx, "user-1", action)
	s.Require().NoError(err)
	s.Contains(reply.Content, "cancelled")

	action.Action = discord.ActionFinalize
	_, err = s.handler.HandleComponentAction(s.ctx, "user-1", action)
	s.True(dnderr.IsNotFound(err))
}

func (s *DispatchTestSuite) TestPool_Commands() {
	reply, err := s.handler.Dispatch(s.ctx, s.command(discord.GroupPool, discord.CmdAdd,
		num("momentum", 3), num("threat", 2)))
	s.Require().NoError(err)
	s.Equal("Momentum **3** | Threat **2**", reply.Content)

	reply, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupPool, discord.CmdSpend, num("amount", 2)))
	s.Require().NoError(err)
	s.Equal("Momentum **1** | Threat **2**", reply.Content)

	_, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupPool, discord.CmdSpend, num("amount", 5)))
	s.True(dnderr.IsValidation(err))
	s.Contains(discord.ErrorMessage(err), "**amount**")

	reply, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupPool, discord.CmdList))
	s.Require().NoError(err)
	s.Contains(reply.Content, "<#chan-1>")

	reply, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupPool, discord.CmdReset))
	s.Require().NoError(err)
	s.Equal("Momentum **0** | Threat **0**", reply.Content)
}

func (s *DispatchTestSuite) TestCharacter_Commands() {
	s.Require().NoError(s.charRepo.Create(s.ctx, testutils.CreateTestCharacter("char-1", "user-1", "guild-1", "Stilgar")))

	reply, err := s.handler.Dispatch(s.ctx, s.command(discord.GroupCharacter, discord.CmdShow))
	s.Require().NoError(err)
	s.Contains(reply.Content, "Stilgar")
	s.Contains(reply.Content, "Battle 10")
	s.Contains(reply.Content, "Shai-Hulud provides")

	reply, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCharacter, discord.CmdDetermination,
		num("change", 5)))
	s.Require().NoError(err)
	s.Equal("Stilgar has 3/3 determination.", reply.Content)

	elsewhere := s.command(discord.GroupCharacter, discord.CmdShow, str("id", "char-1"))
	elsewhere.GuildID = "guild-2"
	_, err = s.handler.Dispatch(s.ctx, elsewhere)
	s.True(dnderr.IsNotFound(err))

	other := s.command(discord.GroupCharacter, discord.CmdDelete, str("id", "char-1"))
	other.UserID = "user-2"
	_, err = s.handler.Dispatch(s.ctx, other)
	s.True(dnderr.IsNotFound(err))

	_, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCharacter, discord.CmdDelete, str("id", "char-1")))
	s.Require().NoError(err)

	reply, err = s.handler.Dispatch(s.ctx, s.command(discord.GroupCharacter, discord.CmdList))
	s.Require().NoError(err)
	s.Contains(reply.Content, "no characters")
}

func (s *DispatchTestSuite) TestDispatch_Rejects() {
	cmd := s.command("", discord.CmdHelp)
	cmd.GuildID = ""
	_, err := s.handler.Dispatch(s.ctx, cmd)
	s.True(dnderr.IsInvalidArgument(err))

	_, err = s.handler.Dispatch(s.ctx, s.command("", "teleport"))
	s.True(dnderr.IsInvalidArgument(err))

	reply, err := s.handler.Dispatch(s.ctx, s.command("", discord.CmdHelp))
	s.Require().NoError(err)
	s.Contains(reply.Content, "/dune create start")
}

func TestParseCommand(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "guild-1",
		ChannelID: "chan-1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "user-1"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: discord.CommandName,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name: discord.GroupPool,
				Type: discordgo.ApplicationCommandOptionSubCommandGroup,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{{
					Name:    discord.CmdSpend,
					Type:    discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandInteractionDataOption{num("amount", 2)},
				}},
			}},
		},
	}}

	cmd := discord.ParseCommand(i)
	if cmd.Group != discord.GroupPool || cmd.Name != discord.CmdSpend {
		t.Fatalf("unexpected path %q", cmd.Path())
	}
	if cmd.UserID != "user-1" || cmd.GuildID != "guild-1" || cmd.ChannelID != "chan-1" {
		t.Fatalf("unexpected caller %+v", cmd)
	}
	if v, ok := cmd.Int("amount"); !ok || v != 2 {
		t.Fatalf("expected amount 2, got %d", v)
	}
	if cmd.Bool("missing") {
		t.Fatal("missing bool option should be false")
	}
}

func (s *DispatchTestSuite) TestTest_SpendsDetermination() {
	s.Require().NoError(s.charRepo.Create(s.ctx, testutils.CreateTestCharacter("char-1", "user-1", "guild-1", "Stilgar")))
	s.roller.SetRolls([]int{5, 6, 7})

	reply, err := s.handler.Dispatch(s.ctx, s.command("", discord.CmdTest,
		str("skill", "Battle"), str("drive", "Duty"), num("difficulty", 2), flag("determination", true)))
	s.Require().NoError(err)
	s.Contains(reply.Content, "Determination spent (0 left)")
	s.Equal(0, s.roller.Remaining())

	_, err = s.handler.Dispatch(s.ctx, s.command("", discord.CmdTest,
		str("skill", "Battle"), str("drive", "Duty"), flag("determination", true)))
	s.True(dnderr.IsValidation(err))
}
