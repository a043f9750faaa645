package utils

import "github.com/bwmarrin/discordgo"

// CommandPath walks subcommand groups and subcommands, returning their names
// and the options of the innermost subcommand.
func CommandPath(options []*discordgo.ApplicationCommandInteractionDataOption) (group, subcommand string, leaf []*discordgo.ApplicationCommandInteractionDataOption) {
	leaf = options
	for len(leaf) == 1 {
		opt := leaf[0]
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			group = opt.Name
		case discordgo.ApplicationCommandOptionSubCommand:
			subcommand = opt.Name
		default:
			return group, subcommand, leaf
		}
		leaf = opt.Options
	}
	return group, subcommand, leaf
}

// GetCommandOption finds an option by name among leaf options
func GetCommandOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

// GetStringOption returns the string value, "" when absent or not a string
func GetStringOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	opt := GetCommandOption(options, name)
	if opt == nil || opt.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}
	return opt.StringValue()
}

// GetIntOption returns the integer value and whether it was supplied
func GetIntOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) (int, bool) {
	opt := GetCommandOption(options, name)
	if opt == nil || opt.Type != discordgo.ApplicationCommandOptionInteger {
		return 0, false
	}
	// Discord sends numbers as JSON floats
	if _, ok := opt.Value.(float64); !ok {
		return 0, false
	}
	return int(opt.IntValue()), true
}

// GetBoolOption returns the boolean value, false when absent
func GetBoolOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	opt := GetCommandOption(options, name)
	if opt == nil || opt.Type != discordgo.ApplicationCommandOptionBoolean {
		return false
	}
	if _, ok := opt.Value.(bool); !ok {
		return false
	}
	return opt.BoolValue()
}
