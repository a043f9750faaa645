package discord

import (
	"fmt"
	"strings"

	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

// ErrorMessage renders a service error for the user. Internal failures get
// a generic message; the detail stays in the logs.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch dnderr.GetCode(err) {
	case dnderr.CodeValidation:
		msg := "❌ " + userMessage(err)
		if hint := fieldHint(dnderr.GetMeta(err)); hint != "" {
			msg += "\n" + hint
		}
		return msg
	case dnderr.CodeFailedPrecondition:
		return "⚠️ " + userMessage(err)
	case dnderr.CodeNotFound:
		return "🔍 " + userMessage(err)
	case dnderr.CodeInvalidArgument, dnderr.CodeAlreadyExists:
		return "❌ " + userMessage(err)
	default:
		return "❌ Something went wrong. Please try again."
	}
}

// userMessage capitalizes the error chain for display
func userMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func fieldHint(meta map[string]any) string {
	field, ok := meta[dnderr.MetaField]
	if !ok {
		return ""
	}
	expected, hasExpected := meta[dnderr.MetaExpected]
	actual, hasActual := meta[dnderr.MetaActual]

	switch {
	case hasExpected && hasActual:
		return fmt.Sprintf("**%v**: expected %v, got %v", field, expected, actual)
	case hasExpected:
		return fmt.Sprintf("**%v**: expected %v", field, expected)
	default:
		return ""
	}
}
