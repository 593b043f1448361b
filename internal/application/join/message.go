package join

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// verificationMessage composes the join embed: instructions, the token for
// manual entry, the quick-access link when configured, and a link button.
func verificationMessage(guildName, token, redemptionLink string) *discordgo.MessageSend {
	welcome := "Welcome!"
	if guildName != "" {
		welcome = fmt.Sprintf("Welcome to **%s**!", guildName)
	}

	embed := &discordgo.MessageEmbed{
		Title: "🔐 Verification Required",
		Description: welcome +
			"\n\nTo access the server you need to verify yourself using the token below.",
		Color: 0x00FF00,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "📋 Instructions",
				Value: "1. Press the **Verify** button to open the official page\n" +
					"2. The page detects your token and processes the verification\n" +
					"3. If the link does not open, copy the token manually",
			},
			{
				Name:  "🔑 Verification Token",
				Value: fmt.Sprintf("`%s`", token),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "This token is unique and only works once",
		},
	}

	if redemptionLink != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🌐 Quick access",
			Value: fmt.Sprintf("[Click here to verify yourself](%s)", redemptionLink),
		})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🌐 Quick access",
			Value: "Set the `VERIFICATION_URL` variable to enable the automatic button.",
		})
	}

	msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	if redemptionLink != "" {
		msg.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label: "Verify",
						Style: discordgo.LinkButton,
						URL:   redemptionLink,
						Emoji: &discordgo.ComponentEmoji{Name: "✅"},
					},
				},
			},
		}
	}
	return msg
}
