package verify

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/discord-verifier/internal/domain"
)

const (
	visitColor        = 0x3498DB
	verificationColor = 0x00FF00
)

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// ipBlock renders the quoted IP-information section used by the webhook
// descriptions, degrading to a notice when enrichment returned no data.
func ipBlock(ip string, info *domain.IPInfo) string {
	if info == nil {
		return fmt.Sprintf("**📍 IP Information:**\n> **IP:** `%s`\n> ⚠️ No additional geolocation data available", ip)
	}
	return fmt.Sprintf("**📍 IP Information:**\n"+
		"> **IP:** `%s`\n"+
		"> **ISP:** `%s`\n"+
		"> **ASN:** `%s`\n"+
		"> **Country:** `%s`\n"+
		"> **Region:** `%s`\n"+
		"> **City:** `%s`\n"+
		"> **Postal Code:** `%s`\n"+
		"> **Coordinates:** `%v, %v`\n"+
		"> **Timezone:** `%s`\n"+
		"> **Mobile:** `%s`\n"+
		"> **VPN:** `%s`\n"+
		"> **Bot/Hosting:** `%s`",
		ip,
		orUnknown(info.ISP), orUnknown(info.ASN), orUnknown(info.Country),
		orUnknown(info.Region), orUnknown(info.City), orUnknown(info.Zip),
		info.Lat, info.Lon,
		orUnknown(info.Timezone), yesNo(info.Mobile), yesNo(info.Proxy), yesNo(info.Hosting))
}

func systemBlock(osName, browser, userAgent string) string {
	return fmt.Sprintf("**💻 System Information:**\n> **OS:** `%s`\n> **Browser:** `%s`\n\n**🔍 User Agent:**\n```\n%s\n```",
		osName, browser, userAgent)
}

// visitWebhookPayload is the webhook body for one page visit.
func visitWebhookPayload(vr domain.VisitRecord) *discordgo.WebhookParams {
	description := fmt.Sprintf("**🌐 New Page Visit**\n\n%s\n\n%s",
		ipBlock(vr.IP, vr.Info), systemBlock(vr.OS, vr.Browser, vr.UserAgent))

	return &discordgo.WebhookParams{
		Username: "Page Visit Logger",
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "👁️‍🗨️ New Visit Detected",
			Color:       visitColor,
			Description: description,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page: %s · %s", vr.Path, vr.ID)},
		}},
	}
}

// visitChannelEmbed is the field-based audit embed posted to the log channel.
func visitChannelEmbed(vr domain.VisitRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "👁️‍🗨️ New Visit Detected",
		Color:     visitColor,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	location := fmt.Sprintf("**IP:** `%s`\n", vr.IP)
	if vr.Info != nil {
		location += fmt.Sprintf("**Country:** %s\n**City:** %s\n**Region:** %s",
			orUnknown(vr.Info.Country), orUnknown(vr.Info.City), orUnknown(vr.Info.Region))
	} else {
		location += "⚠️ Info not available"
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "📍 IP & Location", Value: location,
	})

	if vr.Info != nil {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{
				Name: "🌐 Internet Provider",
				Value: fmt.Sprintf("**ISP:** %s\n**Organization:** %s\n**ASN:** %s",
					orUnknown(vr.Info.ISP), orUnknown(vr.Info.Org), orUnknown(vr.Info.ASN)),
			},
			&discordgo.MessageEmbedField{
				Name: "📊 Additional Details",
				Value: fmt.Sprintf("**Postal Code:** %s\n**Timezone:** %s\n**VPN/Proxy:** %s\n**Hosting:** %s",
					orUnknown(vr.Info.Zip), orUnknown(vr.Info.Timezone),
					yesNo(vr.Info.Proxy), yesNo(vr.Info.Hosting)),
			},
		)
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:   "💻 System",
			Value:  fmt.Sprintf("**OS:** %s\n**Browser:** %s", vr.OS, vr.Browser),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "📄 Page",
			Value:  fmt.Sprintf("`%s`", vr.Path),
			Inline: true,
		},
	)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "User Agent: " + truncate(vr.UserAgent, 100)}
	return embed
}

// verificationWebhookPayload is the webhook body for one completed
// verification.
func verificationWebhookPayload(vr domain.VerificationRecord) *discordgo.WebhookParams {
	userBlock := fmt.Sprintf("**👤 Discord User:**\n> **Username:** `%s`\n> **ID:** `%s`\n> **Joined the server:** `%s`",
		vr.User.Username, vr.User.UserID, vr.User.JoinedAt.Format(time.RFC3339))

	description := fmt.Sprintf("**🎉 User Verified!**\n\n%s\n\n%s\n\n%s",
		userBlock, ipBlock(vr.IP, vr.Info), systemBlock(vr.OS, vr.Browser, vr.UserAgent))

	return &discordgo.WebhookParams{
		Username: "Verification Logger",
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "✅ New Verification Completed",
			Color:       verificationColor,
			Description: description,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Footer:      &discordgo.MessageEmbedFooter{Text: vr.ID},
		}},
	}
}

// verificationChannelEmbed is the field-based audit embed for the log channel.
func verificationChannelEmbed(vr domain.VerificationRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "✅ New Verification Completed",
		Color:     verificationColor,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "👤 User",
		Value: fmt.Sprintf("**Username:** %s\n**ID:** %s", vr.User.Username, vr.User.UserID),
	})

	if vr.Info != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🌐 Location",
			Value: fmt.Sprintf("**IP:** `%s`\n**Country:** %s\n**City:** %s\n**ISP:** %s",
				vr.IP, orUnknown(vr.Info.Country), orUnknown(vr.Info.City), orUnknown(vr.Info.ISP)),
			Inline: true,
		})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🌐 IP", Value: fmt.Sprintf("`%s`", vr.IP), Inline: true,
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "💻 System",
		Value:  fmt.Sprintf("**OS:** %s\n**Browser:** %s", vr.OS, vr.Browser),
		Inline: true,
	})
	return embed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
