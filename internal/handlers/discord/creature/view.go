package creature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/creaturemon/internal/catalog"
	"github.com/KirkDiggler/creaturemon/internal/entities"
	"github.com/KirkDiggler/creaturemon/internal/viewmodel"
)

const (
	colorDraft = 0x9b59b6 // Purple
	colorReady = 0x2ecc71 // Green
	colorList  = 0x3498db // Blue
)

// BuildDraftView renders a draft as a preview embed plus its selection components
func BuildDraftView(draft *viewmodel.Creation) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	cat := draft.Catalog()
	attrs := draft.Attributes()
	current := draft.Current()

	hitPoints := 0
	if current != nil {
		hitPoints = current.HitPoints
	}

	name := draft.Name()
	if name == "" {
		name = "Unnamed creature"
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🧬 " + name,
		Description: "Pick attributes and an avatar, then name your creature.",
		Color:       colorDraft,
		Fields:      make([]*discordgo.MessageEmbedField, 0, len(entities.AttributeTypes)+2),
	}

	for _, t := range entities.AttributeTypes {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   t.DisplayName(),
			Value:  attributeLabel(cat, t, attrs.Get(t)),
			Inline: true,
		})
	}

	avatarName := "Not chosen"
	if avatar, ok := cat.Avatar(draft.Avatar()); ok {
		avatarName = avatar.Name
		if avatar.ImageURL != "" {
			embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatar.ImageURL}
		}
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Avatar", Value: avatarName, Inline: true},
		&discordgo.MessageEmbedField{Name: "Hit Points", Value: strconv.Itoa(hitPoints), Inline: true},
	)

	canSave := draft.CanSave()
	if canSave {
		embed.Color = colorReady
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Ready to save!"}
	} else {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Still needed: " + strings.Join(draft.Missing(), ", ")}
	}

	components := make([]discordgo.MessageComponent, 0, 5)
	for _, t := range entities.AttributeTypes {
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{attributeSelect(cat, t, attrs.Get(t))},
		})
	}
	components = append(components,
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{avatarSelect(cat, draft.Avatar())},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Name",
					Style:    discordgo.PrimaryButton,
					CustomID: CustomIDName,
					Emoji:    &discordgo.ComponentEmoji{Name: "✏️"},
				},
				discordgo.Button{
					Label:    "Suggest name",
					Style:    discordgo.SecondaryButton,
					CustomID: CustomIDSuggestName,
					Emoji:    &discordgo.ComponentEmoji{Name: "🎲"},
				},
				discordgo.Button{
					Label:    "Save",
					Style:    discordgo.SuccessButton,
					CustomID: CustomIDSave,
					Disabled: !canSave,
					Emoji:    &discordgo.ComponentEmoji{Name: "💾"},
				},
			},
		},
	)

	return embed, components
}

// attributeSelect lists the real options; index 0 is the hint and becomes the placeholder
func attributeSelect(cat *catalog.Catalog, t entities.AttributeType, value int) discordgo.SelectMenu {
	options := cat.Attributes[t]
	placeholder := "Select " + strings.ToLower(t.DisplayName())
	if len(options) > 0 {
		placeholder = options[0].Label
	}

	menuOptions := make([]discordgo.SelectMenuOption, 0, len(options))
	for index, opt := range options {
		if index == 0 && opt.Value == 0 {
			continue
		}
		menuOptions = append(menuOptions, discordgo.SelectMenuOption{
			Label:       opt.Label,
			Value:       strconv.Itoa(index),
			Description: fmt.Sprintf("%s %d", t.DisplayName(), opt.Value),
			Default:     value != 0 && opt.Value == value,
		})
	}

	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    CustomIDAttribute + ":" + string(t),
		Placeholder: placeholder,
		Options:     menuOptions,
	}
}

func avatarSelect(cat *catalog.Catalog, selected int) discordgo.SelectMenu {
	options := make([]discordgo.SelectMenuOption, 0, len(cat.Avatars))
	for _, a := range cat.Avatars {
		options = append(options, discordgo.SelectMenuOption{
			Label:   a.Name,
			Value:   strconv.Itoa(a.ID),
			Default: a.ID == selected,
		})
	}

	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    CustomIDAvatar,
		Placeholder: "Select avatar",
		Options:     options,
	}
}

func attributeLabel(cat *catalog.Catalog, t entities.AttributeType, value int) string {
	if value == 0 {
		return "Not chosen"
	}
	if index := cat.Attributes.IndexOf(t, value); index >= 0 {
		return fmt.Sprintf("%s (%d)", cat.Attributes[t][index].Label, value)
	}
	return strconv.Itoa(value)
}

// BuildRosterEmbed renders a saved roster
func BuildRosterEmbed(cat *catalog.Catalog, roster []*entities.Creature) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "📚 Your Creatures",
		Description: fmt.Sprintf("You have %d creature(s):", len(roster)),
		Color:       colorList,
	}

	var sb strings.Builder
	for _, c := range roster {
		avatarName := "no avatar"
		if avatar, ok := cat.Avatar(c.Avatar); ok {
			avatarName = avatar.Name
		}
		sb.WriteString(fmt.Sprintf("**%s** (%s) - HP %d\n", c.DisplayName(), avatarName, c.HitPoints))
		sb.WriteString(fmt.Sprintf("  INT %d | STR %d | END %d\n",
			c.Attributes.Intelligence, c.Attributes.Strength, c.Attributes.Endurance))
	}
	embed.Fields = []*discordgo.MessageEmbedField{{
		Name:  "Roster",
		Value: truncate(sb.String(), 1024),
	}}
	return embed
}

// truncate keeps text under Discord's field limit
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit-4]
	if idx := strings.LastIndex(cut, "\n"); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "\n..."
}
