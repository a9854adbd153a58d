package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/ronda/internal/common/validation"
	"github.com/KirkDiggler/ronda/internal/models"
	"github.com/KirkDiggler/ronda/internal/repositories/ledger"
	"github.com/KirkDiggler/ronda/internal/services/bet"
	"github.com/KirkDiggler/ronda/internal/services/duel"
	"github.com/KirkDiggler/ronda/internal/services/messaging"
	"github.com/KirkDiggler/ronda/internal/services/room"
	"github.com/bwmarrin/discordgo"
)

const (
	colorInfo    = 0x00ff00
	colorPending = 0xffcc00
	colorError   = 0xff0000
)

// Component custom IDs are "ronda:<action>:<args...>"
const (
	componentPrefix   = "ronda:"
	actionAcceptDuel  = "accept"
	actionDeclineDuel = "decline"
	actionVote        = "vote"
)

func componentID(action string, args ...string) string {
	return componentPrefix + strings.Join(append([]string{action}, args...), ":")
}

// parseComponentID splits a custom ID into its action and arguments
func parseComponentID(customID string) (string, []string, bool) {
	if !strings.HasPrefix(customID, componentPrefix) {
		return "", nil, false
	}
	parts := strings.Split(strings.TrimPrefix(customID, componentPrefix), ":")
	if parts[0] == "" {
		return "", nil, false
	}
	return parts[0], parts[1:], true
}

func mention(userID string) string {
	if userID == "" || userID == models.SystemUserID {
		return userID
	}
	return "<@" + userID + ">"
}

func renderRoom(r *models.Room) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       r.Title,
		Description: fmt.Sprintf("Invite code: **%s**\nEveryone starts with %d credits.", r.InviteCode, models.StartingCredits),
		Color:       colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Members", Value: fmt.Sprintf("%d", len(r.MemberIDs)), Inline: true},
			{Name: "Admin", Value: mention(r.OwnerID), Inline: true},
		},
	}
}

func renderLeaderboard(title string, entries []*models.LeaderboardEntry) *discordgo.MessageEmbed {
	if len(entries) == 0 {
		return &discordgo.MessageEmbed{
			Title:       title,
			Description: "Nobody has logged a drink yet.",
			Color:       colorInfo,
		}
	}

	var sb strings.Builder
	for idx, entry := range entries {
		fmt.Fprintf(&sb, "%d. %s: %d pts, %d credits\n", idx+1, mention(entry.UserID), entry.Score, entry.Credits)
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: sb.String(),
		Color:       colorInfo,
	}
}

func renderBet(b *models.Bet) *discordgo.MessageEmbed {
	color := colorInfo
	if b.Status == models.BetStatusPending {
		color = colorPending
	}

	return &discordgo.MessageEmbed{
		Title:       b.Title,
		Description: fmt.Sprintf("On %s at %.2fx", mention(b.TargetUserID), b.Odds),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: string(b.Status), Inline: true},
			{Name: "Staked", Value: fmt.Sprintf("%d", b.TotalStaked()), Inline: true},
			{Name: "Deadline", Value: fmt.Sprintf("<t:%d:R>", b.Deadline.Unix()), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Bet " + b.ID},
	}
}

func renderDuel(d *models.Duel) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Status", Value: string(d.Status), Inline: true},
		{Name: "Wager", Value: fmt.Sprintf("%d each", d.Wager), Inline: true},
	}

	switch d.Status {
	case models.DuelStatusInProgress:
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Ends", Value: fmt.Sprintf("<t:%d:R>", d.EndTime.Unix()), Inline: true,
		})
	case models.DuelStatusResolved:
		winner := "Draw"
		if d.WinnerID != models.DrawWinnerID {
			winner = mention(d.WinnerID)
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Winner", Value: winner, Inline: true})
	}

	color := colorInfo
	if d.Status == models.DuelStatusAwaitingAcceptance || d.Status == models.DuelStatusInPoll {
		color = colorPending
	}

	return &discordgo.MessageEmbed{
		Title:       d.Title,
		Description: fmt.Sprintf("%s vs %s", mention(d.ChallengerID), mention(d.OpponentID)),
		Color:       color,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Duel " + d.ID},
	}
}

func duelButtons(d *models.Duel) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Accept",
			Style:    discordgo.SuccessButton,
			CustomID: componentID(actionAcceptDuel, d.ID),
			Emoji:    &discordgo.ComponentEmoji{Name: "⚔️"},
		},
		discordgo.Button{
			Label:    "Decline",
			Style:    discordgo.DangerButton,
			CustomID: componentID(actionDeclineDuel, d.ID),
		},
	}
}

func renderPoll(p *models.Poll) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(p.Options))
	for _, option := range p.Options {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   optionLabel(option),
			Value:  fmt.Sprintf("%d votes", len(p.Votes[option])),
			Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       p.Question,
		Description: fmt.Sprintf("%d votes decide it.", p.MajorityThreshold()),
		Color:       colorPending,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Poll " + p.ID},
	}
}

func voteButtons(p *models.Poll) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(p.Options))
	for _, option := range p.Options {
		style := discordgo.PrimaryButton
		if option == models.DrawWinnerID {
			style = discordgo.SecondaryButton
		}
		buttons = append(buttons, discordgo.Button{
			Label:    optionLabel(option),
			Style:    style,
			CustomID: componentID(actionVote, p.ID, option),
		})
	}
	return buttons
}

// optionLabel is the button text for a poll option. Button labels cannot
// render mentions.
func optionLabel(option string) string {
	if option == models.DrawWinnerID {
		return "Draw"
	}
	return option
}

// errorTypeFor classifies a service error for the user-facing message
func errorTypeFor(err error) messaging.ErrorType {
	switch {
	case errors.Is(err, models.ErrInsufficientCredits):
		return messaging.ErrorTypeInsufficientCredits
	case errors.Is(err, room.ErrNotRoomAdmin),
		errors.Is(err, bet.ErrNotRoomAdmin),
		errors.Is(err, duel.ErrNotRoomAdmin):
		return messaging.ErrorTypeNotAdmin
	case errors.Is(err, room.ErrNotRoomMember),
		errors.Is(err, bet.ErrNotRoomMember),
		errors.Is(err, duel.ErrNotRoomMember),
		errors.Is(err, duel.ErrNotDuelOpponent):
		return messaging.ErrorTypeNotMember
	case errors.Is(err, bet.ErrBetNotPending),
		errors.Is(err, duel.ErrDuelAlreadyResolved),
		errors.Is(err, duel.ErrInvalidDuelState),
		errors.Is(err, duel.ErrPollClosed):
		return messaging.ErrorTypeAlreadyResolved
	case errors.Is(err, ledger.ErrRoomNotFound),
		errors.Is(err, ledger.ErrBetNotFound),
		errors.Is(err, ledger.ErrDuelNotFound),
		errors.Is(err, ledger.ErrPollNotFound):
		return messaging.ErrorTypeNotFound
	case errors.Is(err, validation.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, bet.ErrInvalidResolution),
		errors.Is(err, bet.ErrDeadlinePassed),
		errors.Is(err, duel.ErrSelfDuel),
		errors.Is(err, duel.ErrInvalidWinner),
		errors.Is(err, duel.ErrInvalidOption):
		return messaging.ErrorTypeInvalidInput
	default:
		return messaging.ErrorTypeUnknown
	}
}
