package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/ronda/internal/dice"
	"github.com/KirkDiggler/ronda/internal/models"
)

// service implements the Service interface
type service struct {
	// roller selects flavor lines
	roller *dice.Roller
}

// New creates a new messaging service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	return &service{
		roller: dice.New(&dice.Config{Seed: cfg.Seed}),
	}, nil
}

func (s *service) pick(lines []string) string {
	return s.roller.Pick(lines)
}

// GetBetResolvedMessage returns the announcement for a settled bet
func (s *service) GetBetResolvedMessage(ctx context.Context, input *GetBetResolvedMessageInput) (*GetBetResolvedMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var headline string
	var flavor []string

	switch input.Status {
	case models.BetStatusWon:
		headline = fmt.Sprintf("✅ Bet \"%s\" came true! %d credits paid out to %d %s.",
			input.Title, input.TotalPaid, input.StakerCount, plural(input.StakerCount, "backer", "backers"))
		flavor = []string{
			"Drinks are on the winners.",
			"The house weeps quietly in the corner.",
			"Someone check the odds maker's pulse.",
			"Fortune favors the bold (and the slightly tipsy).",
		}
	case models.BetStatusLost:
		headline = fmt.Sprintf("❌ Bet \"%s\" fell through. The house keeps the stakes.", input.Title)
		flavor = []string{
			"Better luck next round.",
			"The house always wins. Eventually.",
			"Drown your sorrows responsibly.",
			"That's why they call it gambling.",
		}
	case models.BetStatusCancelled:
		headline = fmt.Sprintf("↩️ Bet \"%s\" was called off. %d credits refunded.", input.Title, input.TotalPaid)
		flavor = []string{
			"No harm, no foul.",
			"Everyone gets their credits back. Boring, but fair.",
			"Let's pretend this never happened.",
		}
	default:
		return nil, fmt.Errorf("bet status %q is not a resolution", input.Status)
	}

	return &GetBetResolvedMessageOutput{
		Message: headline + " " + s.pick(flavor),
	}, nil
}

// GetDuelResolvedMessage returns the announcement for a settled duel
func (s *service) GetDuelResolvedMessage(ctx context.Context, input *GetDuelResolvedMessageInput) (*GetDuelResolvedMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	decidedBy := "The admin has spoken"
	if input.ByVote {
		decidedBy = "The room has voted"
	}

	if input.IsDraw {
		flavor := []string{
			"Nobody wins, nobody cries.",
			"Evenly matched. Rematch?",
			"A draw! Both of you drink anyway.",
		}
		return &GetDuelResolvedMessageOutput{
			Message: fmt.Sprintf("🤝 %s: \"%s\" ends in a draw. Stakes refunded. %s", decidedBy, input.Title, s.pick(flavor)),
		}, nil
	}

	flavor := []string{
		"Victory tastes like cheap beer.",
		"Bow before the champion.",
		"Somebody get the loser a glass of water.",
		"A legend is born. Or at least a Tuesday night story.",
	}
	return &GetDuelResolvedMessageOutput{
		Message: fmt.Sprintf("🏆 %s: %s wins \"%s\" and takes %d credits! %s",
			decidedBy, input.WinnerName, input.Title, input.Pot, s.pick(flavor)),
	}, nil
}

// GetPollOpenedMessage returns the question posted when a duel goes to a vote
func (s *service) GetPollOpenedMessage(ctx context.Context, input *GetPollOpenedMessageInput) (*GetPollOpenedMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	question := fmt.Sprintf("Who won: %s or %s?", input.ChallengerName, input.OpponentName)
	flavor := []string{
		"Majority rules.",
		"Vote wisely, grudges last forever.",
		"Democracy, but drunker.",
	}

	return &GetPollOpenedMessageOutput{
		Question: question,
		Message:  fmt.Sprintf("🗳️ %s %s", question, s.pick(flavor)),
	}, nil
}

// GetVoteCastMessage returns the notice posted after a member votes
func (s *service) GetVoteCastMessage(ctx context.Context, input *GetVoteCastMessageInput) (*GetVoteCastMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	return &GetVoteCastMessageOutput{
		Message: fmt.Sprintf("%s voted for %s", input.VoterName, input.OptionName),
	}, nil
}

// GetErrorMessage returns a user-friendly error message
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var title string
	var messages []string

	switch input.ErrorType {
	case ErrorTypeInsufficientCredits:
		title = "Not Enough Credits"
		messages = []string{
			"Your wallet is thirstier than you are. Not enough credits.",
			"You can't bet what you don't have. Yet.",
			"Credit check failed. Maybe sit this one out?",
		}
	case ErrorTypeNotAdmin:
		title = "Admins Only"
		messages = []string{
			"Only the room admin can do that.",
			"Nice try, but you're not the boss of this room.",
		}
	case ErrorTypeNotMember:
		title = "Not A Member"
		messages = []string{
			"You need to join the room first.",
			"Members only! Grab an invite code.",
		}
	case ErrorTypeAlreadyResolved:
		title = "Already Settled"
		messages = []string{
			"That one's already been settled.",
			"Too late, the credits have moved on.",
		}
	case ErrorTypeNotFound:
		title = "Not Found"
		messages = []string{
			"Couldn't find that. Maybe it expired?",
			"Whatever you're looking for, it's gone.",
		}
	case ErrorTypeInvalidInput:
		title = "Invalid Input"
		messages = []string{
			"Something about that request doesn't add up.",
			"Check your numbers and try again.",
		}
	default:
		title = "Something Went Wrong"
		messages = []string{
			"Oops! Something went wrong. Try again in a moment.",
			"The bartender dropped something. Try again.",
		}
	}

	return &GetErrorMessageOutput{
		Title:   title,
		Message: s.pick(messages),
	}, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
