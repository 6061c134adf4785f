// Package assistant answers natural-language questions about groups,
// expenses and balances. Questions are routed by keyword to canned answers
// enriched with live ledger data; when an OpenAI key is configured the
// routed answer is upgraded through a chat completion, falling back to the
// keyword answer if the model call fails.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
	"github.com/fairsplit/fairsplit/internal/service"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// Answer is the assistant's reply plus the context it was grounded on.
type Answer struct {
	Answer      string `json:"answer"`
	ContextUsed string `json:"context_used"`
}

// Assistant routes questions over the live ledger.
type Assistant struct {
	store    storage.Store
	balances *service.BalanceService
	llm      *openai.Client // nil when no API key is configured
	model    string
}

// New creates an Assistant. apiKey may be empty to run keyword-only.
func New(store storage.Store, balances *service.BalanceService, apiKey, model string) *Assistant {
	a := &Assistant{store: store, balances: balances, model: model}
	if apiKey != "" {
		a.llm = openai.NewClient(apiKey)
	}
	return a
}

// Ask answers a question for a user, optionally scoped to one group.
func (a *Assistant) Ask(ctx context.Context, query string, userID int64, groupID *int64) (*Answer, error) {
	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	answer, err := a.route(ctx, query, user, groupID)
	if err != nil {
		return nil, err
	}

	if a.llm != nil {
		if refined := a.refine(ctx, query, answer); refined != "" {
			answer.Answer = refined
		}
	}
	return answer, nil
}

func (a *Assistant) route(ctx context.Context, query string, user *models.User, groupID *int64) (*Answer, error) {
	q := strings.ToLower(query)

	switch {
	case containsAny(q, "balance", "owe", "owes", "debt"):
		return a.balanceAnswer(ctx, user, groupID)

	case containsAny(q, "expense", "add", "create", "split"):
		return &Answer{
			ContextUsed: "Expense creation help",
			Answer: "To add an expense, post it to the group's expense log. " +
				"You can split it equally among members or by custom percentages. " +
				"Pick the group, say who paid, and list the participants.",
		}, nil

	case containsAny(q, "group", "new group"):
		return &Answer{
			ContextUsed: "Group creation help",
			Answer: "To create a group, give it a name and list the members by name and email. " +
				"Members with known emails are matched to existing accounts.",
		}, nil

	case containsAny(q, "help", "how", "what"):
		return &Answer{
			ContextUsed: "General help",
			Answer: "I can help with expense tracking. You can create groups, " +
				"add expenses split equally or by percentage, and check who owes what. " +
				"Which feature do you want help with?",
		}, nil

	default:
		return &Answer{
			ContextUsed: "General response",
			Answer: "I'm an expense tracking assistant. I can help with creating groups, " +
				"adding expenses, splitting costs and checking balances.",
		}, nil
	}
}

// balanceAnswer reads the live ledger so the reply carries real numbers.
func (a *Assistant) balanceAnswer(ctx context.Context, user *models.User, groupID *int64) (*Answer, error) {
	if groupID != nil {
		group, err := a.store.GetGroup(ctx, *groupID)
		if err != nil {
			return nil, err
		}
		views, err := a.balances.GroupBalances(ctx, *groupID)
		if err != nil {
			return nil, err
		}
		for _, b := range views {
			if b.UserID != user.ID {
				continue
			}
			return &Answer{
				ContextUsed: fmt.Sprintf("Balance for group %q", group.Name),
				Answer:      describeBalance(user.Name, group.Name, b.AmountCents),
			}, nil
		}
		return &Answer{
			ContextUsed: fmt.Sprintf("Balance for group %q", group.Name),
			Answer:      fmt.Sprintf("%s is not a member of %q.", user.Name, group.Name),
		}, nil
	}

	view, err := a.balances.UserBalances(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(view.Groups) == 0 {
		return &Answer{
			ContextUsed: "Balances across all groups",
			Answer:      fmt.Sprintf("%s is not in any group yet, so there is nothing owed either way.", user.Name),
		}, nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Across %d group(s) your net balance is %s.", len(view.Groups), money.Format(view.NetCents))
	for _, g := range view.Groups {
		fmt.Fprintf(&sb, " In %q: %s.", g.GroupName, money.Format(g.AmountCents))
	}
	return &Answer{
		ContextUsed: "Balances across all groups",
		Answer:      sb.String(),
	}, nil
}

func describeBalance(userName, groupName string, cents int64) string {
	switch {
	case cents > 0:
		return fmt.Sprintf("In %q, %s is owed %s by the rest of the group.", groupName, userName, money.Format(cents))
	case cents < 0:
		return fmt.Sprintf("In %q, %s owes %s to the rest of the group.", groupName, userName, money.Format(-cents))
	default:
		return fmt.Sprintf("In %q, %s is settled up.", groupName, userName)
	}
}

// refine runs the routed answer through the model. An empty result means
// the caller should keep the keyword answer.
func (a *Assistant) refine(ctx context.Context, query string, routed *Answer) string {
	resp, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are an assistant for an expense splitting app. " +
					"Answer briefly using only the provided context. Context: " + routed.ContextUsed + ". " +
					"Grounded answer: " + routed.Answer,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: query,
			},
		},
	})
	if err != nil {
		slog.Warn("Chat completion failed, using keyword answer", "error", err)
		return ""
	}
	if len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
