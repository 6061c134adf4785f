package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
	"github.com/fairsplit/fairsplit/internal/service"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Members     []struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"members"`
}

func (a *API) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, models.Invalid("invalid request body"))
		return
	}

	members := make([]service.MemberInput, len(req.Members))
	for i, m := range req.Members {
		members[i] = service.MemberInput{Name: m.Name, Email: m.Email}
	}

	group, err := a.groups.CreateGroup(r.Context(), req.Name, req.Description, members)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (a *API) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := a.groups.ListGroups(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (a *API) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "group_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	group, err := a.groups.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// balanceView is a balance plus its formatted decimal amount.
type balanceView struct {
	models.Balance
	Amount string `json:"amount"`
}

func (a *API) handleGroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "group_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	balances, err := a.balances.GroupBalances(r.Context(), groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]balanceView, len(balances))
	for i, b := range balances {
		views[i] = balanceView{Balance: b, Amount: money.Format(b.AmountCents)}
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *API) handleUserBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := a.balances.UserBalances(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*models.UserBalance
		Net string `json:"net"`
	}{view, money.Format(view.NetCents)})
}

type createExpenseRequest struct {
	Description string `json:"description"`

	// AmountCents and Amount are alternatives; exactly one must be set.
	// Amount is a decimal string like "12.34".
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`

	PaidBy       int64            `json:"paid_by"`
	SplitKind    models.SplitKind `json:"split_kind"`
	Participants []struct {
		UserID     int64    `json:"user_id"`
		Percentage *float64 `json:"percentage"`
	} `json:"participants"`
}

func (a *API) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "group_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, models.Invalid("invalid request body"))
		return
	}

	amountCents := req.AmountCents
	if req.Amount != "" {
		if amountCents != 0 {
			writeError(w, r, models.Invalid("set either amount or amount_cents, not both"))
			return
		}
		amountCents, err = money.ParseDecimal(req.Amount)
		if errors.Is(err, money.ErrInvalidAmount) {
			err = models.Invalid("invalid amount %q", req.Amount)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	input := service.CreateExpenseInput{
		Description: req.Description,
		AmountCents: amountCents,
		PaidBy:      req.PaidBy,
		SplitKind:   req.SplitKind,
	}
	for _, p := range req.Participants {
		input.Participants = append(input.Participants, service.ParticipantInput{
			UserID:     p.UserID,
			Percentage: p.Percentage,
		})
	}

	expense, err := a.expenses.CreateExpense(r.Context(), groupID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseView(expense))
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "group_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := a.expenses.ListGroupExpenses(r.Context(), groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]any, len(expenses))
	for i := range expenses {
		views[i] = expenseView(&expenses[i])
	}
	writeJSON(w, http.StatusOK, views)
}

func expenseView(expense *models.Expense) any {
	return struct {
		*models.Expense
		Amount string `json:"amount"`
	}{expense, money.Format(expense.AmountCents)}
}

type chatRequest struct {
	Query   string `json:"query"`
	UserID  int64  `json:"user_id"`
	GroupID *int64 `json:"group_id"`
}

func (a *API) handleChatAsk(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, models.Invalid("invalid request body"))
		return
	}
	if req.Query == "" {
		writeError(w, r, models.Invalid("query is required"))
		return
	}

	answer, err := a.assistant.Ask(r.Context(), req.Query, req.UserID, req.GroupID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, models.Invalid("invalid %s", name)
	}
	return id, nil
}
