// Package api exposes the application over REST: group directory, expense
// log, balance views and the chat assistant.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fairsplit/fairsplit/internal/assistant"
	"github.com/fairsplit/fairsplit/internal/metrics"
	"github.com/fairsplit/fairsplit/internal/middleware"
	"github.com/fairsplit/fairsplit/internal/service"
)

type API struct {
	router    *mux.Router
	groups    *service.GroupService
	expenses  *service.ExpenseService
	balances  *service.BalanceService
	assistant *assistant.Assistant
}

func New(groups *service.GroupService, expenses *service.ExpenseService, balances *service.BalanceService, asst *assistant.Assistant) *API {
	api := &API{
		router:    mux.NewRouter(),
		groups:    groups,
		expenses:  expenses,
		balances:  balances,
		assistant: asst,
	}
	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.Use(middleware.RequestID, middleware.Logging, middleware.Metrics)

	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")
	a.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	a.router.HandleFunc("/groups", a.handleCreateGroup).Methods("POST")
	a.router.HandleFunc("/groups", a.handleListGroups).Methods("GET")
	a.router.HandleFunc("/groups/{group_id}", a.handleGetGroup).Methods("GET")
	a.router.HandleFunc("/groups/{group_id}/balances", a.handleGroupBalances).Methods("GET")
	a.router.HandleFunc("/groups/{group_id}/expenses", a.handleCreateExpense).Methods("POST")
	a.router.HandleFunc("/groups/{group_id}/expenses", a.handleListExpenses).Methods("GET")

	a.router.HandleFunc("/users/{user_id}/balances", a.handleUserBalances).Methods("GET")

	a.router.HandleFunc("/chat/ask", a.handleChatAsk).Methods("POST")
}

// Handler returns the full middleware-wrapped handler chain.
func (a *API) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	}).Handler(a.router)
}
