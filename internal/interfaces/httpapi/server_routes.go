package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/draft", handler.GetDraft)
	mux.HandleFunc("GET /v1/draft/allocations", handler.ListAllocations)
	mux.HandleFunc("GET /v1/draft/squads/{participantID}", handler.GetSquad)
	mux.HandleFunc("GET /v1/gameweeks/{gameweek}/scores", handler.ListGameweekScores)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedDraftRoutes(mux, handler, verifier)
	registerAuthorizedChipRoutes(mux, handler, verifier)
	registerAuthorizedScoringRoutes(mux, handler, verifier)
}

func registerAuthorizedDraftRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/draft/start", RequireAuth(verifier, http.HandlerFunc(handler.StartDraft)))
	mux.Handle("POST /v1/draft/allocations", RequireAuth(verifier, http.HandlerFunc(handler.Allocate)))
	mux.Handle("DELETE /v1/draft/allocations/{playerID}", RequireAuth(verifier, http.HandlerFunc(handler.Deallocate)))
}

func registerAuthorizedChipRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/chips/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyChips)))
	mux.Handle("POST /v1/chips/{chipID}/consume", RequireAuth(verifier, http.HandlerFunc(handler.ConsumeChip)))
}

func registerAuthorizedScoringRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("PUT /v1/selections/{gameweek}", RequireAuth(verifier, http.HandlerFunc(handler.SetSelection)))
	mux.Handle("GET /v1/gameweeks/{gameweek}/breakdown", RequireAuth(verifier, http.HandlerFunc(handler.GetBreakdown)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/chips", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.IssueChip)))
	mux.Handle("POST /v1/internal/gameweeks/{gameweek}/compute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ComputeGameweek)))
	mux.Handle("POST /v1/internal/gameweeks/recompute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecomputeGameweeks)))
	mux.Handle("POST /v1/internal/gameweeks/{gameweek}/schedule", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ScheduleGameweek)))
	mux.Handle("POST /v1/internal/gameweeks/schedule", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ScheduleUpcoming)))
}
