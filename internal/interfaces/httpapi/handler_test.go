package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/domain/player"
	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/account/identity"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/fantasy-draft/internal/platform/id"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
	"github.com/stretchr/testify/require"
)

const testJobToken = "job-secret"

type fixedFeed map[int][]playerstats.StatLine

func (f fixedFeed) GameweekStats(_ context.Context, gameweek int) ([]playerstats.StatLine, error) {
	return append([]playerstats.StatLine(nil), f[gameweek]...), nil
}

type apiEnvelope struct {
	APIVersion string `json:"apiVersion"`
	Data       any    `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func (e apiEnvelope) reason() string {
	if e.Error == nil || len(e.Error.Errors) == 0 {
		return ""
	}
	return e.Error.Errors[0].Reason
}

type testAPI struct {
	t      *testing.T
	server *httptest.Server
	drafts *usecase.DraftService
}

func newTestAPI(t *testing.T, feed fixedFeed) *testAPI {
	t.Helper()

	players := make([]player.Player, 0, 4)
	for i := 1; i <= 4; i++ {
		players = append(players, player.Player{
			ID:        fmt.Sprintf("p%d", i),
			Name:      fmt.Sprintf("Player %d", i),
			Position:  player.PositionForward,
			Price:     60,
			Available: true,
		})
	}
	participants := []participant.Participant{
		{ID: "admin", Name: "Commissioner", IsActive: true, IsAdmin: true},
		{ID: "A", Name: "Manager A", IsActive: true},
		{ID: "B", Name: "Manager B", IsActive: true},
	}

	store := memory.NewSeededStore(players, participants, nil)
	draftRepo := memory.NewDraftRepository(store)
	playerRepo := memory.NewPlayerRepository(store)
	participantRepo := memory.NewParticipantRepository(store)
	chipRepo := memory.NewChipRepository(store)
	scoreRepo := memory.NewScoreRepository(store)
	logger := logging.NewNop()
	ids := idgen.NewUUIDGenerator()

	drafts := usecase.NewDraftService(usecase.DefaultDraftID, draftRepo, playerRepo, participantRepo, ids, logger)
	handler := NewHandler(
		usecase.NewPlayerService(playerRepo),
		drafts,
		usecase.NewChipService(usecase.DefaultDraftID, chipRepo, draftRepo, participantRepo, ids, logger),
		usecase.NewScoringService(
			usecase.DefaultDraftID,
			draftRepo,
			chipRepo,
			scoreRepo,
			memory.NewSelectionRepository(store),
			memory.NewCalendarRepository(store),
			feed,
			usecase.ScoringConfig{Workers: 2},
			logger,
		),
		usecase.NewLeaderboardService(usecase.DefaultDraftID, draftRepo, participantRepo, scoreRepo),
		usecase.NewScheduleService(memory.NewCalendarRepository(store), nil, 0, logger),
		logger,
	)
	verifier := identity.NewStaticVerifier(map[string]string{
		"token-admin": "admin",
		"token-a":     "A",
		"token-b":     "B",
	})

	server := httptest.NewServer(NewRouter(handler, verifier, logger, RouterConfig{InternalJobToken: testJobToken}))
	t.Cleanup(server.Close)

	return &testAPI{t: t, server: server, drafts: drafts}
}

func (a *testAPI) do(method, path, token, body string) (int, apiEnvelope) {
	a.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(a.t.Context(), method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case strings.HasPrefix(token, "job:"):
		req.Header.Set("X-Internal-Job-Token", strings.TrimPrefix(token, "job:"))
	case token != "":
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)

	var envelope apiEnvelope
	require.NoError(a.t, sonic.Unmarshal(raw, &envelope), "body: %s", raw)
	require.Equal(a.t, "2.0", envelope.APIVersion)
	return resp.StatusCode, envelope
}

func (a *testAPI) configure(quota int) {
	a.t.Helper()

	_, err := a.drafts.Configure(a.t.Context(), usecase.ConfigureDraftInput{
		Order:     []string{"A", "B"},
		OrderMode: draft.OrderModeFixed,
		Quota:     quota,
	})
	require.NoError(a.t, err)
}

func TestRouter_DraftToLeaderboard(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, fixedFeed{
		1: {
			{PlayerID: "p1", Gameweek: 1, Minutes: 90, Points: 10},
			{PlayerID: "p2", Gameweek: 1, Minutes: 90, Points: 2},
			{PlayerID: "p3", Gameweek: 1, Minutes: 90, Points: 3},
			{PlayerID: "p4", Gameweek: 1, Minutes: 90, Points: 1},
		},
	})
	api.configure(2)

	status, env := api.do(http.MethodPost, "/v1/draft/allocations", "token-a", `{"playerId":"p1"}`)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "draftNotInProgress", env.reason())

	status, env = api.do(http.MethodPost, "/v1/draft/start", "token-a", "")
	require.Equal(t, http.StatusForbidden, status, "non-admin start")
	require.Equal(t, "forbidden", env.reason())

	status, _ = api.do(http.MethodPost, "/v1/draft/start", "token-admin", "")
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodPost, "/v1/draft/allocations", "token-a", `{"playerId":"p1"}`)
	require.Equal(t, http.StatusCreated, status)

	status, env = api.do(http.MethodDelete, "/v1/draft/allocations/p1?participant_id=A", "token-a", "")
	require.Equal(t, http.StatusForbidden, status, "non-admin deallocate")
	require.Equal(t, "forbidden", env.reason())

	status, env = api.do(http.MethodPost, "/v1/draft/allocations", "token-a", `{"playerId":"p2"}`)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "notYourTurn", env.reason())

	status, env = api.do(http.MethodPost, "/v1/draft/allocations", "token-b", `{"playerId":"p1"}`)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "playerUnavailable", env.reason())

	for _, pick := range []struct{ token, player string }{
		{"token-b", "p2"},
		{"token-a", "p3"},
		{"token-b", "p4"},
	} {
		status, _ = api.do(http.MethodPost, "/v1/draft/allocations", pick.token, `{"playerId":"`+pick.player+`"}`)
		require.Equal(t, http.StatusCreated, status, "allocate %s", pick.player)
	}

	status, env = api.do(http.MethodGet, "/v1/draft", "", "")
	require.Equal(t, http.StatusOK, status)
	state := env.Data.(map[string]any)
	require.Equal(t, string(draft.PhaseComplete), state["phase"])

	status, env = api.do(http.MethodGet, "/v1/players?available=true", "", "")
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, env.Data)

	status, _ = api.do(http.MethodPost, "/v1/internal/gameweeks/1/compute", "job:wrong", "")
	require.Equal(t, http.StatusUnauthorized, status)

	status, env = api.do(http.MethodPost, "/v1/internal/gameweeks/1/compute", "job:"+testJobToken, "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, env.Data, 2)

	status, env = api.do(http.MethodPost, "/v1/internal/gameweeks/2/compute", "job:"+testJobToken, "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "feedDataUnavailable", env.reason())

	status, env = api.do(http.MethodGet, "/v1/leaderboard", "", "")
	require.Equal(t, http.StatusOK, status)
	entries := env.Data.([]any)
	require.Len(t, entries, 2)
	first := entries[0].(map[string]any)
	require.Equal(t, "A", first["participantId"])
	require.EqualValues(t, 1, first["rank"])

	status, env = api.do(http.MethodGet, "/v1/gameweeks/1/breakdown", "token-b", "")
	require.Equal(t, http.StatusOK, status)
	breakdown := env.Data.(map[string]any)
	require.Equal(t, "B", breakdown["participantId"])
	require.Len(t, breakdown["players"], 2)
}

func TestRouter_ChipLifecycle(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, fixedFeed{})
	api.configure(2)

	status, env := api.do(http.MethodPost, "/v1/internal/chips", "job:"+testJobToken,
		`{"ownerId":"A","kind":"point_redirect","startGameweek":3,"endGameweek":5}`)
	require.Equal(t, http.StatusCreated, status)
	chipID := env.Data.(map[string]any)["id"].(string)

	status, env = api.do(http.MethodGet, "/v1/chips/me", "token-a", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, env.Data, 1)

	consumePath := "/v1/chips/" + chipID + "/consume"

	status, env = api.do(http.MethodPost, consumePath, "token-b", `{"gameweek":4,"targetKind":"participant","targetId":"A"}`)
	require.Equal(t, http.StatusForbidden, status, "only the owner may consume")
	require.Equal(t, "forbidden", env.reason())

	status, env = api.do(http.MethodPost, consumePath, "token-a", `{"gameweek":6,"targetKind":"participant","targetId":"B"}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "chipOutOfWindow", env.reason())

	status, env = api.do(http.MethodPost, consumePath, "token-a", `{"gameweek":4}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "targetRequired", env.reason())

	status, env = api.do(http.MethodPost, consumePath, "token-a", `{"gameweek":4,"targetKind":"participant","targetId":"B"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, env.Data.(map[string]any)["used"])

	status, env = api.do(http.MethodPost, consumePath, "token-a", `{"gameweek":4,"targetKind":"participant","targetId":"B"}`)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "chipAlreadyUsed", env.reason())
}

func TestRouter_RejectsMissingOrMalformedAuth(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, fixedFeed{})

	status, env := api.do(http.MethodGet, "/v1/chips/me", "", "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "unauthorized", env.reason())

	status, _ = api.do(http.MethodGet, "/v1/chips/me", "unknown-token", "")
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_ValidatesPayloads(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, fixedFeed{})
	api.configure(2)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "empty allocate body", method: http.MethodPost, path: "/v1/draft/allocations"},
		{name: "allocate without player", method: http.MethodPost, path: "/v1/draft/allocations", body: `{}`},
		{name: "malformed json", method: http.MethodPost, path: "/v1/draft/allocations", body: `{"playerId":`},
		{name: "bad gameweek", method: http.MethodPut, path: "/v1/selections/zero", body: `{"captainId":"p1","viceCaptainId":"p2"}`},
		{name: "captain equals vice", method: http.MethodPut, path: "/v1/selections/1", body: `{"captainId":"p1","viceCaptainId":"p1"}`},
		{name: "unknown target kind", method: http.MethodPost, path: "/v1/chips/x/consume", body: `{"gameweek":1,"targetKind":"team"}`},
	}

	for _, tc := range tests {
		status, env := api.do(tc.method, tc.path, "token-a", tc.body)
		require.Equal(t, http.StatusBadRequest, status, tc.name)
		require.Equal(t, "invalidInput", env.reason(), tc.name)
	}
}

func TestRouter_ScheduleWithoutQueueIsUnavailable(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, fixedFeed{})

	status, _ := api.do(http.MethodPost, "/v1/internal/gameweeks/1/schedule", "token-admin", "")
	require.Equal(t, http.StatusUnauthorized, status)

	status, env := api.do(http.MethodPost, "/v1/internal/gameweeks/1/schedule", "job:"+testJobToken, "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "dependencyUnavailable", env.reason())

	status, env = api.do(http.MethodPost, "/v1/internal/gameweeks/schedule", "job:"+testJobToken, "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "dependencyUnavailable", env.reason())
}
