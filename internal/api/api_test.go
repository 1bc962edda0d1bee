package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susu3304/pokerclub/internal/club"
	"github.com/susu3304/pokerclub/internal/club/clubtest"
	"github.com/susu3304/pokerclub/internal/config"
	"github.com/susu3304/pokerclub/internal/ledger"
)

type testServer struct {
	api   *API
	store *clubtest.MemStore
	admin string
	owner string
	guest string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC))

	store := &clubtest.MemStore{
		Defaults: ledger.GameDefaults{BuyInAmount: 100, RebuyAmount: 100},
		Players: []ledger.Player{
			{ID: "p1", Name: "Ana", Active: true},
			{ID: "p2", Name: "Bruno", Active: true},
		},
	}
	svc := club.NewService(store, club.Options{
		RequireDateNames: true,
		Clock:            clock,
		Logger:           zerolog.Nop(),
	})
	users := clubtest.NewMemUsers(
		club.User{DiscordID: "100", Username: "owner", Role: club.RoleOwner},
		club.User{DiscordID: "200", Username: "admin", Role: club.RoleAdmin},
		club.User{DiscordID: "300", Username: "guest", Role: club.RolePending},
	)
	cfg := &config.Config{JWTSecret: "test-secret", WebBind: "127.0.0.1:0"}
	a := New(cfg, svc, club.NewDirectory(users, "100"), zerolog.Nop())

	ts := &testServer{api: a, store: store}
	ts.owner = ts.token(t, "100", club.RoleOwner)
	ts.admin = ts.token(t, "200", club.RoleAdmin)
	ts.guest = ts.token(t, "300", club.RolePending)
	return ts
}

func (ts *testServer) token(t *testing.T, id string, role club.Role) string {
	t.Helper()
	tok, err := ts.api.issueToken(club.User{DiscordID: id, Role: role}, time.Now())
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.api.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestReadsAreOpenMutationsAreNot(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "GET", "/api/players", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]ledger.Player](t, rec), 2)

	for _, tok := range []string{"", ts.guest, "garbage"} {
		rec = ts.do(t, "POST", "/api/game", tok, map[string]interface{}{"player_ids": []string{"p1"}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeBody[errorBody](t, rec)
		assert.Equal(t, "forbidden", body.Kind)
		assert.True(t, body.Blocking)
	}

	rec = ts.do(t, "GET", "/api/me", ts.admin, nil)
	me := decodeBody[map[string]interface{}](t, rec)
	assert.Equal(t, "admin", me["role"])
	assert.Equal(t, true, me["can_manage"])
}

func TestLiveGameOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "POST", "/api/game/end", ts.admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_active_game", decodeBody[errorBody](t, rec).Kind)

	rec = ts.do(t, "POST", "/api/game", ts.admin, map[string]interface{}{"player_ids": []string{"p1", "p2"}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, "POST", "/api/game", ts.admin, map[string]interface{}{"player_ids": []string{"p1"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "game_already_active", decodeBody[errorBody](t, rec).Kind)

	rec = ts.do(t, "POST", "/api/game/players/p2/rebuy", ts.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// lenient chip input: junk is zero, fractions truncate
	rec = ts.do(t, "PUT", "/api/game/players/p1/chips", ts.admin, `{"final_chips": "lots"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, "PUT", "/api/game/players/p2/chips", ts.admin, `{"final_chips": 150.9}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[map[string]interface{}](t, rec)
	assert.Equal(t, float64(300), view["total_invested"])
	assert.Equal(t, float64(150), view["total_distributed"])
	assert.Equal(t, false, view["balanced"])

	rec = ts.do(t, "POST", "/api/game/end", ts.admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "unbalanced", decodeBody[errorBody](t, rec).Kind)

	rec = ts.do(t, "PUT", "/api/game/players/p1/chips", ts.admin, `{"final_chips": "150"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, "PUT", "/api/game/name", ts.admin, `{"name": "tuesday"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_date_format", decodeBody[errorBody](t, rec).Kind)

	rec = ts.do(t, "POST", "/api/game/end", ts.admin, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decodeBody[ledger.Session](t, rec)
	assert.Equal(t, "14/10/26", sess.Name)

	rec = ts.do(t, "GET", "/api/game", "", nil)
	assert.Equal(t, false, decodeBody[map[string]interface{}](t, rec)["active"])
}

func TestPersistenceErrorIsTransient(t *testing.T) {
	ts := newTestServer(t)
	ts.store.FailWith = errors.New("db down")

	rec := ts.do(t, "POST", "/api/players", ts.admin, `{"name": "Carla"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "persistence", body.Kind)
	assert.False(t, body.Blocking)
	assert.NotContains(t, body.Error, "db down")
}

func TestCashierSettleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.store.Sessions = []ledger.Session{{
		ID: "s1", Name: "07/10/26", Version: 1,
		Participants: []ledger.Participant{
			{PlayerID: "p1", Name: "Ana", TotalInvested: 100, FinalChips: 160},
			{PlayerID: "p2", Name: "Bruno", TotalInvested: 100, FinalChips: 40},
		},
	}}

	rec := ts.do(t, "GET", "/api/cashier", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeBody[map[string]interface{}](t, rec)
	assert.Equal(t, float64(60), report["total_to_receive"])

	rec = ts.do(t, "POST", "/api/cashier/p2/settle", ts.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[map[string]int](t, rec)["settled_entries"])

	rec = ts.do(t, "POST", "/api/cashier/p2/settle", ts.admin, nil)
	assert.Equal(t, 0, decodeBody[map[string]int](t, rec)["settled_entries"])

	rec = ts.do(t, "DELETE", "/api/players/p2", ts.admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "referential_integrity", decodeBody[errorBody](t, rec).Kind)

	rec = ts.do(t, "GET", "/api/players/p2/in-use", "", nil)
	assert.Equal(t, true, decodeBody[map[string]bool](t, rec)["in_use"])
}

func TestSessionEditVersioning(t *testing.T) {
	ts := newTestServer(t)
	body := `{"name": "1/10/26", "participants": [
		{"player_id": "p1", "total_invested": 100, "final_chips": 50},
		{"player_id": "p2", "total_invested": "100", "final_chips": 150}
	]}`
	rec := ts.do(t, "POST", "/api/sessions", ts.admin, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decodeBody[ledger.Session](t, rec)

	edit := strings.Replace(body, `"name": "1/10/26"`, `"name": "2/10/26", "version": 1`, 1)
	rec = ts.do(t, "PUT", "/api/sessions/"+sess.ID, ts.admin, edit)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeBody[ledger.Session](t, rec).Version)

	rec = ts.do(t, "PUT", "/api/sessions/"+sess.ID, ts.admin, edit)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "version_conflict", decodeBody[errorBody](t, rec).Kind)

	rec = ts.do(t, "GET", "/api/sessions/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, "DELETE", "/api/sessions/"+sess.ID, ts.admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, "POST", "/api/sessions", ts.admin, `{"name": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionBodyCannotSettle(t *testing.T) {
	ts := newTestServer(t)
	body := `{"name": "1/10/26", "participants": [
		{"player_id": "p1", "total_invested": 100, "final_chips": 50, "paid": "settled"},
		{"player_id": "p2", "total_invested": 100, "final_chips": 150, "paid": true}
	]}`
	rec := ts.do(t, "POST", "/api/sessions", ts.admin, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decodeBody[ledger.Session](t, rec)
	for _, p := range sess.Participants {
		assert.Equal(t, ledger.Unsettled, p.Paid, p.PlayerID)
	}

	rec = ts.do(t, "POST", "/api/cashier/p1/settle", ts.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// a rename that resubmits the same results keeps p1 settled and p2 owed
	rec = ts.do(t, "PUT", "/api/sessions/"+sess.ID, ts.admin, strings.Replace(body, "1/10/26", "2/10/26", 1))
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeBody[map[string]interface{}](t, ts.do(t, "GET", "/api/cashier", "", nil))
	assert.Equal(t, float64(0), report["total_to_receive"])
	assert.Equal(t, float64(50), report["total_to_pay_out"])
}

func TestDinnerOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "POST", "/api/dinner", ts.admin, map[string]interface{}{"player_ids": []string{"p1", "p2"}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, "PUT", "/api/dinner/players/p1", ts.admin, `{"is_eating": true, "is_drinking": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, "PUT", "/api/dinner/players/p2", ts.admin, `{"is_eating": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, "PUT", "/api/dinner/costs", ts.admin, `{"food_cost": "100", "drink_cost": "oops"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[map[string]interface{}](t, rec)
	assert.Equal(t, "50.00", view["food_per_person"])
	assert.Equal(t, "0.00", view["drink_per_person"])

	rec = ts.do(t, "POST", "/api/dinner/finalize", ts.admin, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, "GET", "/api/dinners", "", nil)
	assert.Len(t, decodeBody[[]map[string]interface{}](t, rec), 1)

	rec = ts.do(t, "DELETE", "/api/dinner", ts.admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_active_dinner", decodeBody[errorBody](t, rec).Kind)
}

func TestRoleManagement(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "PUT", "/api/users/300/role", ts.admin, `{"role": "admin"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, "PUT", "/api/users/300/role", ts.owner, `{"role": "wizard"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, "PUT", "/api/users/300/role", ts.owner, `{"role": "admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// the old token now carries admin rights
	rec = ts.do(t, "POST", "/api/players", ts.guest, `{"name": "Carla"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, "GET", "/api/users", ts.guest, nil)
	assert.Len(t, decodeBody[[]club.User](t, rec), 3)
}

func TestStreamPushesSnapshots(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.api.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := bufio.NewReader(resp.Body)
	next := func() club.Snapshot {
		for {
			line, err := events.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var snap club.Snapshot
				require.NoError(t, json.Unmarshal([]byte(data), &snap))
				return snap
			}
		}
	}

	first := next()
	assert.Nil(t, first.LiveGame)

	rec := ts.do(t, "POST", "/api/game", ts.admin, map[string]interface{}{"player_ids": []string{"p1"}})
	require.Equal(t, http.StatusCreated, rec.Code)

	second := next()
	require.NotNil(t, second.LiveGame)
	assert.Len(t, second.LiveGame.Participants, 1)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{&ledger.ValidationError{Kind: ledger.NegativeAmount}, http.StatusUnprocessableEntity, "negative_amount"},
		{&ledger.PreconditionError{Kind: ledger.ZeroInvestment}, http.StatusConflict, "zero_investment"},
		{&ledger.ReferentialIntegrityError{PlayerID: "p"}, http.StatusConflict, "referential_integrity"},
		{club.ErrVersionConflict, http.StatusConflict, "version_conflict"},
		{club.ErrForbidden, http.StatusForbidden, "forbidden"},
		{club.ErrNotFound, http.StatusNotFound, "not_found"},
		{&ledger.PersistenceError{Op: "x", Err: errors.New("boom")}, http.StatusServiceUnavailable, "persistence"},
		{errors.New("surprise"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, body := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.kind)
		assert.Equal(t, tc.kind, body.Kind)
	}
}
