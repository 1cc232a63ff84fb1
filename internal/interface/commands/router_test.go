package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/application/query"
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
	"github.com/c4t-hub/botcamp-hub/internal/infrastructure/external/gateway"
	"github.com/c4t-hub/botcamp-hub/internal/interface/commands/handler"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKE GATEWAY SERVER
// ══════════════════════════════════════════════════════════════════════════════

type sentMessage struct {
	Channel string
	Content string
	ReplyTo int64
}

// fakeGateway serves the gateway API over httptest and records sends.
type fakeGateway struct {
	srv *httptest.Server

	mu        sync.Mutex
	sends     []sentMessage
	roles     map[int64][]string
	nextMsgID int64
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()

	g := &fakeGateway{
		roles:     make(map[int64][]string),
		nextMsgID: 1000,
	}
	g.srv = httptest.NewServer(http.HandlerFunc(g.handle))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGateway) handle(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	ok := func(result interface{}) {
		raw, _ := json.Marshal(result)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": json.RawMessage(raw),
		})
	}

	switch r.URL.Path {
	case "/api/ping":
		ok(true)
	case "/api/guilds.sendMessage":
		g.mu.Lock()
		g.nextMsgID++
		msg := sentMessage{
			Channel: body["channel"].(string),
			Content: body["content"].(string),
		}
		if v, has := body["reply_to"]; has {
			msg.ReplyTo = int64(v.(float64))
		}
		g.sends = append(g.sends, msg)
		id := g.nextMsgID
		g.mu.Unlock()
		ok(map[string]interface{}{"message_id": id})
	case "/api/guilds.memberRoles":
		g.mu.Lock()
		roles := g.roles[int64(body["member_id"].(float64))]
		g.mu.Unlock()
		ok(map[string]interface{}{"roles": roles})
	case "/api/guilds.resolveChannel":
		ok(map[string]interface{}{"channel_id": 42, "mention": "<#42>", "kind": "voice"})
	default:
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":    false,
			"error": map[string]interface{}{"code": 404, "message": "unknown method"},
		})
	}
}

func (g *fakeGateway) client() *gateway.Client {
	cfg := gateway.DefaultClientConfig("test-token")
	cfg.BaseURL = g.srv.URL
	cfg.RetryAttempts = 0
	return gateway.NewClient(cfg)
}

func (g *fakeGateway) sentMessages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]sentMessage, len(g.sends))
	copy(out, g.sends)
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// FAKE STUDENT STORE
// Only the ranked listing matters for the commands under test.
// ══════════════════════════════════════════════════════════════════════════════

type rankedOnlyRepo struct {
	students []*student.Student
}

func (r *rankedOnlyRepo) Create(ctx context.Context, st *student.Student) error { return nil }
func (r *rankedOnlyRepo) GetByID(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (*student.Student, error) {
	return nil, shared.ErrStudentNotFound
}
func (r *rankedOnlyRepo) GetByIDForUpdate(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (*student.Student, error) {
	return nil, shared.ErrStudentNotFound
}
func (r *rankedOnlyRepo) Update(ctx context.Context, st *student.Student) error { return nil }
func (r *rankedOnlyRepo) Delete(ctx context.Context, guildID shared.GuildID, id shared.StudentID) error {
	return nil
}
func (r *rankedOnlyRepo) GetByIDs(ctx context.Context, guildID shared.GuildID, ids []shared.StudentID) ([]*student.Student, error) {
	return nil, nil
}
func (r *rankedOnlyRepo) Count(ctx context.Context, guildID shared.GuildID) (int, error) {
	return len(r.students), nil
}
func (r *rankedOnlyRepo) Exists(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (bool, error) {
	return false, nil
}

func (r *rankedOnlyRepo) ListRanked(ctx context.Context, guildID shared.GuildID, limit int, useNickname bool) ([]*student.Student, error) {
	if limit <= 0 {
		return []*student.Student{}, nil
	}
	sorted := make([]*student.Student, len(r.students))
	copy(sorted, r.students)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.XP != b.XP {
			return a.XP > b.XP
		}
		return a.DisplayName() < b.DisplayName()
	})
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func rankedStudent(t *testing.T, id int64, name, nickname string, level, xp int) *student.Student {
	t.Helper()
	st, err := student.NewStudent(student.NewStudentParams{
		ID:       id,
		GuildID:  7,
		Name:     name,
		Nickname: nickname,
		Level:    level,
		XP:       xp,
	})
	require.NoError(t, err)
	return st
}

// ══════════════════════════════════════════════════════════════════════════════
// TEST WIRING
// ══════════════════════════════════════════════════════════════════════════════

func newTestRouter(t *testing.T, gw *fakeGateway) (*Router, *gateway.Client) {
	t.Helper()
	client := gw.client()
	return NewRouter(RouterConfig{}, client), client
}

func commandMessage(content string) *gateway.MessageEvent {
	return &gateway.MessageEvent{
		MessageID:   500,
		GuildID:     7,
		ChannelName: "general",
		AuthorID:    99,
		Content:     content,
	}
}

func grantOperator(gw *fakeGateway, memberID int64) {
	gw.mu.Lock()
	gw.roles[memberID] = []string{"Pyrates"}
	gw.mu.Unlock()
}

// ══════════════════════════════════════════════════════════════════════════════
// PARSING
// ══════════════════════════════════════════════════════════════════════════════

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		content string
		name    string
		args    string
		ok      bool
	}{
		{"$setup 2030-01-01", "setup", "2030-01-01", true},
		{"$leaderboard", "leaderboard", "", true},
		{"$evals  3  False", "evals", "3  False", true},
		{"plain chatter", "", "", false},
		{"$", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		name, args, ok := SplitCommand(tt.content, "$")
		assert.Equal(t, tt.ok, ok, tt.content)
		assert.Equal(t, tt.name, name, tt.content)
		assert.Equal(t, tt.args, args, tt.content)
	}
}

func TestSplitArgs_Quoting(t *testing.T) {
	assert.Equal(t, []string{"alerts", "two words here"}, splitArgs(`alerts "two words here"`))
	assert.Equal(t, []string{"a", "b"}, splitArgs("  a   b  "))
	assert.Equal(t, []string{""}, splitArgs(`""`))
	assert.Nil(t, splitArgs(""))
}

func TestParseMemberRef(t *testing.T) {
	for _, ref := range []string{"123", "<@123>", "<@!123>"} {
		id, err := parseMemberRef(ref)
		require.NoError(t, err, ref)
		assert.Equal(t, int64(123), id)
	}

	for _, ref := range []string{"", "bob", "<@>", "-5"} {
		_, err := parseMemberRef(ref)
		assert.Error(t, err, ref)
	}
}

func TestParseBoolArg(t *testing.T) {
	for _, s := range []string{"True", "true", "YES", "1", "on"} {
		v, err := parseBoolArg(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"False", "no", "0", "off"} {
		v, err := parseBoolArg(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := parseBoolArg("maybe")
	assert.Error(t, err)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING & GATING
// ══════════════════════════════════════════════════════════════════════════════

func TestRouter_NonCommandAndUnknownIgnored(t *testing.T) {
	gw := newFakeGateway(t)
	router, client := newTestRouter(t, gw)
	grantOperator(gw, 99)

	require.NoError(t, router.HandleMessage(context.Background(), commandMessage("hello there"), client))
	require.NoError(t, router.HandleMessage(context.Background(), commandMessage("$nosuchcommand"), client))

	assert.Empty(t, gw.sentMessages())
}

func TestRouter_NonOperatorDeniedSilently(t *testing.T) {
	gw := newFakeGateway(t)
	router, client := newTestRouter(t, gw)
	// Author 99 has no roles at all.

	router.RegisterCommand("setup", handler.NewSetupHandler(nil, nil))

	require.NoError(t, router.HandleMessage(context.Background(), commandMessage("$setup 2030-01-01"), client))
	assert.Empty(t, gw.sentMessages())
}

func TestRouter_SetupMissingDateRepliesUsage(t *testing.T) {
	gw := newFakeGateway(t)
	router, client := newTestRouter(t, gw)
	grantOperator(gw, 99)

	// The usage reply happens before the saga is touched.
	router.RegisterCommand("setup", handler.NewSetupHandler(nil, nil))

	require.NoError(t, router.HandleMessage(context.Background(), commandMessage("$setup"), client))

	sends := gw.sentMessages()
	require.Len(t, sends, 1)
	assert.Equal(t, "```$setup <date>```", sends[0].Content)
	assert.Equal(t, int64(500), sends[0].ReplyTo)
	assert.Equal(t, "general", sends[0].Channel)
}

func TestRouter_LeaderboardRepliesBlock(t *testing.T) {
	gw := newFakeGateway(t)
	router, client := newTestRouter(t, gw)
	grantOperator(gw, 99)

	repo := &rankedOnlyRepo{students: []*student.Student{
		rankedStudent(t, 1, "Anna Ivanova", "ann", 3, 25),
		rankedStudent(t, 2, "Bob Lee", "bob", 1, 90),
		rankedStudent(t, 3, "Vera Kim", "vee", 5, 0),
	}}
	router.RegisterCommand("leaderboard", handler.NewLeaderboardHandler(
		query.NewGetLeaderboardHandler(repo, nil),
	))

	require.NoError(t, router.HandleMessage(context.Background(), commandMessage("$leaderboard 2"), client))

	sends := gw.sentMessages()
	require.Len(t, sends, 1)
	want := "```\n" +
		"-----------\n" +
		"LEADERBOARD\n" +
		"-----------\n" +
		" 1. LEVEL  5:    0 XP: vee\n" +
		" 2. LEVEL  3:   25 XP: ann\n" +
		"```"
	assert.Equal(t, want, sends[0].Content)
}

func TestRouter_LeaderboardBadArgumentRepliesUsage(t *testing.T) {
	gw := newFakeGateway(t)
	router, client := newTestRouter(t, gw)
	grantOperator(gw, 99)

	router.RegisterCommand("leaderboard", handler.NewLeaderboardHandler(
		query.NewGetLeaderboardHandler(&rankedOnlyRepo{}, nil),
	))

	require.NoError(t, router.HandleMessage(context.Background(), commandMessage("$leaderboard lots"), client))

	sends := gw.sentMessages()
	require.Len(t, sends, 1)
	assert.Equal(t, "```$leaderboard [n=5] [nick=True]```", sends[0].Content)
}

func TestRouter_GivexpBadMemberRepliesUsage(t *testing.T) {
	gw := newFakeGateway(t)
	router, client := newTestRouter(t, gw)
	grantOperator(gw, 99)

	router.RegisterCommand("givexp", handler.NewGiveXPHandler(nil))

	require.NoError(t, router.HandleMessage(context.Background(), commandMessage("$givexp somebody"), client))

	sends := gw.sentMessages()
	require.Len(t, sends, 1)
	assert.Equal(t, "```$givexp <student> <xp>```", sends[0].Content)
}

func TestRouter_DevAttachWithoutAttachment(t *testing.T) {
	gw := newFakeGateway(t)
	router, client := newTestRouter(t, gw)
	grantOperator(gw, 99)

	router.RegisterCommand("devattach", handler.NewDevAttachHandler(client))

	msg := commandMessage(`$devattach alerts "see the file"`)
	require.NoError(t, router.HandleMessage(context.Background(), msg, client))

	sends := gw.sentMessages()
	require.Len(t, sends, 1)
	assert.Equal(t, "You forgot to include the attachment.", sends[0].Content)
	// Nothing was forwarded to the target channel.
	assert.Equal(t, "general", sends[0].Channel)
}

func TestRouter_DevEchoForwardsQuotedMessage(t *testing.T) {
	gw := newFakeGateway(t)
	router, client := newTestRouter(t, gw)
	grantOperator(gw, 99)

	router.RegisterCommand("devecho", handler.NewDevEchoHandler(client))

	msg := commandMessage(`$devecho #alerts "deadline moved to friday"`)
	require.NoError(t, router.HandleMessage(context.Background(), msg, client))

	sends := gw.sentMessages()
	require.Len(t, sends, 1)
	assert.Equal(t, "alerts", sends[0].Channel)
	assert.Equal(t, "deadline moved to friday", sends[0].Content)
	assert.Zero(t, sends[0].ReplyTo)
}
