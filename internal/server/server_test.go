package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/MikeO7/HarborSim/internal/config"
	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/internal/events"
	"github.com/MikeO7/HarborSim/internal/progress"
	"github.com/MikeO7/HarborSim/internal/session"
	"github.com/MikeO7/HarborSim/internal/sim"
)

type fixture struct {
	server  *Server
	session *session.Session
	bus     *events.Bus
	tracker *progress.Tracker
}

func testConfig() config.ServerConfig {
	cfg := config.Default().Server
	cfg.Mode = "test"
	cfg.RateLimit = 0
	return cfg
}

func newFixture(t *testing.T, cfg config.ServerConfig) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := events.NewBus()
	engine := sim.New(sim.WithSource(sim.NewSource(42)), sim.WithPublisher(bus))
	sess := session.New(engine, session.WithSettleDelay(10*time.Millisecond))

	challenges, err := progress.DefaultChallenges()
	if err != nil {
		t.Fatalf("DefaultChallenges failed: %v", err)
	}
	tracker := progress.NewTracker(challenges, nil)
	bus.Subscribe(tracker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sess.Run(ctx)
		close(done)
	}()

	srv := New(cfg, Deps{Session: sess, Bus: bus, Progress: tracker})
	t.Cleanup(func() {
		srv.close()
		cancel()
		<-done
	})

	return &fixture{server: srv, session: sess, bus: bus, tracker: tracker}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, testConfig())

	w := f.do(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	decode(t, w, &body)
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
	t.Log("✓ Health endpoint reports healthy")
}

func TestExecute(t *testing.T) {
	f := newFixture(t, testConfig())

	tests := []struct {
		name        string
		body        any
		wantCode    int
		wantSuccess bool
		wantOutcome string
		wantOutput  string
	}{
		{
			name:        "version",
			body:        commandRequest{Command: "docker --version"},
			wantCode:    http.StatusOK,
			wantSuccess: true,
			wantOutcome: "success",
			wantOutput:  "Docker version 24.0.5",
		},
		{
			name:        "unrecognized",
			body:        commandRequest{Command: "docker frobnicate"},
			wantCode:    http.StatusOK,
			wantSuccess: false,
			wantOutcome: "failure",
			wantOutput:  "Command not recognized",
		},
		{
			name:     "missing command",
			body:     map[string]string{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "blank command",
			body:     commandRequest{Command: "   "},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/commands", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				t.Logf("✓ Rejected with %d", w.Code)
				return
			}
			var resp commandResponse
			decode(t, w, &resp)
			if resp.Success != tt.wantSuccess || resp.Outcome != tt.wantOutcome {
				t.Errorf("success=%v outcome=%s, want %v %s", resp.Success, resp.Outcome, tt.wantSuccess, tt.wantOutcome)
			}
			if !strings.Contains(resp.Output, tt.wantOutput) {
				t.Errorf("output = %q, want it to contain %q", resp.Output, tt.wantOutput)
			}
			t.Logf("✓ %s -> %s", tt.name, resp.Outcome)
		})
	}
}

func TestExecuteClear(t *testing.T) {
	f := newFixture(t, testConfig())

	w := f.do(t, http.MethodPost, "/api/commands", commandRequest{Command: "clear"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp commandResponse
	decode(t, w, &resp)
	if !resp.Clear || resp.Outcome != "none" {
		t.Errorf("clear response = %+v", resp)
	}
	t.Log("✓ Clear is reported without an outcome")
}

func TestInject(t *testing.T) {
	f := newFixture(t, testConfig())

	w := f.do(t, http.MethodPost, "/api/commands/inject", commandRequest{Command: "docker run -d --name web nginx"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(f.session.Engine().Snapshot().Containers) == 1 {
			t.Log("✓ Injected command ran after the settle delay")
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("injected command never executed")
}

func TestState(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	for _, cmd := range []string{"docker run -d --name a nginx", "docker run -d --name b nginx", "docker stop b"} {
		if _, err := f.session.Submit(ctx, cmd); err != nil {
			t.Fatalf("Submit(%q): %v", cmd, err)
		}
	}

	w := f.do(t, http.MethodGet, "/api/state", nil)
	var body struct {
		Containers []domain.Container `json:"containers"`
		Images     []domain.Image     `json:"images"`
		Counts     struct {
			Running int `json:"running"`
			Stopped int `json:"stopped"`
			Images  int `json:"images"`
		} `json:"counts"`
	}
	decode(t, w, &body)

	if len(body.Containers) != 2 || body.Counts.Running != 1 || body.Counts.Stopped != 1 {
		t.Errorf("state = %+v", body)
	}
	if body.Counts.Images != len(body.Images) || body.Counts.Images != 2 {
		t.Errorf("image count = %d, images = %d", body.Counts.Images, len(body.Images))
	}
	t.Logf("✓ State reports %d running, %d stopped", body.Counts.Running, body.Counts.Stopped)
}

func TestHistory(t *testing.T) {
	f := newFixture(t, testConfig())
	if _, err := f.session.Submit(context.Background(), "docker ps"); err != nil {
		t.Fatal(err)
	}

	w := f.do(t, http.MethodGet, "/api/history", nil)
	var body struct {
		Entries []json.RawMessage `json:"entries"`
		Recall  []string          `json:"recall"`
	}
	decode(t, w, &body)

	if len(body.Entries) != 2 {
		t.Errorf("entries = %d, want banner plus one", len(body.Entries))
	}
	if len(body.Recall) != 1 || body.Recall[0] != "docker ps" {
		t.Errorf("recall = %v", body.Recall)
	}
	t.Log("✓ History returns transcript and recall buffer")
}

func TestCatalog(t *testing.T) {
	f := newFixture(t, testConfig())

	t.Run("all", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/catalog", nil)
		var body struct {
			Categories []string          `json:"categories"`
			Commands   []json.RawMessage `json:"commands"`
		}
		decode(t, w, &body)
		if len(body.Categories) == 0 || len(body.Commands) == 0 {
			t.Errorf("catalog empty: %+v", body)
		}
		t.Logf("✓ %d commands in %d categories", len(body.Commands), len(body.Categories))
	})

	t.Run("category", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/catalog?category=basics", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		t.Log("✓ Known category found")
	})

	t.Run("unknown category", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/catalog?category=nope", nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
		t.Log("✓ Unknown category is 404")
	})
}

func TestExplain(t *testing.T) {
	f := newFixture(t, testConfig())

	tests := []struct {
		query    string
		wantCode int
	}{
		{"/api/explain?command=docker+run+-d+nginx", http.StatusOK},
		{"/api/explain?command=kubectl+get+pods", http.StatusNotFound},
		{"/api/explain", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tt.query, nil)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			t.Logf("✓ %d", w.Code)
		})
	}
}

func TestProgress(t *testing.T) {
	f := newFixture(t, testConfig())
	if _, err := f.session.Submit(context.Background(), "docker --version"); err != nil {
		t.Fatal(err)
	}

	w := f.do(t, http.MethodGet, "/api/progress", nil)
	var body struct {
		Completed int `json:"completed"`
		Total     int `json:"total"`
	}
	decode(t, w, &body)
	if body.Completed != 1 || body.Total != 18 {
		t.Errorf("progress = %d/%d, want 1/18", body.Completed, body.Total)
	}
	t.Logf("✓ Progress %d/%d", body.Completed, body.Total)

	t.Run("disabled", func(t *testing.T) {
		srv := New(testConfig(), Deps{Session: f.session})
		defer srv.close()
		req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
		t.Log("✓ Progress endpoint 404s without a tracker")
	})
}

func TestEngineAPI(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	for _, cmd := range []string{"docker run -d -p 8080:80 --name web nginx", "docker run -d --name db redis", "docker stop db"} {
		if _, err := f.session.Submit(ctx, cmd); err != nil {
			t.Fatalf("Submit(%q): %v", cmd, err)
		}
	}

	t.Run("running containers", func(t *testing.T) {
		var list []container.Summary
		decode(t, f.do(t, http.MethodGet, "/v1/containers/json", nil), &list)
		if len(list) != 1 || list[0].Names[0] != "/web" {
			t.Fatalf("containers = %+v", list)
		}
		if len(list[0].Ports) != 1 || list[0].Ports[0].PublicPort != 8080 {
			t.Errorf("ports = %+v", list[0].Ports)
		}
		t.Log("✓ Running containers listed in engine format")
	})

	t.Run("all containers", func(t *testing.T) {
		var list []container.Summary
		decode(t, f.do(t, http.MethodGet, "/v1/containers/json?all=1", nil), &list)
		if len(list) != 2 {
			t.Fatalf("containers = %d, want 2", len(list))
		}
		t.Log("✓ all=1 includes stopped containers")
	})

	t.Run("images", func(t *testing.T) {
		var list []image.Summary
		decode(t, f.do(t, http.MethodGet, "/v1/images/json", nil), &list)
		if len(list) != 3 {
			t.Fatalf("images = %d, want 3", len(list))
		}
		for _, img := range list {
			if !strings.HasPrefix(img.ID, "sha256:") {
				t.Errorf("image id %q lacks digest prefix", img.ID)
			}
		}
		t.Log("✓ Images listed in engine format")
	})
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 2
	f := newFixture(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := f.do(t, http.MethodPost, "/api/commands", commandRequest{Command: "docker ps"})
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// Reads are not limited
	if w := f.do(t, http.MethodGet, "/api/state", nil); w.Code != http.StatusOK {
		t.Errorf("state status = %d", w.Code)
	}
	t.Logf("✓ Burst exhausted after two commands: %v", codes)
}

func TestLimiterStore(t *testing.T) {
	disabled := newLimiterStore(0, 0)
	for i := 0; i < 100; i++ {
		if !disabled.allow("client") {
			t.Fatal("disabled limiter rejected a request")
		}
	}

	store := newLimiterStore(1, 1)
	if !store.allow("a") || store.allow("a") {
		t.Error("expected one request then a rejection")
	}
	if !store.allow("b") {
		t.Error("keys should have independent buckets")
	}
	t.Log("✓ Buckets are per key and rate 0 disables limiting")
}

func TestCORS(t *testing.T) {
	f := newFixture(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	t.Log("✓ Configured origin allowed")
}

func TestStream(t *testing.T) {
	f := newFixture(t, testConfig())
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	read := func() domain.Event {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var ev domain.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("ReadJSON failed: %v", err)
		}
		return ev
	}

	first := read()
	if first.Type != domain.EventSnapshot || first.Snapshot == nil {
		t.Fatalf("first message = %+v, want snapshot", first)
	}
	t.Log("✓ Initial snapshot delivered on connect")

	if _, err := f.session.Submit(context.Background(), "docker run -d --name web nginx"); err != nil {
		t.Fatal(err)
	}

	snap := read()
	if snap.Type != domain.EventSnapshot || len(snap.Snapshot.Containers) != 1 {
		t.Fatalf("second message = %+v, want snapshot with one container", snap)
	}
	cmd := read()
	if cmd.Type != domain.EventCommand || cmd.Command == nil || cmd.Command.Command != "docker run -d --name web nginx" {
		t.Fatalf("third message = %+v, want command event", cmd)
	}
	if cmd.ID == "" || cmd.ID == snap.ID {
		t.Errorf("events should carry distinct ids, got %q and %q", snap.ID, cmd.ID)
	}
	t.Log("✓ Snapshot then command forwarded to the client")

	if f.server.hub.len() != 1 {
		t.Errorf("hub clients = %d, want 1", f.server.hub.len())
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := newHub()
	c := &wsClient{send: make(chan []byte, 2)}
	if err := h.register(c, func() domain.Snapshot { return domain.Snapshot{} }); err != nil {
		t.Fatal(err)
	}

	ev := domain.Event{Type: domain.EventCommand, Command: &domain.CommandExecuted{Command: "docker ps"}}
	if err := h.Handle(ev); err != nil {
		t.Fatal(err)
	}
	if err := h.Handle(ev); err != nil {
		t.Fatal(err)
	}

	if h.len() != 0 {
		t.Fatalf("slow client still registered")
	}
	// Buffered messages are still readable, then the channel is closed
	for i := 0; i < 2; i++ {
		if _, ok := <-c.send; !ok {
			t.Fatalf("expected buffered message %d", i)
		}
	}
	if _, ok := <-c.send; ok {
		t.Fatal("expected closed channel")
	}
	t.Log("✓ Full client buffer disconnects the client")
}

func TestHubRegisterOrdersInitialSnapshot(t *testing.T) {
	h := newHub()
	c := &wsClient{send: make(chan []byte, sendBuffer)}

	snapshot := func() domain.Snapshot {
		// A publisher racing the registration blocks on the hub lock
		done := make(chan struct{})
		go func() {
			_ = h.Handle(domain.Event{Type: domain.EventCommand, Command: &domain.CommandExecuted{Command: "docker ps"}})
			close(done)
		}()
		select {
		case <-done:
			t.Error("event delivered while the client was registering")
		case <-time.After(20 * time.Millisecond):
		}
		return domain.Snapshot{Images: []domain.Image{{Repository: "nginx", Tag: "latest"}}}
	}
	if err := h.register(c, snapshot); err != nil {
		t.Fatal(err)
	}

	var first domain.Event
	if err := json.Unmarshal(<-c.send, &first); err != nil {
		t.Fatal(err)
	}
	if first.Type != domain.EventSnapshot || first.Snapshot == nil || len(first.Snapshot.Images) != 1 {
		t.Fatalf("first message = %+v, want the registration snapshot", first)
	}

	select {
	case data := <-c.send:
		var next domain.Event
		if err := json.Unmarshal(data, &next); err != nil {
			t.Fatal(err)
		}
		if next.Type != domain.EventCommand {
			t.Errorf("second message type = %s, want command", next.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event published during registration was lost")
	}
	t.Log("✓ Initial snapshot precedes events published during registration")
}
