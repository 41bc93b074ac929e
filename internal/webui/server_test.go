package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kayz/promptblocks/internal/blocks"
	"github.com/kayz/promptblocks/internal/config"
	"github.com/kayz/promptblocks/internal/generation"
	"github.com/kayz/promptblocks/internal/persist"
	"github.com/kayz/promptblocks/internal/promptbuild"
	"github.com/kayz/promptblocks/internal/workspace"
)

type fakeProvider struct {
	release chan struct{}
}

func (fakeProvider) Name() string { return "fake" }

func (p fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "echo: " + prompt, nil
}

func newTestServer(t *testing.T, provider generation.Provider) (http.Handler, *workspace.Workspace) {
	t.Helper()
	store, err := persist.NewStore(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	empty := ""
	builder := promptbuild.NewBuilder(config.PromptBuildConfig{RootDir: t.TempDir()}, blocks.DefaultRegistry(), &empty)
	client := generation.NewClient(provider, generation.WithResultHook(store.GenerationHook("fake")))
	t.Cleanup(client.Close)
	ws := workspace.New(builder, client, workspace.WithStore(store))
	return NewServer(ws, store).Handler(), ws
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeSnapshot(t *testing.T, rr *httptest.ResponseRecorder) workspace.Snapshot {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var snap struct {
		Category string `json:"category"`
		Blocks   []struct {
			ID      string `json:"id"`
			Type    string `json:"type"`
			Content string `json:"content"`
			Name    string `json:"name"`
		} `json:"blocks"`
		CanUndo bool   `json:"can_undo"`
		Prompt  string `json:"prompt"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := workspace.Snapshot{Category: snap.Category, CanUndo: snap.CanUndo, Prompt: snap.Prompt}
	for _, b := range snap.Blocks {
		out.Blocks = append(out.Blocks, workspace.BlockView{
			Block: blocks.Block{ID: b.ID, TypeID: b.Type, Content: b.Content},
			Name:  b.Name,
		})
	}
	return out
}

func order(s workspace.Snapshot) string {
	var ids []string
	for _, b := range s.Blocks {
		ids = append(ids, b.TypeID)
	}
	return strings.Join(ids, ",")
}

func TestStatusEndpoint(t *testing.T) {
	h, _ := newTestServer(t, fakeProvider{})
	rr := do(t, h, http.MethodGet, "/api/status", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "\"ok\":true") || !strings.Contains(rr.Body.String(), "\"generation\":\"idle\"") {
		t.Fatalf("unexpected status payload: %s", rr.Body.String())
	}
}

func TestIndexAndTypes(t *testing.T) {
	h, _ := newTestServer(t, fakeProvider{})
	if rr := do(t, h, http.MethodGet, "/", nil); rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "promptblocks") {
		t.Fatalf("unexpected index: %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/nope", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", rr.Code)
	}
	rr := do(t, h, http.MethodGet, "/api/types", nil)
	if !strings.Contains(rr.Body.String(), `"output_format"`) || !strings.Contains(rr.Body.String(), `"Bug Fix"`) {
		t.Fatalf("unexpected types payload: %s", rr.Body.String())
	}
}

func TestBlockEditing(t *testing.T) {
	h, _ := newTestServer(t, fakeProvider{})

	if rr := do(t, h, http.MethodPost, "/api/blocks", map[string]string{}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing type, got %d", rr.Code)
	}
	do(t, h, http.MethodPost, "/api/blocks", map[string]string{"type": "context"})
	do(t, h, http.MethodPost, "/api/blocks", map[string]string{"type": "example"})
	snap := decodeSnapshot(t, do(t, h, http.MethodPost, "/api/blocks", map[string]string{"type": "constraint"}))
	if order(snap) != "context,example,constraint" {
		t.Fatalf("unexpected order %s", order(snap))
	}
	ctx, ex, con := snap.Blocks[0].ID, snap.Blocks[1].ID, snap.Blocks[2].ID

	snap = decodeSnapshot(t, do(t, h, http.MethodPut, "/api/blocks/"+ctx, map[string]string{"content": "hello"}))
	if snap.Blocks[0].Content != "hello" || !strings.Contains(snap.Prompt, "[CONTEXT]\nhello\n") {
		t.Fatalf("content not updated: %#v", snap)
	}

	snap = decodeSnapshot(t, do(t, h, http.MethodPost, "/api/blocks/"+con+"/up", nil))
	if order(snap) != "context,constraint,example" {
		t.Fatalf("unexpected order after move up: %s", order(snap))
	}
	snap = decodeSnapshot(t, do(t, h, http.MethodPost, "/api/blocks/"+ctx+"/down", nil))
	if order(snap) != "constraint,context,example" {
		t.Fatalf("unexpected order after move down: %s", order(snap))
	}
	snap = decodeSnapshot(t, do(t, h, http.MethodPost, "/api/reorder", map[string]string{"source_id": ex, "target_id": con}))
	if order(snap) != "example,constraint,context" {
		t.Fatalf("unexpected order after reorder: %s", order(snap))
	}
	snap = decodeSnapshot(t, do(t, h, http.MethodDelete, "/api/blocks/"+con, nil))
	if order(snap) != "example,context" {
		t.Fatalf("unexpected order after delete: %s", order(snap))
	}
	snap = decodeSnapshot(t, do(t, h, http.MethodPost, "/api/undo", nil))
	if order(snap) != "example,constraint,context" {
		t.Fatalf("undo did not restore: %s", order(snap))
	}
}

func TestDragEndpoints(t *testing.T) {
	h, ws := newTestServer(t, fakeProvider{})
	ws.Apply(
		blocks.AddBlock{TypeID: "context", ID: "a"},
		blocks.AddBlock{TypeID: "example", ID: "b"},
		blocks.AddBlock{TypeID: "constraint", ID: "c"},
	)

	rr := do(t, h, http.MethodPost, "/api/drag/start", map[string]string{"id": "c"})
	if !strings.Contains(rr.Body.String(), `"phase":"dragging"`) {
		t.Fatalf("unexpected drag state: %s", rr.Body.String())
	}
	rr = do(t, h, http.MethodPost, "/api/drag/hover", map[string]string{"id": "a"})
	if !strings.Contains(rr.Body.String(), `"phase":"hovering"`) {
		t.Fatalf("unexpected drag state: %s", rr.Body.String())
	}
	snap := decodeSnapshot(t, do(t, h, http.MethodPost, "/api/drag/drop", nil))
	if order(snap) != "constraint,context,example" {
		t.Fatalf("unexpected order after drop: %s", order(snap))
	}

	do(t, h, http.MethodPost, "/api/drag/start", map[string]string{"id": "a"})
	snap = decodeSnapshot(t, do(t, h, http.MethodPost, "/api/drag/drop", nil))
	if order(snap) != "constraint,context,example" {
		t.Fatalf("drop without hover must not reorder: %s", order(snap))
	}
}

func TestCategoryEndpoint(t *testing.T) {
	h, _ := newTestServer(t, fakeProvider{})
	if rr := do(t, h, http.MethodPut, "/api/category", map[string]string{"category": "poetry"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	snap := decodeSnapshot(t, do(t, h, http.MethodPut, "/api/category", map[string]string{"category": "test"}))
	if snap.Category != "test" {
		t.Fatalf("unexpected category %q", snap.Category)
	}
}

func TestGenerateAndHistory(t *testing.T) {
	h, ws := newTestServer(t, fakeProvider{})
	ws.Apply(blocks.AddBlock{TypeID: "context", ID: "a"}, blocks.UpdateContent{ID: "a", Content: "x"})

	rr := do(t, h, http.MethodPost, "/api/generate", nil)
	if rr.Code != http.StatusAccepted || !strings.Contains(rr.Body.String(), `"token":1`) {
		t.Fatalf("unexpected generate response: %d %s", rr.Code, rr.Body.String())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := ws.Client().Wait(ctx); err != nil {
		t.Fatal(err)
	}
	ws.Client().Drain()

	rr = do(t, h, http.MethodGet, "/api/generation", nil)
	if !strings.Contains(rr.Body.String(), `"phase":"succeeded"`) || !strings.Contains(rr.Body.String(), `echo: [CONTEXT]`) {
		t.Fatalf("unexpected generation state: %s", rr.Body.String())
	}
	rr = do(t, h, http.MethodGet, "/api/history?limit=5", nil)
	if !strings.Contains(rr.Body.String(), `"status":"succeeded"`) {
		t.Fatalf("unexpected history: %s", rr.Body.String())
	}
}

func TestTemplateEndpoints(t *testing.T) {
	h, ws := newTestServer(t, fakeProvider{})
	ws.Apply(blocks.AddBlock{TypeID: "context", ID: "a"})

	if rr := do(t, h, http.MethodPost, "/api/templates", map[string]string{"name": "base"}); rr.Code != http.StatusOK {
		t.Fatalf("save failed: %d %s", rr.Code, rr.Body.String())
	}
	rr := do(t, h, http.MethodGet, "/api/templates?category=feature", nil)
	if !strings.Contains(rr.Body.String(), `"name":"base"`) {
		t.Fatalf("unexpected templates: %s", rr.Body.String())
	}

	ws.Apply(blocks.RemoveBlock{ID: "a"})
	snap := decodeSnapshot(t, do(t, h, http.MethodPost, "/api/templates/base/load", nil))
	if len(snap.Blocks) != 1 || snap.Blocks[0].ID != "a" {
		t.Fatalf("template not loaded: %#v", snap.Blocks)
	}

	if rr := do(t, h, http.MethodDelete, "/api/templates/base", nil); rr.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/api/templates/base/load", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestWebSocketPushesGenerationState(t *testing.T) {
	release := make(chan struct{})
	h, ws := newTestServer(t, fakeProvider{release: release})
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var state generation.State
	readPhase := func() string {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		phase, _ := msg["phase"].(string)
		if text, ok := msg["text"].(string); ok {
			state.Text = text
		}
		return phase
	}

	if phase := readPhase(); phase != "idle" {
		t.Fatalf("expected initial idle, got %s", phase)
	}
	ws.Generate()
	if phase := readPhase(); phase != "pending" {
		t.Fatalf("expected pending, got %s", phase)
	}
	close(release)
	if phase := readPhase(); phase != "succeeded" {
		t.Fatalf("expected succeeded, got %s", phase)
	}
	if !strings.HasPrefix(state.Text, "echo: ") {
		t.Fatalf("unexpected text %q", state.Text)
	}
}
