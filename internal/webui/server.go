package webui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kayz/promptblocks/internal/blocks"
	"github.com/kayz/promptblocks/internal/generation"
	"github.com/kayz/promptblocks/internal/logger"
	"github.com/kayz/promptblocks/internal/persist"
	"github.com/kayz/promptblocks/internal/workspace"
)

const writeTimeout = 10 * time.Second

// Library lists and deletes saved templates and past generations.
type Library interface {
	ListTemplates(category string) ([]*persist.Template, error)
	DeleteTemplate(name string) error
	RecentGenerations(limit int) ([]persist.Generation, error)
}

type Server struct {
	ws        *workspace.Workspace
	library   Library
	startedAt time.Time
	upgrader  websocket.Upgrader
}

// NewServer serves ws over HTTP. library may be nil, in which case the
// template listing and history endpoints answer 503.
func NewServer(ws *workspace.Workspace, library Library) *Server {
	return &Server{
		ws:        ws,
		library:   library,
		startedAt: time.Now().UTC(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/types", s.handleTypes)
	mux.HandleFunc("GET /api/workspace", s.handleWorkspace)

	mux.HandleFunc("POST /api/blocks", s.handleAddBlock)
	mux.HandleFunc("PUT /api/blocks/{id}", s.handleUpdateBlock)
	mux.HandleFunc("DELETE /api/blocks/{id}", s.handleRemoveBlock)
	mux.HandleFunc("POST /api/blocks/{id}/up", s.handleMove(true))
	mux.HandleFunc("POST /api/blocks/{id}/down", s.handleMove(false))
	mux.HandleFunc("POST /api/reorder", s.handleReorder)
	mux.HandleFunc("POST /api/undo", s.handleUndo)
	mux.HandleFunc("PUT /api/category", s.handleCategory)

	mux.HandleFunc("POST /api/drag/start", s.handleDragStart)
	mux.HandleFunc("POST /api/drag/hover", s.handleDragHover)
	mux.HandleFunc("POST /api/drag/drop", s.handleDragDrop)
	mux.HandleFunc("POST /api/drag/abort", s.handleDragAbort)

	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/generation", s.handleGeneration)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/ws", s.handleWebSocket)

	mux.HandleFunc("GET /api/templates", s.handleListTemplates)
	mux.HandleFunc("POST /api/templates", s.handleSaveTemplate)
	mux.HandleFunc("POST /api/templates/{name}/load", s.handleLoadTemplate)
	mux.HandleFunc("DELETE /api/templates/{name}", s.handleDeleteTemplate)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(defaultIndexHTML))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"started_at": s.startedAt.Format(time.RFC3339),
		"uptime_sec": int(time.Since(s.startedAt).Seconds()),
		"generation": s.ws.Client().State().Phase,
	})
}

func (s *Server) handleTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"types":      s.ws.Registry().Types(),
		"categories": workspace.Categories,
	})
}

func (s *Server) handleWorkspace(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return false
	}
	return true
}

type addBlockRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	var req addBlockRequest
	if !decode(w, r, &req) {
		return
	}
	req.Type = strings.TrimSpace(req.Type)
	if req.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "type is required"})
		return
	}
	s.ws.Apply(blocks.AddBlock{TypeID: req.Type})
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

type updateBlockRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	var req updateBlockRequest
	if !decode(w, r, &req) {
		return
	}
	s.ws.Apply(blocks.UpdateContent{ID: r.PathValue("id"), Content: req.Content})
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	s.ws.Apply(blocks.RemoveBlock{ID: r.PathValue("id")})
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

func (s *Server) handleMove(up bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if up {
			s.ws.Apply(blocks.MoveUp{ID: id})
		} else {
			s.ws.Apply(blocks.MoveDown{ID: id})
		}
		writeJSON(w, http.StatusOK, s.ws.Snapshot())
	}
}

type reorderRequest struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}
	s.ws.Apply(blocks.Reorder{SourceID: req.SourceID, TargetID: req.TargetID})
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

func (s *Server) handleUndo(w http.ResponseWriter, _ *http.Request) {
	s.ws.Undo()
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

type categoryRequest struct {
	Category string `json:"category"`
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.ws.SetCategory(strings.TrimSpace(req.Category)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

type dragRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.ws.DragStart(req.ID))
}

func (s *Server) handleDragHover(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.ws.DragHover(req.ID))
}

func (s *Server) handleDragDrop(w http.ResponseWriter, _ *http.Request) {
	s.ws.DragDrop()
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

func (s *Server) handleDragAbort(w http.ResponseWriter, _ *http.Request) {
	s.ws.DragAbort()
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

func (s *Server) handleGenerate(w http.ResponseWriter, _ *http.Request) {
	token := s.ws.Generate()
	writeJSON(w, http.StatusAccepted, map[string]any{"token": token})
}

func (s *Server) handleGeneration(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Client().State())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "template store is not configured"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.library.RecentGenerations(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"generations": list})
}

// handleWebSocket pushes every generation state change to the peer until it
// disconnects. The first message is the current state.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.ws.Client().Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(state generation.State) bool {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(state); err != nil {
			logger.Debug("WebSocket write error: %v", err)
			return false
		}
		return true
	}

	if !send(s.ws.Client().State()) {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case state := <-updates:
			if !send(state) {
				return
			}
		}
	}
}

type templateView struct {
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Blocks    []blocks.Block `json:"blocks"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func viewTemplate(t *persist.Template) templateView {
	return templateView{Name: t.Name, Category: t.Category, Blocks: t.Blocks, UpdatedAt: t.UpdatedAt}
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "template store is not configured"})
		return
	}
	list, err := s.library.ListTemplates(r.URL.Query().Get("category"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	views := make([]templateView, 0, len(list))
	for _, t := range list {
		views = append(views, viewTemplate(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": views})
}

type saveTemplateRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req saveTemplateRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := s.ws.SaveTemplate(req.Name)
	if err != nil {
		writeTemplateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTemplate(t))
}

func (s *Server) handleLoadTemplate(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ws.LoadTemplate(r.PathValue("name")); err != nil {
		writeTemplateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "template store is not configured"})
		return
	}
	if err := s.library.DeleteTemplate(r.PathValue("name")); err != nil {
		writeTemplateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeTemplateError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, persist.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workspace.ErrNoStore):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
