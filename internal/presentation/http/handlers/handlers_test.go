package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LodestarLearning/lodestar-go/internal/application/services"
	"github.com/LodestarLearning/lodestar-go/internal/domain/codec"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/messaging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
	"github.com/LodestarLearning/lodestar-go/internal/presentation/http/middleware"
)

const lessonFixture = `
id: triangle
title: Triangle basics
variables:
  a:
    type: number
    defaultValue: 3
  c:
    type: number
    formula: "a * 2"
  shape:
    type: select
    defaultValue: ""
    options: [triangle, square]
blocks:
  - id: b1
    nodes:
      - type: text
        text: "Pick one: "
      - type: widget
        widget:
          kind: clozeChoice
          varName: shape
          correctAnswer: triangle
          options: [triangle, square]
`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "triangle.yaml"), []byte(lessonFixture), 0644))

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{OutputToConsole: false, JSONFormat: true})
	require.NoError(t, err)
	tracker := performance.NewTracker(nil)

	docs := services.NewDocumentService(dir, logger, tracker)
	require.NoError(t, docs.LoadAll())

	sessions := state.NewSessionsStore(time.Hour, logger)
	broadcaster := messaging.NewSSEBroadcaster(logger)

	stateSvc := services.NewStateService(sessions, docs, broadcaster, logger, tracker)
	editingSvc := services.NewEditingService(sessions, broadcaster, logger)
	fragmentSvc := services.NewFragmentService(sessions, docs, logger, tracker)
	exportSvc := services.NewExportService(fragmentSvc, logger, tracker)

	documentHandlers := NewDocumentHandlers(docs, stateSvc, logger, tracker)
	stateHandlers := NewStateHandlers(stateSvc, logger, tracker)
	editingHandlers := NewEditingHandlers(editingSvc, logger)
	fragmentHandlers := NewFragmentHandlers(fragmentSvc, exportSvc, logger, tracker)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.SessionMiddleware())
	api.GET("/documents", documentHandlers.ListDocuments)
	api.POST("/documents/:id/session", documentHandlers.PostSession)

	session := api.Group("")
	session.Use(middleware.RequireSession())
	session.GET("/state", stateHandlers.GetState)
	session.POST("/state", stateHandlers.PostState)
	session.POST("/edit/open", editingHandlers.PostOpen)
	session.POST("/edit/save", editingHandlers.PostSave)
	session.GET("/edit/current", editingHandlers.GetCurrent)
	session.GET("/edits", editingHandlers.GetEdits)
	session.GET("/fragments/:blockId", fragmentHandlers.GetFragment)
	return r
}

func doJSON(r *gin.Engine, method, path, sessionID, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func establishSession(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/v1/documents/triangle/session", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	sessionID := w.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, sessionID)
	return sessionID
}

func TestSessionBootstrapSeedsState(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(r, http.MethodPost, "/api/v1/documents/triangle/session", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SessionID  string         `json:"sessionId"`
		DocumentID string         `json:"documentId"`
		State      map[string]any `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "triangle", resp.DocumentID)
	assert.Equal(t, float64(3), resp.State["a"])
	assert.Equal(t, float64(6), resp.State["c"]) // formula evaluated on bind
	assert.Equal(t, "", resp.State["shape"])
}

func TestSessionRequiredForState(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(r, http.MethodGet, "/api/v1/state", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetVariableReportsAffectedBlocks(t *testing.T) {
	r := newTestRouter(t)
	sessionID := establishSession(t, r)

	w := doJSON(r, http.MethodPost, "/api/v1/state", sessionID,
		`{"name":"shape","value":"square","blockId":"b1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Changed        bool     `json:"changed"`
		AffectedBlocks []string `json:"affectedBlocks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Changed)
	assert.Equal(t, []string{"b1"}, result.AffectedBlocks)
}

func TestEditLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	sessionID := establishSession(t, r)

	target := `"kind":"clozeChoice","blockId":"b1","elementPath":"choice-b1-shape"`

	w := doJSON(r, http.MethodPost, "/api/v1/edit/open", sessionID, `{`+target+`}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Correct answer not among options: rejected, editor stays open.
	w = doJSON(r, http.MethodPost, "/api/v1/edit/save", sessionID,
		`{`+target+`,"newProps":{"correctAnswer":"circle","options":["triangle","square"]}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/edit/save", sessionID,
		`{`+target+`,"newProps":{"correctAnswer":"square","options":["triangle","square"]}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"saved":true`)

	w = doJSON(r, http.MethodGet, "/api/v1/edits", sessionID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"correctAnswer":"square"`)
}

func TestOpenEditorSurfacesCurrentProps(t *testing.T) {
	r := newTestRouter(t)
	sessionID := establishSession(t, r)

	encoded := codec.Encode(editing.ClozeChoiceProps{
		VarName:       "shape",
		CorrectAnswer: "triangle",
		Options:       []string{"triangle", "square"},
	})

	w := doJSON(r, http.MethodPost, "/api/v1/edit/open", sessionID,
		`{"kind":"clozeChoice","blockId":"b1","elementPath":"choice-b1-shape","currentProps":"`+encoded+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/edit/current", sessionID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Editor struct {
			Kind         string `json:"kind"`
			CurrentProps string `json:"currentProps"`
		} `json:"editor"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "clozeChoice", resp.Editor.Kind)
	require.NotEmpty(t, resp.Editor.CurrentProps)

	var recovered editing.ClozeChoiceProps
	require.NoError(t, codec.Decode(resp.Editor.CurrentProps, &recovered))
	assert.Equal(t, "triangle", recovered.CorrectAnswer)
}

func TestOpenEditorAcceptsEmptyBlockID(t *testing.T) {
	r := newTestRouter(t)
	sessionID := establishSession(t, r)

	// An unparented widget addresses itself with an empty block id.
	w := doJSON(r, http.MethodPost, "/api/v1/edit/open", sessionID,
		`{"kind":"clozeChoice","blockId":"","elementPath":"choice--shape"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/edit/save", sessionID,
		`{"kind":"clozeChoice","blockId":"","elementPath":"choice--shape",`+
			`"newProps":{"correctAnswer":"square","options":["triangle","square"]}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"saved":true`)

	// The element path stays mandatory.
	w = doJSON(r, http.MethodPost, "/api/v1/edit/open", sessionID,
		`{"kind":"clozeChoice","blockId":"b1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFragmentRenderReflectsPendingEdit(t *testing.T) {
	r := newTestRouter(t)
	sessionID := establishSession(t, r)

	target := `"kind":"clozeChoice","blockId":"b1","elementPath":"choice-b1-shape"`
	w := doJSON(r, http.MethodPost, "/api/v1/edit/open", sessionID, `{`+target+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPost, "/api/v1/edit/save", sessionID,
		`{`+target+`,"newProps":{"correctAnswer":"square","options":["triangle","square"]}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/fragments/b1", sessionID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `data-widget="clozeChoice"`)
	assert.Contains(t, w.Body.String(), `data-correct-answer="square"`)

	// Unknown block is a 404, not a broken render.
	w = doJSON(r, http.MethodGet, "/api/v1/fragments/missing", sessionID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
