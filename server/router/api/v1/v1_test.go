package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/studysheet/internal/profile"
	"github.com/hrygo/studysheet/server/internal/observability"
	"github.com/hrygo/studysheet/server/service/render"
	"github.com/hrygo/studysheet/server/service/review"
	"github.com/hrygo/studysheet/server/stats"
	"github.com/hrygo/studysheet/store/test"
)

type testServer struct {
	echo    *echo.Echo
	service *APIV1Service
	chars   []string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	st := test.NewTestingStoreWithDriver(ctx, t, "file")

	chars := make([]string, 100)
	for i := range chars {
		chars[i] = string(rune(0x4E00 + i))
	}
	result, err := st.ImportCharacters(ctx, strings.Join(chars, ""))
	require.NoError(t, err)
	require.Len(t, result.Added, 100)

	service := NewAPIV1Service(
		&profile.Profile{Version: "test", MaxRenders: 2},
		st,
		render.NewRenderer(nil),
		stats.NewCollector(st),
		observability.NewMetrics(),
	)
	e := echo.New()
	service.RegisterRoutes(e)
	return &testServer{echo: e, service: service, chars: chars}
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPreviewCharacterSheet(t *testing.T) {
	ts := newTestServer(t)
	newChars := ts.chars[60] + ts.chars[61]

	rec := ts.postJSON(t, "/api/v1/sheets/characters/preview", CharacterSheetRequest{
		NewChars:  newChars,
		StartChar: ts.chars[10],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview CharacterSheetPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	require.Len(t, preview.Characters, review.SetSize)
	assert.Equal(t, []string{ts.chars[60], ts.chars[61], ts.chars[10]}, preview.Characters[:3])
	assert.Equal(t, newChars+"(next:"+ts.chars[62]+").pdf", preview.Filename)
	assert.Equal(t, ts.chars[62], preview.NextStart)
}

func TestPreviewShuffleIsSeeded(t *testing.T) {
	ts := newTestServer(t)
	req := CharacterSheetRequest{NewChars: ts.chars[70], StartChar: ts.chars[30], Shuffle: true, Seed: 99}

	var first, second CharacterSheetPreview
	require.NoError(t, json.Unmarshal(ts.postJSON(t, "/api/v1/sheets/characters/preview", req).Body.Bytes(), &first))
	require.NoError(t, json.Unmarshal(ts.postJSON(t, "/api/v1/sheets/characters/preview", req).Body.Bytes(), &second))
	assert.Equal(t, first.Characters, second.Characters)
	assert.Contains(t, first.Characters, ts.chars[70])
}

func TestCharacterSheetErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		req     CharacterSheetRequest
		code    string
		message string
	}{
		{
			name:    "start after new characters",
			req:     CharacterSheetRequest{NewChars: ts.chars[60], StartChar: ts.chars[70]},
			code:    "INVALID_POSITION",
			message: "Review starting point (index 70) must be less than smallest new character index (60)",
		},
		{
			name:    "unknown new character",
			req:     CharacterSheetRequest{NewChars: "龍", StartChar: ts.chars[10]},
			code:    "NOT_FOUND",
			message: "New character '龍' not found in the character list",
		},
		{
			name:    "missing new characters",
			req:     CharacterSheetRequest{NewChars: "  ", StartChar: ts.chars[10]},
			code:    "MISSING_INPUT",
			message: "New characters are required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.postJSON(t, "/api/v1/sheets/characters", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestCreateCharacterSheet(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.postForm(t, "/api/v1/sheets/characters", url.Values{
		"new_chars":  {ts.chars[80] + ts.chars[81]},
		"start_char": {ts.chars[40]},
		"shuffle":    {"true"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	disposition := rec.Header().Get(echo.HeaderContentDisposition)
	assert.Contains(t, disposition, `filename="study-sheet.pdf"`)
	assert.Contains(t, disposition, "filename*=UTF-8''")

	assert.EqualValues(t, 1, ts.service.Stats.GetStats().CharacterSheets)
}

func TestCreateMathSheet(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.postJSON(t, "/api/v1/sheets/math", MathSheetRequest{Difficulty: "hard", Count: 8, Seed: 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `filename="worksheet-hard-`)
	assert.EqualValues(t, 8, ts.service.Stats.GetStats().ProblemsGenerated)

	rec = ts.postJSON(t, "/api/v1/sheets/math", MathSheetRequest{Difficulty: "expert"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, rec).Code)

	rec = ts.postJSON(t, "/api/v1/sheets/math", MathSheetRequest{Difficulty: "easy", Count: 61})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Problem count must be between 1 and 60, got 61", decodeError(t, rec).Message)
}

func TestGenerateFromForm(t *testing.T) {
	ts := newTestServer(t)

	t.Run("error re-renders the form with the input", func(t *testing.T) {
		rec := ts.postForm(t, "/generate", url.Values{
			"kind":      {"characters"},
			"new_chars": {ts.chars[60]},
			"shuffle":   {"true"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Review starting character is required")
		assert.Contains(t, body, `value="`+ts.chars[60]+`"`)
		assert.Contains(t, body, "checked")
	})

	t.Run("character sheet", func(t *testing.T) {
		rec := ts.postForm(t, "/generate", url.Values{
			"new_chars":  {ts.chars[60]},
			"start_char": {ts.chars[5]},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	})

	t.Run("math worksheet", func(t *testing.T) {
		rec := ts.postForm(t, "/generate", url.Values{
			"kind":       {"math"},
			"difficulty": {"medium"},
			"count":      {"6"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("bad count", func(t *testing.T) {
		rec := ts.postForm(t, "/generate", url.Values{"kind": {"math"}, "count": {"many"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Problem count must be a number")
	})
}

func TestFormErrorLogsCode(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	rec := ts.postForm(t, "/generate", url.Values{
		"new_chars":  {ts.chars[60]},
		"start_char": {ts.chars[70]},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, buf.String(), "error_code=INVALID_POSITION")
	assert.Contains(t, buf.String(), "status=400")
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="new_chars"`)
	assert.Contains(t, body, "100 characters known")

	assert.Equal(t, "ok", ts.get("/healthz").Body.String())
}

func TestCharacters(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.get("/api/v1/characters")
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListCharactersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 100, list.Count)
	assert.Equal(t, ts.chars, list.Characters)

	rec = ts.postJSON(t, "/api/v1/characters", AddCharacterRequest{Character: "龍"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var added AddCharacterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.Equal(t, AddCharacterResponse{Index: 100, Character: "龍"}, added)

	rec = ts.postJSON(t, "/api/v1/characters", AddCharacterRequest{Character: "龍"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Character '龍' already exists at index 100", decodeError(t, rec).Message)

	rec = ts.postJSON(t, "/api/v1/characters", AddCharacterRequest{Character: "a"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_CHARACTER", decodeError(t, rec).Code)

	rec = ts.postJSON(t, "/api/v1/characters", AddCharacterRequest{Character: "龍龍"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "LENGTH", decodeError(t, rec).Code)

	rec = ts.get("/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Usage)
	assert.EqualValues(t, 1, resp.Usage.CharactersAdded)
	assert.Equal(t, "test", resp.Version)
}

func TestStatsPlainText(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.postJSON(t, "/api/v1/sheets/characters", CharacterSheetRequest{NewChars: ts.chars[60], StartChar: ts.chars[5]})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMETextPlain)
	rec = httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain))
	assert.Contains(t, rec.Body.String(), "Character sheets: 1")
	assert.Contains(t, rec.Body.String(), "Today: 1")

	req.Header.Set(echo.HeaderAccept, "application/json, text/plain")
	rec = httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON))
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t,
		`attachment; filename="worksheet-easy.pdf"; filename*=UTF-8''worksheet-easy.pdf`,
		contentDisposition("worksheet-easy.pdf"))

	name := "一二(next:三).pdf"
	got := contentDisposition(name)
	assert.True(t, strings.HasPrefix(got, `attachment; filename="study-sheet.pdf"; filename*=UTF-8''`))
	ext := strings.TrimPrefix(got, `attachment; filename="study-sheet.pdf"; filename*=UTF-8''`)
	assert.NotContains(t, ext, "(")
	assert.NotContains(t, ext, ":")
	decoded, err := url.PathUnescape(ext)
	require.NoError(t, err)
	assert.Equal(t, name, decoded)
}
