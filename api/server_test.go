package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/krehermann/exprvm/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, maxStack int) *Server {
	programs := store.NewProgramStore()
	t.Cleanup(programs.Close)

	s, err := NewServer(ServerConfig{
		Logger:   zap.NewNop(),
		MaxStack: maxStack,
	}, programs)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestServer_Eval(t *testing.T) {
	s := newTestServer(t, 0)

	tests := []struct {
		name     string
		body     string
		wantCode int
		check    func(*testing.T, map[string]any)
	}{
		{
			name:     "sub",
			body:     `{"expr": "2 - 3"}`,
			wantCode: http.StatusOK,
			check: func(t *testing.T, out map[string]any) {
				// json numbers decode as float64
				assert.Equal(t, float64(-1), out["result"])
				assert.Equal(t, []any{float64(-1)}, out["stack"])
			},
		},
		{
			name:     "precedence",
			body:     `{"expr": "2 + 3 * 4"}`,
			wantCode: http.StatusOK,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, float64(14), out["result"])
			},
		},
		{
			name:     "syntax error",
			body:     `{"expr": "2 +"}`,
			wantCode: http.StatusBadRequest,
			check:    hasError,
		},
		{
			name:     "bad json",
			body:     `{"expr": `,
			wantCode: http.StatusBadRequest,
			check:    hasError,
		},
		{
			name:     "div by zero",
			body:     `{"expr": "1 / (2 - 2)"}`,
			wantCode: http.StatusUnprocessableEntity,
			check: func(t *testing.T, out map[string]any) {
				assert.Contains(t, out["error"], "division by zero")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := do(t, s, http.MethodPost, "/eval", tt.body)
			assert.Equal(t, tt.wantCode, code)
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func hasError(t *testing.T, out map[string]any) {
	assert.NotEmpty(t, out["error"])
}

func TestServer_EvalMaxStack(t *testing.T) {
	s := newTestServer(t, 2)

	code, _ := do(t, s, http.MethodPost, "/eval", `{"expr": "1 + 2"}`)
	assert.Equal(t, http.StatusOK, code)

	// right nested operands need a third cell
	code, out := do(t, s, http.MethodPost, "/eval", `{"expr": "1 + (2 + 3)"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, out["error"], "out of memory")
}

func TestServer_CompileAndRun(t *testing.T) {
	s := newTestServer(t, 0)

	code, out := do(t, s, http.MethodPost, "/compile", `{"expr": "10 / 4"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"PUSH_INT 10", "PUSH_INT 4", "DIV_INT"}, out["program"])

	hash, ok := out["hash"].(string)
	require.True(t, ok)
	require.Len(t, hash, 64)

	code, out = do(t, s, http.MethodGet, "/program/"+hash, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, hash, out["hash"])
	assert.Equal(t, []any{"PUSH_INT 10", "PUSH_INT 4", "DIV_INT"}, out["program"])

	code, out = do(t, s, http.MethodPost, "/program/"+hash+"/run", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), out["result"])
}

func TestServer_ProgramLookupErrors(t *testing.T) {
	s := newTestServer(t, 0)

	code, out := do(t, s, http.MethodGet, "/program/nothex", "")
	assert.Equal(t, http.StatusBadRequest, code)
	hasError(t, out)

	code, out = do(t, s, http.MethodGet, "/program/"+strings.Repeat("00", 32), "")
	assert.Equal(t, http.StatusNotFound, code)
	hasError(t, out)

	code, _ = do(t, s, http.MethodPost, "/program/"+strings.Repeat("00", 32)+"/run", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_EvalTooDeep(t *testing.T) {
	s := newTestServer(t, 0)

	body := `{"expr": "` + strings.Repeat("-", 5000) + `1"}`
	code, out := do(t, s, http.MethodPost, "/eval", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["error"], "nested too deeply")

	body = `{"expr": "` + strings.Repeat("(", 5000) + "1" + strings.Repeat(")", 5000) + `"}`
	code, out = do(t, s, http.MethodPost, "/eval", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["error"], "nested too deeply")
}

func TestServer_BodyLimit(t *testing.T) {
	s := newTestServer(t, 0)

	body := `{"expr": "` + strings.Repeat("1+", 64*1024) + `1"}`
	code, _ := do(t, s, http.MethodPost, "/eval", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
}

func TestServer_ProgramHashIsCanonical(t *testing.T) {
	s := newTestServer(t, 0)

	code, out := do(t, s, http.MethodPost, "/compile", `{"expr": "1 + 1"}`)
	require.Equal(t, http.StatusOK, code)
	hash, ok := out["hash"].(string)
	require.True(t, ok)

	code, out = do(t, s, http.MethodGet, "/program/"+strings.ToUpper(hash), "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, hash, out["hash"])
}
