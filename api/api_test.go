package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/citeai/api/handler"
	"github.com/fyerfyer/citeai/api/middleware"
	"github.com/fyerfyer/citeai/internal/cache"
	"github.com/fyerfyer/citeai/internal/database"
	"github.com/fyerfyer/citeai/internal/document"
	"github.com/fyerfyer/citeai/internal/llm"
	"github.com/fyerfyer/citeai/internal/paper"
	"github.com/fyerfyer/citeai/internal/repository"
	"github.com/fyerfyer/citeai/internal/services"
)

const testDraft = "Introduction\nClimate is changing fast. Models agree on the trend.\n" +
	"Conclusion\nAction is needed now."

// 测试环境配置
type testEnv struct {
	Router    *gin.Engine
	LLMClient *llm.MockClient
	Repo      repository.GenerationRepository
}

// 创建测试环境
func setupTestEnv(t *testing.T, withDB bool) *testEnv {
	gin.SetMode(gin.TestMode)
	middleware.GetLogger().SetLevel(logrus.ErrorLevel)

	memCache, err := cache.NewMemoryCache(cache.DefaultConfig())
	require.NoError(t, err)

	assembler, err := paper.NewAssembler(paper.WithRandomSource(paper.NewRandomSource(42)))
	require.NoError(t, err)

	mockLLM := llm.NewMockClient(t)
	mockLLM.EXPECT().Name().Return(llm.ModelDeepSeekR1ZeroFree).Maybe()

	opts := []services.PaperOption{services.WithLogger(middleware.GetLogger())}
	env := &testEnv{LLMClient: mockLLM}

	handlers := Handlers{Export: handler.NewExportHandler()}
	if withDB {
		dbName := fmt.Sprintf("file:memdb_api_%d?mode=memory&cache=shared", time.Now().UnixNano())
		db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, database.AutoMigrate(db))

		env.Repo = repository.NewGenerationRepositoryWithDB(db)
		opts = append(opts, services.WithGenerationRepository(env.Repo))
		handlers.Generation = handler.NewGenerationHandler(env.Repo)
	}

	paperService := services.NewPaperService(mockLLM, assembler, memCache, opts...)
	handlers.Paper = handler.NewPaperHandler(paperService, handler.PaperLimits{
		MaxWordLimit: 5000,
		MaxSections:  3,
	})

	env.Router = SetupRouter(handlers, middleware.DefaultCORSConfig())
	return env
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthAndStatus(t *testing.T) {
	env := setupTestEnv(t, false)

	w := doJSON(t, env.Router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"1.0.0","api_key_configured":true}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = doJSON(t, env.Router, http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"online","message":"API is operational"}`, w.Body.String())
}

func TestCreateContent_EmptySectionList(t *testing.T) {
	env := setupTestEnv(t, false)

	env.LLMClient.EXPECT().
		Generate(mock.Anything, services.BuildPrompt("Climate change", 500, []string{}), mock.Anything).
		Return(&llm.Response{Text: testDraft}, nil).
		Once()

	w := doJSON(t, env.Router, http.MethodPost, "/api/create-content", map[string]interface{}{
		"topic":      "Climate change",
		"word_limit": 500,
		"sections":   []string{},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `{}`, string(resp["sections"]))
	assert.JSONEq(t, `0`, string(resp["word_count"]))
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestEnv(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/create-content", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestCreateContent(t *testing.T) {
	env := setupTestEnv(t, true)

	env.LLMClient.EXPECT().
		Generate(mock.Anything, mock.Anything, mock.Anything).
		Return(&llm.Response{Text: testDraft, TokenCount: 120}, nil).
		Once()

	w := doJSON(t, env.Router, http.MethodPost, "/api/create-content", map[string]interface{}{
		"topic":      "Climate change",
		"word_limit": 500,
		"sections":   []string{"Introduction", "Conclusion"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status           string            `json:"status"`
		Sections         map[string]string `json:"sections"`
		WordCount        int               `json:"word_count"`
		ReadabilityScore int               `json:"readability_score"`
		OriginalityScore int               `json:"originality_score"`
		PlagiarismScore  int               `json:"plagiarism_score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Action is needed now.", resp.Sections["conclusion"])
	assert.Contains(t, resp.Sections["introduction"], "Climate is changing fast.")
	assert.Equal(t, 18, resp.WordCount)
	assert.GreaterOrEqual(t, resp.OriginalityScore, paper.DefaultOriginalityMin)
	assert.LessOrEqual(t, resp.OriginalityScore, paper.DefaultOriginalityMax)
	assert.Equal(t, resp.OriginalityScore, resp.PlagiarismScore)

	// 章节按匹配顺序输出
	body := w.Body.String()
	assert.Less(t, strings.Index(body, `"introduction"`), strings.Index(body, `"conclusion"`))

	// 生成记录可以查询到
	w = doJSON(t, env.Router, http.MethodGet, "/api/generations?page=1&page_size=5&status=success", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Code int `json:"code"`
		Data struct {
			Total       int64 `json:"total"`
			Page        int   `json:"page"`
			PageSize    int   `json:"page_size"`
			Generations []struct {
				ID              string   `json:"id"`
				Topic           string   `json:"topic"`
				Sections        []string `json:"sections"`
				MatchedSections int      `json:"matched_sections"`
				TokenCount      int      `json:"token_count"`
			} `json:"generations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Code)
	assert.Equal(t, int64(1), list.Data.Total)
	assert.Equal(t, 5, list.Data.PageSize)
	require.Len(t, list.Data.Generations, 1)
	gen := list.Data.Generations[0]
	assert.Equal(t, "Climate change", gen.Topic)
	assert.Equal(t, []string{"Introduction", "Conclusion"}, gen.Sections)
	assert.Equal(t, 2, gen.MatchedSections)
	assert.Equal(t, 120, gen.TokenCount)

	w = doJSON(t, env.Router, http.MethodGet, "/api/generations/"+gen.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.Router, http.MethodGet, "/api/generations/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestCreateContent_Validation(t *testing.T) {
	env := setupTestEnv(t, false)

	tests := []struct {
		name    string
		body    map[string]interface{}
		message string
	}{
		{
			name:    "missing topic",
			body:    map[string]interface{}{"word_limit": 100},
			message: "topic is required",
		},
		{
			name:    "missing word limit",
			body:    map[string]interface{}{"topic": "AI"},
			message: "word_limit is required",
		},
		{
			name:    "negative word limit",
			body:    map[string]interface{}{"topic": "AI", "word_limit": -5},
			message: "word_limit must be at least 1",
		},
		{
			name:    "word limit above maximum",
			body:    map[string]interface{}{"topic": "AI", "word_limit": 5001},
			message: "word_limit must be at most 5000",
		},
		{
			name:    "blank section title",
			body:    map[string]interface{}{"topic": "AI", "word_limit": 100, "sections": []string{"Intro", "  "}},
			message: "must be a non-blank title",
		},
		{
			name:    "too many sections",
			body:    map[string]interface{}{"topic": "AI", "word_limit": 100, "sections": []string{"A", "B", "C", "D"}},
			message: "at most 3 sections",
		},
		{
			name:    "blank topic",
			body:    map[string]interface{}{"topic": "   ", "word_limit": 100},
			message: "topic cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, env.Router, http.MethodPost, "/api/create-content", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp["status"])
			assert.Contains(t, resp["message"], tt.message)
		})
	}
}

func TestCreateContent_ProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{
			name:    "provider error",
			err:     llm.LLMError{Code: llm.ErrCodeRateLimited, Message: "Rate limit exceeded", StatusCode: 429},
			code:    http.StatusBadGateway,
			message: "AI request failed: Rate limit exceeded",
		},
		{
			name:    "timeout",
			err:     llm.NewLLMError(llm.ErrCodeTimeout, llm.ErrMsgTimeout),
			code:    http.StatusGatewayTimeout,
			message: "Request timed out. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t, false)
			env.LLMClient.EXPECT().
				Generate(mock.Anything, mock.Anything, mock.Anything).
				Return(nil, tt.err).
				Once()

			w := doJSON(t, env.Router, http.MethodPost, "/api/create-content", map[string]interface{}{
				"topic":      "AI",
				"word_limit": 100,
			})
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"status":"error","message":%q}`, tt.message), w.Body.String())
		})
	}
}

func TestCreateContent_APIKeyMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	assembler, err := paper.NewAssembler()
	require.NoError(t, err)

	paperService := services.NewPaperService(nil, assembler, cache.NewNoopCache())
	router := SetupRouter(Handlers{
		Paper:  handler.NewPaperHandler(paperService, handler.DefaultPaperLimits()),
		Export: handler.NewExportHandler(),
	}, middleware.DefaultCORSConfig())

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Contains(t, w.Body.String(), `"api_key_configured":false`)

	w = doJSON(t, router, http.MethodPost, "/api/create-content", map[string]interface{}{
		"topic":      "AI",
		"word_limit": 100,
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"API key not configured on server"}`, w.Body.String())

	// 数据库关闭时不注册生成记录路由
	w = doJSON(t, router, http.MethodGet, "/api/generations", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport(t *testing.T) {
	env := setupTestEnv(t, false)

	sections := []map[string]string{
		{"title": "introduction", "content": "Deep learning has changed vision."},
		{"title": "conclusion", "content": "More work is needed."},
	}

	t.Run("markdown", func(t *testing.T) {
		w := doJSON(t, env.Router, http.MethodPost, "/api/export", map[string]interface{}{
			"title":    "Deep Learning",
			"format":   "markdown",
			"sections": sections,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="deep-learning.md"`)
		assert.Contains(t, w.Body.String(), "## Introduction\n\nDeep learning has changed vision.")
	})

	t.Run("html", func(t *testing.T) {
		w := doJSON(t, env.Router, http.MethodPost, "/api/export", map[string]interface{}{
			"title":    "Deep Learning",
			"format":   "html",
			"sections": sections,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `<h2 id="conclusion">Conclusion</h2>`)
	})

	t.Run("pdf", func(t *testing.T) {
		w := doJSON(t, env.Router, http.MethodPost, "/api/export", map[string]interface{}{
			"title":    "Deep Learning",
			"format":   "pdf",
			"sections": sections,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment"))
		assert.NoError(t, document.ValidatePDF(w.Body.Bytes()))
	})

	t.Run("invalid format", func(t *testing.T) {
		w := doJSON(t, env.Router, http.MethodPost, "/api/export", map[string]interface{}{
			"title":    "Deep Learning",
			"format":   "docx",
			"sections": sections,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			TraceID string `json:"trace_id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Message, "format must be one of")
		assert.NotEmpty(t, resp.TraceID)
	})

	t.Run("no sections", func(t *testing.T) {
		w := doJSON(t, env.Router, http.MethodPost, "/api/export", map[string]interface{}{
			"title":  "Deep Learning",
			"format": "markdown",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetGenerationNotFound(t *testing.T) {
	env := setupTestEnv(t, true)

	w := doJSON(t, env.Router, http.MethodGet, "/api/generations/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "generation not found")
}

func TestListGenerations_InvalidStatus(t *testing.T) {
	env := setupTestEnv(t, true)

	w := doJSON(t, env.Router, http.MethodGet, "/api/generations?status=pending", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTraceIDPropagation(t *testing.T) {
	env := setupTestEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-Trace-ID", "trace-abc")
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	assert.Equal(t, "trace-abc", w.Header().Get("X-Trace-ID"))
}
