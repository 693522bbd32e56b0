// Common test helpers
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/docsearch/config"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/meghashyamc/docsearch/session"
	"github.com/meghashyamc/docsearch/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

type testFile struct {
	name    string
	content string
}

// testFiles are uploaded in this order. The last two are rejected.
var testFiles = []testFile{
	{name: "notes.txt", content: "The quick brown fox.\nThe lazy dog sleeps.\nfoxes and fox_trot"},
	{name: "guide.md", content: "# Guide\nFox hunting is banned."},
	{name: "page.html", content: "<html><body><p>A fox on a page</p><script>fox()</script></body></html>"},
	{name: "binary.txt", content: "abc\x00def"},
	{name: "image.png", content: "PNG"},
}

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	endpoint         string
	expectedStatus   int
	expectedResponse map[string]any
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions) (*gin.Engine, *session.Session) {

	t.Setenv("ENV", "test")
	t.Setenv("HISTORY_PATH", filepath.Join(t.TempDir(), "history.db"))

	cfg, err := config.Load("")
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()

	sess, err := session.Open(testLogger, cfg)
	assert.NoError(err, "could not open session")
	t.Cleanup(func() {
		assert.NoError(sess.Close(), "could not close session")
	})

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")
	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupDocuments(router, testLogger, sess, validator)
	SetupSearch(router, testLogger, sess, validator, cfg.GetDefaultContextChars())
	SetupHistory(router, testLogger, sess)
	SetupAnalytics(router, testLogger, sess)
	SetupDebug(router, sess)

	return router, sess
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		endpoint = endpoint + "?"
		for key, value := range queryParams {
			if endpoint[len(endpoint)-1] != '?' {
				endpoint = endpoint + "&"
			}
			endpoint = endpoint + key + "=" + value
		}
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint, "headers", headers, "body", string(jsonBody))

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

func makeTestUploadRequest(router *gin.Engine, assert *require.Assertions, files []testFile) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, file := range files {
		part, err := writer.CreateFormFile(uploadFormField, file.name)
		assert.NoError(err)
		_, err = part.Write([]byte(file.content))
		assert.NoError(err)
	}
	assert.NoError(writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/documents", body)
	assert.NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func uploadTestFiles(router *gin.Engine, assert *require.Assertions) {
	w := makeTestUploadRequest(router, assert, testFiles)
	assert.Equal(http.StatusOK, w.Code, "uploading test files should succeed")
}

// assertContains checks that every field present in expected has the same
// value in actual. Slices must have the same length.
func assertContains(assert *require.Assertions, expected any, actual any, path string) {
	switch expectedValue := expected.(type) {
	case map[string]any:
		actualMap, ok := actual.(map[string]any)
		assert.True(ok, fmt.Sprintf("%s: expected an object, got %v", path, actual))
		for key, value := range expectedValue {
			actualValue, exists := actualMap[key]
			assert.True(exists, fmt.Sprintf("%s.%s: field not found", path, key))
			assertContains(assert, value, actualValue, path+"."+key)
		}
	case []any:
		actualSlice, ok := actual.([]any)
		assert.True(ok, fmt.Sprintf("%s: expected an array, got %v", path, actual))
		assert.Len(actualSlice, len(expectedValue), path)
		for i := range expectedValue {
			assertContains(assert, expectedValue[i], actualSlice[i], fmt.Sprintf("%s[%d]", path, i))
		}
	default:
		assert.Equal(expected, actual, path)
	}
}

func runTestCases(t *testing.T, router *gin.Engine, method string, testCases []testCase) {
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(router, assert, method, testCase.endpoint, testCase.requestHeaders, testCase.requestBody, testCase.queryParams)
			responseBytes := w.Body.Bytes()
			assert.Equal(testCase.expectedStatus, w.Code, fmt.Sprintf("response gotten was %s", string(responseBytes)))

			if testCase.expectedResponse != nil {
				var responseMap map[string]any
				err := json.Unmarshal(responseBytes, &responseMap)
				assert.NoError(err)
				assertContains(assert, testCase.expectedResponse, responseMap, "response")
			}
		})
	}
}
