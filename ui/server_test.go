package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"leadboard/adapters/excel"
	"leadboard/app"
	"leadboard/domain/leads"
	"leadboard/internal/auth"
	"leadboard/internal/config"
	"leadboard/internal/dataset"
	"leadboard/internal/export"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "admin2026"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, loginsPerMinute int) *Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	gate, err := auth.NewGate(config.AdminConfig{PasswordHash: string(hash), SessionSecret: "secret", SessionTTL: time.Hour})
	require.NoError(t, err)

	store := dataset.NewCachedStore(dataset.NewFileStore(filepath.Join(t.TempDir(), "base_leads.xlsx")), time.Minute)
	s := NewServer(Deps{
		Dashboard: app.NewDashboardService(store, app.DashboardSettings{TopGroups: 10, TopStatuses: 8, PageSize: 20}, nil),
		Admin:     app.NewAdminService(store, 8, nil),
		Gate:      gate,
		Throttle:  auth.NewLoginThrottle(loginsPerMinute),
		Config:    config.ServerConfig{MaxUploadMB: 1},
	})
	s.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, s *Server) string {
	t.Helper()
	w := do(s, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"`+testPassword+`"}`)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func uploadRequest(t *testing.T, path, token string, headers []string, rows [][]string) *http.Request {
	t.Helper()
	sheet := [][]interface{}{}
	for _, r := range append([][]string{headers}, rows...) {
		row := make([]interface{}, len(r))
		for i, c := range r {
			row[i] = c
		}
		sheet = append(sheet, row)
	}
	raw, err := excel.EncodeWorkbook(excel.SheetData{Name: "Sheet1", Rows: sheet})
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "base.xlsx")
	require.NoError(t, err)
	_, err = part.Write(raw)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func seed(t *testing.T, s *Server) string {
	t.Helper()
	token := login(t, s)
	w := do(s, uploadRequest(t, "/api/admin/dataset", token,
		append([]string{leads.ColumnName}, leads.RequiredColumns...),
		[][]string{
			{"Ana", "2024-01-01 10:00", "A", "Disparado", "Novo"},
			{"Bia", "2024-01-02 11:00", "B", "não disparado", "Sem WhatsApp"},
			{"Caio", "2024-01-02 12:00", "B", "Disparado", "Novo"},
		}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 5)
	w := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestDashboardWithoutData(t *testing.T) {
	s := newTestServer(t, 5)

	for _, path := range []string{"/api/dashboard", "/api/options", "/api/export"} {
		w := do(s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "no data available")
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, 5)

	w := do(s, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(s, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	login(t, s)
}

func TestLoginIsThrottled(t *testing.T) {
	s := newTestServer(t, 2)
	for i := 0; i < 2; i++ {
		w := do(s, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"wrong"}`)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := do(s, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"wrong"}`)))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAdminRoutesNeedSession(t *testing.T) {
	s := newTestServer(t, 5)
	req := uploadRequest(t, "/api/admin/dataset", "", leads.RequiredColumns, nil)
	assert.Equal(t, http.StatusUnauthorized, do(s, req).Code)

	req = uploadRequest(t, "/api/admin/dataset", "forged.token.value", leads.RequiredColumns, nil)
	assert.Equal(t, http.StatusUnauthorized, do(s, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/overview", nil)
	assert.Equal(t, http.StatusUnauthorized, do(s, req).Code)
}

func TestUploadMissingColumns(t *testing.T) {
	s := newTestServer(t, 5)
	token := seed(t, s)

	w := do(s, uploadRequest(t, "/api/admin/dataset", token,
		[]string{leads.ColumnCreatedAt, leads.ColumnInterestGroup, leads.ColumnDispatch},
		[][]string{{"2024-01-01", "A", "disparado"}}))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		MissingColumns []string `json:"missing_columns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{leads.ColumnLeadStatus}, body.MissingColumns)

	w = do(s, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_leads":3`, "prior dataset still served")
}

func TestPreviewAndOverview(t *testing.T) {
	s := newTestServer(t, 5)
	token := seed(t, s)

	w := do(s, uploadRequest(t, "/api/admin/preview", token, leads.RequiredColumns,
		[][]string{{"2024-03-01", "Z", "disparado", "Novo"}}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"rows":1`)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/overview", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = do(s, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_leads":3`, "preview does not replace the dataset")
}

func TestDashboardFilters(t *testing.T) {
	s := newTestServer(t, 5)
	seed(t, s)

	get := func(query string) (int, map[string]json.RawMessage) {
		w := do(s, httptest.NewRequest(http.MethodGet, "/api/dashboard"+query, nil))
		var body map[string]json.RawMessage
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		return w.Code, body
	}
	metrics := func(body map[string]json.RawMessage) map[string]float64 {
		var m map[string]float64
		require.NoError(t, json.Unmarshal(body["metrics"], &m))
		return m
	}

	code, body := get("")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3.0, metrics(body)["total_leads"])
	assert.InDelta(t, 66.67, metrics(body)["dispatch_rate_percent"], 0.01)

	code, body = get("?group=B&dispatch=Dispatched")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, metrics(body)["total_leads"])

	code, body = get("?group=")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, metrics(body)["total_leads"], "empty selection matches nothing")

	code, body = get("?from=2024-01-02&to=2024-01-02")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2.0, metrics(body)["total_leads"])

	code, _ = get("?from=02/01/2024")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = get("?from=2024-02-01&to=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = get("?top=many")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOptions(t *testing.T) {
	s := newTestServer(t, 5)
	seed(t, s)

	w := do(s, httptest.NewRequest(http.MethodGet, "/api/options", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var opts leads.Options
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Equal(t, []string{"A", "B"}, opts.InterestGroups)
	assert.Equal(t, "2024-01-02", opts.MaxDate.String())
}

func TestExportDownload(t *testing.T) {
	s := newTestServer(t, 5)
	seed(t, s)

	w := do(s, httptest.NewRequest(http.MethodGet, "/api/export?dispatch=NotDispatched", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="leads_whatsapp_20260203_040506.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	sheet, err := excel.DecodeWorkbook(bytes.NewReader(w.Body.Bytes()), export.LeadsSheet)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "Bia", sheet.Rows[0][1])
	assert.Equal(t, "Sem WhatsApp", sheet.Rows[0][len(sheet.Rows[0])-1])
}

func TestUploadOverLimit(t *testing.T) {
	s := newTestServer(t, 5)
	token := login(t, s)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "huge.xlsx")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 2<<20))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/preview", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := do(s, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "1 MB")
}
