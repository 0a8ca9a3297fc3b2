package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/expense/store"
	"github.com/MrJamesThe3rd/tally/internal/export"
	apihttp "github.com/MrJamesThe3rd/tally/internal/http"
	expenseHandler "github.com/MrJamesThe3rd/tally/internal/http/expense"
	exportHandler "github.com/MrJamesThe3rd/tally/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/tally/internal/http/matching"
	reportHandler "github.com/MrJamesThe3rd/tally/internal/http/report"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

var fixedNow = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

func newServer(t *testing.T) (http.Handler, *expense.Service) {
	t.Helper()

	now := func() time.Time { return fixedNow }

	expenses := expense.NewService(store.NewMemory(), expense.WithClock(now))

	router := apihttp.New([]string{"http://localhost:5173"}, apihttp.Handlers{
		Expenses: expenseHandler.NewHandler(expenses),
		Import:   importHandler.NewHandler(importer.NewService(expenses, importer.WithCategorizer(matching.NewService(expenses)))),
		Matching: matchingHandler.NewHandler(matching.NewService(expenses)),
		Export:   exportHandler.NewHandler(export.NewService(expenses), now),
		Reports:  reportHandler.NewHandler(expenses, now),
	})

	return router, expenses
}

func do(t *testing.T, h http.Handler, method, target, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestExpenses_CreateListUpdateDelete(t *testing.T) {
	h, _ := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/expenses", "application/json",
		[]byte(`{"amount":80,"category":"food","note":"Lunch"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Lunch", created["note"])

	rec = do(t, h, http.MethodPatch, "/api/v1/expenses/"+id, "application/json", []byte(`{"amount":5}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/expenses", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, float64(5), list[0]["amount"])
	assert.Equal(t, "food", list[0]["category"])

	rec = do(t, h, http.MethodDelete, "/api/v1/expenses/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/expenses/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenses_StatusMapping(t *testing.T) {
	h, _ := newServer(t)

	type testCase struct {
		name   string
		method string
		target string
		body   string
		want   int
	}

	tests := []testCase{
		{name: "InvalidAmount", method: http.MethodPost, target: "/api/v1/expenses", body: `{"amount":0,"category":"food","note":"x"}`, want: http.StatusBadRequest},
		{name: "InvalidCategory", method: http.MethodPost, target: "/api/v1/expenses", body: `{"amount":3,"category":"travel","note":"x"}`, want: http.StatusBadRequest},
		{name: "MalformedJSON", method: http.MethodPost, target: "/api/v1/expenses", body: `{`, want: http.StatusBadRequest},
		{name: "UpdateUnknown", method: http.MethodPatch, target: "/api/v1/expenses/nope", body: `{"amount":3}`, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, "application/json", []byte(tt.body))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestExpenses_ReplaceAll(t *testing.T) {
	h, expenses := newServer(t)

	body := `[{"id":"a","amount":3,"category":"food","note":"x","created_at":"2024-01-10T10:00:00Z"}]`

	rec := do(t, h, http.MethodPut, "/api/v1/expenses", "application/json", []byte(body))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	got := expenses.List(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestExpenses_RejectsNonJSONBody(t *testing.T) {
	h, _ := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/expenses", "text/plain", []byte(`{"amount":3}`))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestSuggest(t *testing.T) {
	h, expenses := newServer(t)

	_, err := expenses.Add(context.Background(), expense.Fields{Amount: 2, Category: expense.CategoryTransportation, Note: "Bus"})
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/v1/expenses/suggest?note=bus+ticket", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"note":"bus ticket","category":"transportation"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/expenses/suggest", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImport(t *testing.T) {
	t.Run("RawBody", func(t *testing.T) {
		h, expenses := newServer(t)

		rec := do(t, h, http.MethodPost, "/api/v1/import", "text/csv",
			[]byte("date,category,note,amount\n2024-01-15,food,Lunch,80"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"imported":1}`, rec.Body.String())
		assert.Len(t, expenses.List(context.Background()), 1)
	})

	t.Run("Multipart", func(t *testing.T) {
		h, _ := newServer(t)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", "expenses.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte("2024-01-15,food,a,1\n2024-01-16,food,b,2"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		rec := do(t, h, http.MethodPost, "/api/v1/import", mw.FormDataContentType(), body.Bytes())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"imported":2}`, rec.Body.String())
	})

	t.Run("NoRows", func(t *testing.T) {
		h, _ := newServer(t)

		rec := do(t, h, http.MethodPost, "/api/v1/import", "text/csv", []byte("garbage,garbage"))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("Statement", func(t *testing.T) {
		h, expenses := newServer(t)

		statement := "Data mov.;Descrição;Montante\n30-01-2026;PADARIA;-3,20\n31-01-2026;SALARIO;1.000,00\n"

		rec := do(t, h, http.MethodPost, "/api/v1/import?format=cgd", "text/csv", []byte(statement))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"imported":1}`, rec.Body.String())

		list := expenses.List(context.Background())
		require.Len(t, list, 1)
		assert.Equal(t, "PADARIA", list[0].Note)
		assert.Equal(t, int64(3), list[0].Amount)
	})

	t.Run("StatementUnknownLayout", func(t *testing.T) {
		h, _ := newServer(t)

		rec := do(t, h, http.MethodPost, "/api/v1/import?format=cgd", "text/csv", []byte("a;b;c"))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		h, _ := newServer(t)

		rec := do(t, h, http.MethodPost, "/api/v1/import?format=ofx", "text/csv", []byte("x"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExport(t *testing.T) {
	h, expenses := newServer(t)
	ctx := context.Background()

	_, err := expenses.Add(ctx, expense.Fields{Amount: 7, Category: expense.CategoryFood, Note: "Tea, hot"})
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/v1/export/csv", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "date,category,note,amount\n2024-01-15,food,\"Tea, hot\",7", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "expenses_20240115.csv")

	rec = do(t, h, http.MethodGet, "/api/v1/export/csv?start_date=2024-01-16", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "date,category,note,amount", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/export/csv?end_date=bad", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/export/xlsx", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestReports(t *testing.T) {
	h, expenses := newServer(t)

	require.NoError(t, expenses.ReplaceAll(context.Background(), []expense.Expense{
		{ID: "b", Amount: 5, Category: expense.CategoryFood, Note: "x", CreatedAt: fixedNow},
		{ID: "a", Amount: 3, Category: expense.CategoryShopping, Note: "y", CreatedAt: fixedNow.AddDate(0, 0, -1)},
	}))

	rec := do(t, h, http.MethodGet, "/api/v1/reports/days", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var days []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &days))
	require.Len(t, days, 2)
	assert.Equal(t, "Today", days[0]["label"])
	assert.Equal(t, "Yesterday", days[1]["label"])

	rec = do(t, h, http.MethodGet, "/api/v1/reports/periods?period=month", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var periods []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &periods))
	require.Len(t, periods, 1)
	assert.Equal(t, "2024-01", periods[0]["key"])
	assert.Equal(t, float64(8), periods[0]["total"])

	rec = do(t, h, http.MethodGet, "/api/v1/reports/periods?period=year", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReports_DaysShareExpenseShape(t *testing.T) {
	h, expenses := newServer(t)

	require.NoError(t, expenses.ReplaceAll(context.Background(), []expense.Expense{
		{ID: "b", Amount: 5, Category: expense.CategoryFood, Note: "x", CreatedAt: fixedNow},
	}))

	rec := do(t, h, http.MethodGet, "/api/v1/expenses", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/days", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var days []struct {
		Expenses []map[string]any `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &days))
	require.Len(t, days, 1)
	require.Len(t, days[0].Expenses, 1)

	assert.Equal(t, list[0], days[0].Expenses[0])
}
