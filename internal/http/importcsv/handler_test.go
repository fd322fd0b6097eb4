package importcsv_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/session"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func newRequest(t *testing.T, field, content string, cookie *http.Cookie) *http.Request {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	if field != "" {
		fw, err := mw.CreateFormFile(field, "statement.csv")
		require.NoError(t, err)

		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if cookie != nil {
		req.AddCookie(cookie)
	}

	return req
}

func newRouter(repo transaction.Repository) http.Handler {
	h := importcsv.NewHandler(importer.NewService(), transaction.NewService(repo), session.NewResolver())

	r := chi.NewRouter()
	r.Route("/import", h.Routes)

	return r
}

func TestHandler_Import(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := transaction.NewMockRepository(ctrl)
	batch := transaction.NewMockBatchTx(ctrl)

	gomock.InOrder(
		repo.EXPECT().BeginBatch(gomock.Any(), "s-1").Return(batch, nil),
		batch.EXPECT().
			CreateTransactions(gomock.Any(), gomock.Len(2)).
			DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
				assert.Equal(t, "-20", txs[0].Amount.String())
				assert.Equal(t, "30", txs[1].Amount.String())

				return nil
			}),
		batch.EXPECT().Commit().Return(nil),
		batch.EXPECT().Rollback().Return(nil),
	)

	csv := "title,amount,type\nCoxinha,20,debit\nSalary,30,credit\n"
	cookie := &http.Cookie{Name: session.DefaultCookieName, Value: "s-1"}

	w := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(w, newRequest(t, "file", csv, cookie))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Imported     int `json:"imported"`
		Transactions []struct {
			Title     string      `json:"title"`
			Amount    json.Number `json:"amount"`
			SessionID string      `json:"session_id"`
		} `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.Imported)
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, "Coxinha", resp.Transactions[0].Title)
	assert.Equal(t, json.Number("-20"), resp.Transactions[0].Amount)
	assert.Equal(t, "s-1", resp.Transactions[0].SessionID)
}

func TestHandler_ImportMintsSession(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := transaction.NewMockRepository(ctrl)
	batch := transaction.NewMockBatchTx(ctrl)

	repo.EXPECT().BeginBatch(gomock.Any(), gomock.Any()).Return(batch, nil)
	batch.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(1)).Return(nil)
	batch.EXPECT().Commit().Return(nil)
	batch.EXPECT().Rollback().Return(nil)

	w := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(w, newRequest(t, "file", "title,amount\nCoxinha,-20\n", nil))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.DefaultCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestHandler_ImportRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		content string
	}{
		{name: "no file", field: "", content: ""},
		{name: "unknown header", field: "file", content: "foo,bar\n1,2\n"},
		{name: "bad amount", field: "file", content: "title,amount\nCoxinha,abc\n"},
		{name: "header only", field: "file", content: "title,amount\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)

			w := httptest.NewRecorder()
			newRouter(repo).ServeHTTP(w, newRequest(t, tt.field, tt.content, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, w.Result().Cookies())
		})
	}
}
