package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/beesaferoot/imobipro/internal/billing"
	"github.com/beesaferoot/imobipro/internal/importer"
	"github.com/beesaferoot/imobipro/internal/sheet"
	"github.com/beesaferoot/imobipro/internal/store"
	"github.com/beesaferoot/imobipro/models"
)

func setupServer(t *testing.T) (*Server, *store.GormStore) {
	db, err := store.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	s := store.New(db)
	quiet := log.New(io.Discard, "", 0)

	srv := New(Deps{
		Store:     s,
		Generator: billing.NewGenerator(s, quiet),
		Importer:  importer.New(s, quiet, importer.Defaults{}),
		Logger:    quiet,
	})
	srv.now = func() time.Time { return time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC) }
	return srv, s
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func seedContract(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := &models.Property{Address: "Rua A, 100", SuggestedCondoFee: decimal.NewNullDecimal(decimal.NewFromInt(300))}
	require.NoError(t, s.Insert(ctx, p))
	tenant := &models.Person{FullName: "Ana Lima"}
	require.NoError(t, s.Insert(ctx, tenant))
	require.NoError(t, s.Insert(ctx, &models.Contract{PropertyID: p.ID, TenantID: tenant.ID, RentAmount: decimal.NewNullDecimal(decimal.NewFromInt(1500))}))
}

func TestHealthz(t *testing.T) {
	srv, _ := setupServer(t)
	rec := do(t, srv.Routes(), http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestGenerateBillingEndpoint(t *testing.T) {
	srv, s := setupServer(t)
	seedContract(t, s)
	h := srv.Routes()

	rec := do(t, h, http.MethodPost, "/receipts/billing", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["created"])
	assert.Equal(t, float64(0), body["errored"])

	rec = do(t, h, http.MethodPost, "/receipts/billing?today=2026-03-28", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["ignored"])

	rec = do(t, h, http.MethodPost, "/receipts/billing?today=28/03/2026", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/runs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []models.RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 2)
}

func TestPropertyTaxEndpoint(t *testing.T) {
	srv, s := setupServer(t)
	require.NoError(t, s.Insert(context.Background(), &models.Property{Address: "Rua A", AnnualTax: decimal.NewNullDecimal(decimal.NewFromInt(1200))}))
	h := srv.Routes()

	rec := do(t, h, http.MethodPost, "/expenses/property-tax", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec)["code"])

	rec = do(t, h, http.MethodPost, "/expenses/property-tax", strings.NewReader(`{"due_date":"2026-11-30"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["created"])

	rec = do(t, h, http.MethodPost, "/expenses/property-tax", strings.NewReader(`{"due_date":`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/expenses/property-tax", strings.NewReader(`{"due_date":"2026-13-45"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec)["code"])
}

func TestPayAndReceiveEndpoints(t *testing.T) {
	srv, s := setupServer(t)
	seedContract(t, s)
	h := srv.Routes()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/expenses/condo", nil, "").Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/receipts/billing", nil, "").Code)

	rec := do(t, h, http.MethodPost, "/expenses/1/pay", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-03-15", decode(t, rec)["paid_on"])

	rec = do(t, h, http.MethodPost, "/receipts/1/receive?today=2026-03-12", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var r models.Receipt
	require.NoError(t, s.Get(context.Background(), &r, 1))
	assert.Equal(t, models.ReceiptReceived, r.Status)
	assert.Equal(t, "2026-03-12", *r.ReceivedOn)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/expenses/99/pay", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/expenses/abc/pay", nil, "").Code)
}

func TestPendingExpensesEndpoints(t *testing.T) {
	srv, s := setupServer(t)
	seedContract(t, s)
	h := srv.Routes()
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/expenses/condo", nil, "").Code)

	rec := do(t, h, http.MethodGet, "/reports/pending-expenses?type=Condominio", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = do(t, h, http.MethodGet, "/reports/pending-expenses?situation=someday", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/reports/pending-expenses.xlsx", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "pending_expenses_20260315_090000.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Pending expenses"}, f.GetSheetList())
}

func TestImportEndpoint(t *testing.T) {
	srv, s := setupServer(t)
	h := srv.Routes()

	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetName("Sheet1", "imoveis"))
	require.NoError(t, wb.SetSheetRow("imoveis", "A1", &[]interface{}{"ID_Propriedade", "EnderecoCompleto", "ValorIPTUAnual"}))
	require.NoError(t, wb.SetSheetRow("imoveis", "A2", &[]interface{}{1, "Rua A, 100", 1200}))
	require.NoError(t, wb.SetSheetRow("imoveis", "A3", &[]interface{}{2, "", 900}))
	xlsx, err := wb.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "planilha.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := do(t, h, http.MethodPost, "/imports", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	total := out["total"].(map[string]any)
	assert.Equal(t, float64(1), total["created"])
	assert.Equal(t, float64(1), total["errored"])
	assert.Len(t, out["errors"], 1)

	n, err := s.Count(context.Background(), &models.Property{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rec = do(t, h, http.MethodPost, "/imports", strings.NewReader(""), "multipart/form-data; boundary=----test")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type unreadableSource struct{ sheet.Memory }

func (u unreadableSource) Sheet(name string) (*sheet.Sheet, error) {
	if name == importer.SheetContracts {
		return nil, errors.New("corrupt sheet")
	}
	return u.Memory.Sheet(name)
}

func TestImportKeepsPartialReport(t *testing.T) {
	srv, s := setupServer(t)

	src := unreadableSource{sheet.NewMemory(map[string][][]string{
		importer.SheetProperties: {{"ID_Propriedade", "EnderecoCompleto"}, {"1", "Rua A, 100"}},
	})}
	req := httptest.NewRequest(http.MethodPost, "/imports", nil)
	rec := httptest.NewRecorder()
	srv.runImport(rec, req, src)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "IMPORT_INCOMPLETE", out["code"])
	assert.Contains(t, out["error"], "corrupt sheet")
	assert.Len(t, out["stages"], 2)
	assert.Equal(t, float64(1), out["total"].(map[string]any)["created"])

	runs, err := store.History(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunImport, runs[0].Kind)
	assert.Equal(t, 1, runs[0].Created)
}

func TestBackupsUnavailable(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Routes()

	assert.Equal(t, http.StatusNotImplemented, do(t, h, http.MethodPost, "/backups", nil, "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/backups", nil, "").Code)
}
