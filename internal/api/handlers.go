package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/period"
	"github.com/beesaferoot/imobipro/internal/report"
	"github.com/beesaferoot/imobipro/internal/sheet"
	"github.com/beesaferoot/imobipro/internal/store"
	"github.com/beesaferoot/imobipro/models"
)

type propertyTaxRequest struct {
	DueDate string `json:"due_date"`
}

func (s *Server) generatePropertyTax(w http.ResponseWriter, r *http.Request) {
	var req propertyTaxRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	res, err := s.gen.RunPropertyTax(r.Context(), req.DueDate)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

func (s *Server) generateCondo(w http.ResponseWriter, r *http.Request) {
	today, ok := parseToday(w, r, s.now())
	if !ok {
		return
	}
	res, err := s.gen.RunCondo(r.Context(), today)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

func (s *Server) generateBilling(w http.ResponseWriter, r *http.Request) {
	today, ok := parseToday(w, r, s.now())
	if !ok {
		return
	}
	res, err := s.gen.RunBilling(r.Context(), today)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

func (s *Server) payExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	today, ok := parseToday(w, r, s.now())
	if !ok {
		return
	}
	if err := s.gen.PayExpense(r.Context(), id, today); err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "paid_on": today.Format(period.ISO)})
}

func (s *Server) receiveReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	today, ok := parseToday(w, r, s.now())
	if !ok {
		return
	}
	if err := s.gen.ReceiveReceipt(r.Context(), id, today); err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "received_on": today.Format(period.ISO)})
}

// pendingFilter reads type, due_before and situation from the query string.
func pendingFilter(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	var f report.Filter
	if v := q.Get("type"); v != "" {
		t, err := models.ParseExpenseType(v)
		if err != nil {
			return f, batch.Invalid("type", "%v", err)
		}
		f.Type = t
	}
	f.DueBefore = q.Get("due_before")
	situation, err := report.ParseSituation(q.Get("situation"))
	if err != nil {
		return f, err
	}
	f.Situation = situation
	return f, nil
}

func (s *Server) pendingReport(w http.ResponseWriter, r *http.Request) (*report.PendingExpenses, bool) {
	f, err := pendingFilter(r)
	if err != nil {
		errorToHTTP(w, err)
		return nil, false
	}
	rep, err := report.Pending(r.Context(), s.store, f, s.now())
	if err != nil {
		errorToHTTP(w, err)
		return nil, false
	}
	return rep, true
}

func (s *Server) pendingExpenses(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.pendingReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) pendingExpensesXLSX(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.pendingReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rep.FileName(s.now())+`"`)
	if err := rep.WriteXLSX(w); err != nil {
		s.log.Printf("api: failed to write pending expenses workbook: %v", err)
	}
}

// importUpload migrates an uploaded workbook (.xlsx) or CSV archive (.zip)
// sent in the "file" form field.
func (s *Server) importUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "failed to parse form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "no file uploaded, use form field 'file'")
		return
	}
	defer file.Close()

	var src sheet.Source
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx", ".xlsm":
		opts := sheet.Options{EvaluateFormulas: r.FormValue("evaluate_formulas") == "true"}
		src, err = sheet.ReadWorkbook(file, opts)
	case ".zip":
		src, err = sheet.ReadCSVZip(file, header.Size)
	default:
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "only .xlsx workbooks and .zip csv archives are supported")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return
	}
	defer src.Close()

	s.runImport(w, r, src)
}

// runImport migrates src and writes the report. A run stopped by an
// unreadable sheet still records and returns the stages it completed.
func (s *Server) runImport(w http.ResponseWriter, r *http.Request, src sheet.Source) {
	rep, runErr := s.importer.Run(r.Context(), src)
	if rep == nil {
		errorToHTTP(w, runErr)
		return
	}

	total := rep.Total()
	if _, err := store.RecordRun(r.Context(), s.store, models.RunImport, s.now().Format(period.ISO), total, s.now()); err != nil {
		s.log.Printf("api: failed to record import run: %v", err)
	}

	body := map[string]any{
		"stages": rep.Stages,
		"total":  newResultResponse(total),
		"errors": rep.FirstErrors(10),
	}
	if runErr != nil {
		s.log.Printf("api: import stopped early: %v", runErr)
		body["error"] = runErr.Error()
		body["code"] = "IMPORT_INCOMPLETE"
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.History(r.Context(), s.store)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) createBackup(w http.ResponseWriter, r *http.Request) {
	if s.backups == nil {
		writeError(w, http.StatusNotImplemented, "UNSUPPORTED", "backups are not configured")
		return
	}
	entry, err := s.backups.Create(r.Context())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	var removed []string
	if s.backupKeep > 0 {
		if removed, err = s.backups.Prune(s.backupKeep); err != nil {
			s.log.Printf("api: backup prune failed: %v", err)
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{"backup": entry, "removed": removed})
}

func (s *Server) listBackups(w http.ResponseWriter, r *http.Request) {
	if s.backups == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	entries, err := s.backups.List()
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
