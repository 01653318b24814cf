package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"khata/internal/core"
	"khata/internal/reports"
	"khata/internal/sheet"
	"khata/internal/workbook/excel"
)

const maxUploadBytes = 10 << 20

type totalsDTO struct {
	Month        string `json:"month"`
	Label        string `json:"label"`
	PlannedCents int64  `json:"planned_cents"`
	ActualCents  int64  `json:"actual_cents"`
}

type overspendDTO struct {
	Category     string `json:"category"`
	PlannedCents int64  `json:"planned_cents"`
	ActualCents  int64  `json:"actual_cents"`
	ExcessCents  int64  `json:"excess_cents"`
}

type rankedDTO struct {
	Category    string `json:"category"`
	ActualCents int64  `json:"actual_cents"`
}

type trendPointDTO struct {
	Month        string `json:"month"`
	Label        string `json:"label"`
	PlannedCents int64  `json:"planned_cents"`
	ActualCents  int64  `json:"actual_cents"`
}

type balancePointDTO struct {
	Month        string `json:"month"`
	Label        string `json:"label"`
	BalanceCents int64  `json:"balance_cents"`
}

type recordDTO struct {
	Month       string `json:"month"`
	Label       string `json:"label"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	Group       string `json:"group"`
}

type importResultDTO struct {
	BatchID      string `json:"batch_id"`
	MonthLabel   string `json:"month_label,omitempty"`
	Records      int    `json:"records"`
	CoercedCells int    `json:"coerced_cells"`
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals := s.engine.MonthlyTotals()

	months := make([]core.MonthKey, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	out := make([]totalsDTO, 0, len(months))
	for _, m := range months {
		t := totals[m]
		out = append(out, totalsDTO{
			Month:        m.String(),
			Label:        m.Label(),
			PlannedCents: t.Planned.Cents,
			ActualCents:  t.Actual.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOverspend(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := s.engine.Overspend(month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]overspendDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, overspendDTO{
			Category:     e.Category,
			PlannedCents: e.Planned.Cents,
			ActualCents:  e.Actual.Cents,
			ExcessCents:  e.Excess.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleTop ranks categories by actual spend. With a month parameter the
// ranking covers that month, without one it covers every month combined.
func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n", 5)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: bad limit: %v", reports.ErrInvalidQuery, err))
		return
	}

	var ranked []reports.CategoryAmount
	if strings.TrimSpace(r.URL.Query().Get("month")) == "" {
		ranked, err = s.engine.TopOverall(n)
	} else {
		var month core.MonthKey
		month, err = monthParam(r)
		if err == nil {
			ranked, err = s.engine.TopCategories(month, n)
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]rankedDTO, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, rankedDTO{Category: c.Category, ActualCents: c.Actual.Cents})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	points, err := s.engine.CategoryTrend(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]trendPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, trendPointDTO{
			Month:        p.Month.String(),
			Label:        p.Label,
			PlannedCents: p.Planned.Cents,
			ActualCents:  p.Actual.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFunds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, balanceDTOs(s.engine.FundBalances()))
}

func (s *Server) handleLoans(w http.ResponseWriter, r *http.Request) {
	side := core.Side(strings.TrimSpace(r.URL.Query().Get("side")))
	balances, err := s.engine.LoanBalances(side)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceDTOs(balances))
}

func balanceDTOs(balances map[string][]reports.BalancePoint) map[string][]balancePointDTO {
	out := make(map[string][]balancePointDTO, len(balances))
	for name, points := range balances {
		dtos := make([]balancePointDTO, 0, len(points))
		for _, p := range points {
			dtos = append(dtos, balancePointDTO{
				Month:        p.Month.String(),
				Label:        p.Label,
				BalanceCents: p.Balance.Cents,
			})
		}
		out[name] = dtos
	}
	return out
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	recs := s.store.Combined()
	out := make([]recordDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordDTO{
			Month:       rec.Month.String(),
			Label:       rec.MonthLabel,
			Category:    rec.Category,
			Kind:        string(rec.Kind),
			AmountCents: rec.Amount.Cents,
			Group:       string(rec.Group),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type manualEntryDTO struct {
	Category   string `json:"category"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	MonthLabel string `json:"month_label"`
}

// handleAddRecords merges manually entered rows into the override layer.
func (s *Server) handleAddRecords(w http.ResponseWriter, r *http.Request) {
	var payload []manualEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, fmt.Errorf("%w: decode body: %v", reports.ErrInvalidQuery, err))
		return
	}
	entries := make([]sheet.ManualEntry, 0, len(payload))
	for _, p := range payload {
		entries = append(entries, sheet.ManualEntry{
			Category:   p.Category,
			Kind:       core.Kind(p.Kind),
			Amount:     p.Amount,
			MonthLabel: p.MonthLabel,
		})
	}

	res, err := s.imports.AddManualRows(r.Context(), entries)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.respCache.Purge()
	writeJSON(w, http.StatusCreated, importResultDTO{
		BatchID:      res.BatchID.String(),
		Records:      res.Records,
		CoercedCells: res.CoercedCells,
	})
}

// handleUpload accepts a single-month xlsx as multipart form data. The
// "month" field carries the sheet label, the "file" field the workbook;
// only the first sheet is read.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, fmt.Errorf("%w: parse multipart form: %v", reports.ErrInvalidQuery, err))
		return
	}
	monthLabel := strings.TrimSpace(r.FormValue("month"))

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: missing file field: %v", reports.ErrInvalidQuery, err))
		return
	}
	defer file.Close()

	grid, err := excel.ReadGrid(file)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", reports.ErrInvalidQuery, err))
		return
	}

	res, err := s.imports.ImportSheet(r.Context(), grid, monthLabel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.respCache.Purge()
	writeJSON(w, http.StatusCreated, importResultDTO{
		BatchID:      res.BatchID.String(),
		MonthLabel:   res.MonthLabel,
		Records:      res.Records,
		CoercedCells: res.CoercedCells,
	})
}
