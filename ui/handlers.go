package ui

import (
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mrrdash/domain/revenue"
	"mrrdash/internal/charts"
	"mrrdash/internal/errors"
)

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload receives a workbook as multipart form data under the "file"
// field and registers it for analysis.
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	if err := r.ParseMultipartForm(a.maxUploadBytes); err != nil {
		writeError(w, errors.InvalidInput("upload too large or malformed"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.InvalidInput("missing form field: file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errors.Wrap(err, "failed to read upload"))
		return
	}

	u := &upload{
		ID:         uuid.NewString(),
		Name:       header.Filename,
		Size:       int64(len(data)),
		ReceivedAt: time.Now(),
		data:       data,
	}
	a.putUpload(u)

	writeJSON(w, http.StatusCreated, u)
}

func (a *App) handleListUploads(w http.ResponseWriter, r *http.Request) {
	a.uploadsMu.RLock()
	list := make([]*upload, 0, len(a.uploads))
	for _, u := range a.uploads {
		list = append(list, u)
	}
	a.uploadsMu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ReceivedAt.Before(list[j].ReceivedAt) })
	writeJSON(w, http.StatusOK, list)
}

// requireSource resolves the upload from the URL and the dimension from the
// query string. Handlers that don't take a dimension pass wantDim=false.
func (a *App) requireSource(w http.ResponseWriter, r *http.Request, wantDim bool) (*upload, revenue.Dimension, bool) {
	id := chi.URLParam(r, "uploadID")
	u, ok := a.getUpload(id)
	if !ok {
		writeError(w, errors.NotFound("upload "+id))
		return nil, "", false
	}

	var dim revenue.Dimension
	if wantDim {
		dim, ok = revenue.ParseDimension(r.URL.Query().Get("dimension"))
		if !ok {
			writeError(w, errors.InvalidInput(`dimension must be "Geography" or "Industry"`))
			return nil, "", false
		}
	}
	return u, dim, true
}

// handleTables returns all three output tables for a (source, dimension)
// pair: quarterly MRR, quarterly percentage shares, and the intermediate
// monthly-grouped table.
func (a *App) handleTables(w http.ResponseWriter, r *http.Request) {
	u, dim, ok := a.requireSource(w, r, true)
	if !ok {
		return
	}

	res, err := a.service.AggregateBytes(u.Name, u.data, dim)
	if err != nil {
		writeError(w, err)
		return
	}

	monthLabels := make([]string, len(res.Months))
	for i, m := range res.Months {
		monthLabels[i] = m.Label.String()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dimension":   res.Dimension,
		"year":        res.Year,
		"quarters":    res.Quarters,
		"groups":      res.Groups,
		"months":      monthLabels,
		"mrr":         res.MRR,
		"percentages": res.Percentages,
		"monthly":     res.Monthly,
	})
}

func (a *App) handleBarChart(w http.ResponseWriter, r *http.Request) {
	u, dim, ok := a.requireSource(w, r, true)
	if !ok {
		return
	}
	res, err := a.service.AggregateBytes(u.Name, u.data, dim)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charts.QuarterlyBar(res))
}

func (a *App) handlePieChart(w http.ResponseWriter, r *http.Request) {
	u, dim, ok := a.requireSource(w, r, true)
	if !ok {
		return
	}
	res, err := a.service.AggregateBytes(u.Name, u.data, dim)
	if err != nil {
		writeError(w, err)
		return
	}
	chart, err := charts.QuarterPie(res, r.URL.Query().Get("quarter"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (a *App) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	u, dim, ok := a.requireSource(w, r, true)
	if !ok {
		return
	}
	res, err := a.service.AggregateBytes(u.Name, u.data, dim)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charts.QuarterlyTrend(res))
}

func (a *App) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	u, dim, ok := a.requireSource(w, r, true)
	if !ok {
		return
	}
	series, err := a.service.MonthlyInsights(u.Name, u.data, dim)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charts.MonthlyCombo(series))
}

func (a *App) handleMonthlyInsights(w http.ResponseWriter, r *http.Request) {
	u, dim, ok := a.requireSource(w, r, true)
	if !ok {
		return
	}
	series, err := a.service.MonthlyInsights(u.Name, u.data, dim)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (a *App) handleCustomerInsights(w http.ResponseWriter, r *http.Request) {
	u, _, ok := a.requireSource(w, r, false)
	if !ok {
		return
	}
	topN, err := parseTopN(r.URL.Query().Get("top"))
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := a.service.CustomerConcentration(u.Name, u.data, topN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *App) handleCustomersChart(w http.ResponseWriter, r *http.Request) {
	u, _, ok := a.requireSource(w, r, false)
	if !ok {
		return
	}
	topN, err := parseTopN(r.URL.Query().Get("top"))
	if err != nil {
		writeError(w, err)
		return
	}
	n := 10
	if len(topN) > 0 {
		n = topN[0]
	}
	report, err := a.service.CustomerConcentration(u.Name, u.data, []int{n})
	if err != nil {
		writeError(w, err)
		return
	}
	chart, err := charts.TopCustomersBar(report, n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (a *App) handleCustomerBreakdownChart(w http.ResponseWriter, r *http.Request) {
	u, _, ok := a.requireSource(w, r, false)
	if !ok {
		return
	}
	topN, err := parseTopN(r.URL.Query().Get("top"))
	if err != nil {
		writeError(w, err)
		return
	}
	n := 10
	if len(topN) > 0 {
		n = topN[0]
	}
	report, err := a.service.CustomerConcentration(u.Name, u.data, []int{n})
	if err != nil {
		writeError(w, err)
		return
	}
	chart, err := charts.CustomerMonthlyBreakdown(report, n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (a *App) handleConcentrationChart(w http.ResponseWriter, r *http.Request) {
	u, _, ok := a.requireSource(w, r, false)
	if !ok {
		return
	}
	topN, err := parseTopN(r.URL.Query().Get("top"))
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := a.service.CustomerConcentration(u.Name, u.data, topN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charts.ConcentrationBar(report))
}
