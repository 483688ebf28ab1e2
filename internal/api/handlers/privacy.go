package handlers

import (
	"net/http"
	"strconv"

	"github.com/matiasleandrokruk/soksol/internal/domain/privacy"
)

// PrivacyReporter is satisfied by *privacy.Reporter.
type PrivacyReporter interface {
	Build() privacy.Report
}

type PrivacyHandler struct {
	reporter PrivacyReporter
}

func NewPrivacyHandler(reporter PrivacyReporter) *PrivacyHandler {
	return &PrivacyHandler{reporter: reporter}
}

// Check answers GET /api/privacy-check with a fresh report. The report's
// request id, timestamp and uptime are mirrored into response headers.
func (h *PrivacyHandler) Check(w http.ResponseWriter, _ *http.Request) {
	report := h.reporter.Build()

	hdr := w.Header()
	hdr.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0")
	hdr.Set("Surrogate-Control", "no-store")
	hdr.Set("X-Privacy-Compliant", "true")
	hdr.Set("X-No-Database", strconv.FormatBool(report.NoDatabaseConnected))
	hdr.Set("X-No-User-Tracking", "true")
	hdr.Set("X-Request-ID", report.RequestID)
	hdr.Set("X-Server-Timestamp", report.Timestamp)
	hdr.Set("X-Server-Uptime", strconv.FormatFloat(report.Uptime, 'f', 3, 64))

	writeJSON(w, http.StatusOK, report)
}

// Reject answers write methods on the privacy endpoint.
func (h *PrivacyHandler) Reject(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, r.Method+" method not allowed - no data collection policy")
}
