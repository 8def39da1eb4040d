package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/finsim/retirement-simulator/internal/calculation"
	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/internal/taxsvc"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

type errorResponse struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps an engine error to its HTTP status and body.
// Validation failures name the offending field; tax-service outages
// surface as a bad gateway after the client has exhausted its retries.
func errorStatus(err error) (int, errorResponse) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Code: "validation_error", Field: ve.Field, Message: ve.Error()}
	}
	var ese *taxsvc.ExternalServiceError
	if errors.As(err, &ese) {
		return http.StatusBadGateway, errorResponse{Code: "external_service_error", Message: ese.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: err.Error()}
}

func writeError(w http.ResponseWriter, err error) {
	status, resp := errorStatus(err)
	writeJSON(w, status, resp)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: err.Error()})
}

// handleSimulate handles POST /simulate. The response is NDJSON:
// progress events while paths run, then exactly one complete or error
// event.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var in domain.SimulationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, fmt.Errorf("decoding scenario: %w", err))
		return
	}
	stream := newEventStream(w)
	res, err := s.engine.SimulateWithProgress(r.Context(), &in, func(ev calculation.ProgressEvent) {
		stream.Progress(ev.Year, ev.TotalYears)
	})
	if err != nil {
		s.log.WithError(err).Warn("simulation failed")
		stream.Fail(err)
		return
	}
	stream.Complete(res)
}

// compareRequest is the shared body of the comparison endpoints. Each
// endpoint reads the extras it needs and ignores the rest.
type compareRequest struct {
	Input *domain.SimulationInput `json:"input"`

	// CompareStates: candidate residence states; empty means the
	// no-income-tax set.
	States []string `json:"states,omitempty"`

	// CompareAllocations: stock fractions to sweep; empty means the
	// default 0 to 100% grid.
	Splits []float64 `json:"splits,omitempty"`

	// CompareAnnuity: terms of the quoted annuity.
	MonthlyPayment decimal.Money `json:"monthly_payment"`
	GuaranteeYears int           `json:"guarantee_years"`
}

func (cr *compareRequest) validate() error {
	if cr.Input == nil {
		return errors.New("missing input scenario")
	}
	return nil
}

// decodeCompare parses and validates a comparison request, writing the
// error response itself when the body is unusable.
func (s *Server) decodeCompare(w http.ResponseWriter, r *http.Request) (*compareRequest, bool) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return nil, false
	}
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, fmt.Errorf("decoding request: %w", err))
		return nil, false
	}
	if err := req.validate(); err != nil {
		writeBadRequest(w, err)
		return nil, false
	}
	return &req, true
}

// handleCompareState handles POST /compare/state.
func (s *Server) handleCompareState(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCompare(w, r)
	if !ok {
		return
	}
	out, err := s.engine.CompareStates(r.Context(), req.Input, req.States)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCompareClaiming handles POST /compare/ss-timing.
func (s *Server) handleCompareClaiming(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCompare(w, r)
	if !ok {
		return
	}
	out, err := s.engine.CompareClaimingAges(r.Context(), req.Input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCompareAllocation handles POST /compare/allocation.
func (s *Server) handleCompareAllocation(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCompare(w, r)
	if !ok {
		return
	}
	out, err := s.engine.CompareAllocations(r.Context(), req.Input, req.Splits)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCompareAnnuity handles POST /compare/annuity.
func (s *Server) handleCompareAnnuity(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCompare(w, r)
	if !ok {
		return
	}
	out, err := s.engine.CompareAnnuity(r.Context(), req.Input, req.MonthlyPayment, req.GuaranteeYears)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMortality handles GET /mortality/{gender}?start_age&end_age,
// serving death rates and the survival curve from the bundled table.
func (s *Server) handleMortality(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/mortality/")
	if path == "" || strings.Contains(path, "/") {
		writeBadRequest(w, errors.New("missing gender"))
		return
	}
	gender := domain.Gender(strings.ToLower(path))
	if gender != domain.GenderMale && gender != domain.GenderFemale {
		writeBadRequest(w, fmt.Errorf("unknown gender %q", path))
		return
	}
	startAge, err := queryInt(r, "start_age", 62)
	if err != nil {
		writeBadRequest(w, fmt.Errorf("invalid start_age: %w", err))
		return
	}
	endAge, err := queryInt(r, "end_age", 110)
	if err != nil {
		writeBadRequest(w, fmt.Errorf("invalid end_age: %w", err))
		return
	}
	if startAge < 0 || endAge > 120 || startAge > endAge {
		writeBadRequest(w, fmt.Errorf("age range %d-%d out of bounds", startAge, endAge))
		return
	}
	writeJSON(w, http.StatusOK, calculation.BuildMortalityProfile(s.table, gender, startAge, endAge))
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
