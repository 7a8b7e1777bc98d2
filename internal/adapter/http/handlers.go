package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/service"
)

const maxBodyBytes = 1 << 20

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !s.decode(w, r, &req, false) {
		return
	}
	ref, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appliances := make([]domain.Appliance, len(req.Appliances))
	for i, a := range req.Appliances {
		appliances[i] = a.toDomain()
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.planner.Plan(appliances, req.Home.toDomain(), ref, service.TriggerHTTP))
}

func (s *Server) handleHomePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	homeID, ok := pathID(w, r, "homeID")
	if !ok {
		return
	}
	ref, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := s.planner.PlanForHome(r.Context(), userID, homeID, ref, service.TriggerHTTP)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !s.decode(w, r, &req, false) {
		return
	}
	pred, err := s.planner.PredictAt(r.Context(), req.Type, req.InstallYear, req.Location, req.BudgetUSD)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, pred)
}

func (s *Server) handleAppliancePrediction(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	applianceID, ok := pathID(w, r, "applianceID")
	if !ok {
		return
	}
	var req appliancePredictionRequest
	if !s.decode(w, r, &req, true) {
		return
	}

	pred, err := s.planner.PredictAppliance(r.Context(), userID, applianceID, req.Location, req.BudgetUSD)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, pred)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !s.decode(w, r, &req, false) {
		return
	}
	appliances := make([]domain.Appliance, len(req.Appliances))
	for i, a := range req.Appliances {
		appliances[i] = a.toDomain()
	}

	var resp matchResponse
	if t, ok := domain.DetectApplianceType(req.Message); ok {
		resp.DetectedType = &t
	}
	resp.Appliance = domain.PickBestAppliance(req.Message, appliances)
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if !s.decode(w, r, &req, false) {
		return
	}
	key := domain.NormalizeApplianceType(req.Text)
	base, known := domain.BaseLifespan(key)
	sharedobs.WriteJSON(w, http.StatusOK, normalizeResponse{
		Type:              key,
		Label:             domain.PrettyType(key),
		Known:             known,
		BaseLifespanYears: base,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var req chatRequest
	if !s.decode(w, r, &req, false) {
		return
	}

	reply, err := s.planner.Chat(r.Context(), userID, req.Message)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, reply)
}

// decode reads and validates a JSON body. allowEmpty accepts a missing body
// as the zero request.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	defer r.Body.Close()
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		err = nil
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// pathID reads a UUID path parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+": "+raw)
		return "", false
	}
	return raw, true
}

// writeServiceError maps domain errors to HTTP status codes. Geocoding
// failures are the caller's location problem; climate outages are ours.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoLocation), errors.Is(err, domain.ErrGeocodeFailed):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": message})
}
