package api

import (
	"net/http"
	"time"

	"meteopoll/internal/coordinator"
	"meteopoll/internal/meteomatics"
	"meteopoll/internal/types"
)

type healthResponse struct {
	Status  string             `json:"status"`
	Version string             `json:"version"`
	Commit  string             `json:"commit"`
	Refresh coordinator.Status `json:"refresh"`
}

// handleHealth reports liveness plus the last refresh status. It always
// returns 200: a failing upstream degrades the data, not the process.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, APIResponse{Data: healthResponse{
		Status:  "ok",
		Version: s.build.Version,
		Commit:  s.build.Commit,
		Refresh: s.source.Status(),
	}})
}

// latest fetches the last-known-good data, writing a 503 when no cycle has
// succeeded yet.
func (s *Server) latest(w http.ResponseWriter, r *http.Request) (*types.WeatherData, bool) {
	data, ok := s.source.Latest()
	if !ok {
		Error(w, r, types.NewAppError(
			types.ErrCodeDataNotReady,
			"no weather data available yet",
			nil,
		))
		return nil, false
	}
	return data, true
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	data, ok := s.latest(w, r)
	if !ok {
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: data})
}

func (s *Server) handleWeatherCurrent(w http.ResponseWriter, r *http.Request) {
	data, ok := s.latest(w, r)
	if !ok {
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: data.Current})
}

func (s *Server) handleWeatherHourly(w http.ResponseWriter, r *http.Request) {
	data, ok := s.latest(w, r)
	if !ok {
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: data.Hourly})
}

func (s *Server) handleWeatherDaily(w http.ResponseWriter, r *http.Request) {
	data, ok := s.latest(w, r)
	if !ok {
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: data.Daily})
}

// handleRefresh triggers an on-demand refresh. A refresh already in flight is
// shared, not duplicated; its outcome is returned to every caller.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	data, err := s.source.Refresh(r.Context())
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: data})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changedResponse struct {
	Changed bool `json:"changed"`
}

// handleUpdateCredentials validates candidate credentials against the
// upstream with a one-parameter probe before applying them. A 401 from the
// probe surfaces as auth_invalid_credentials, distinct from a connectivity
// failure.
func (s *Server) handleUpdateCredentials(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"username and password are required",
			nil,
		))
		return
	}

	if s.prober != nil {
		creds := types.Credentials{
			Username: req.Username,
			Password: types.SecretString(req.Password),
		}
		if err := s.prober.Probe(r.Context(), creds, time.Now(), s.loc); err != nil {
			Error(w, r, err)
			return
		}
	}

	changed := s.source.UpdateCredentials(req.Username, req.Password)
	JSON(w, r, http.StatusOK, APIResponse{Data: changedResponse{Changed: changed}})
}

type planRequest struct {
	PlanType           string   `json:"plan_type"`
	OptionalParameters []string `json:"optional_parameters"`
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}

	plan := types.PlanTier(req.PlanType)
	if !plan.Valid() {
		Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidPlan,
			"plan_type must be one of: basic, paid_trial",
			nil,
			map[string]any{"plan_type": req.PlanType},
		))
		return
	}
	if err := meteomatics.ValidateOptionalParameters(req.OptionalParameters); err != nil {
		Error(w, r, err)
		return
	}

	changed := s.source.UpdatePlan(plan, req.OptionalParameters)
	JSON(w, r, http.StatusOK, APIResponse{Data: changedResponse{Changed: changed}})
}
