package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/config"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/model"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/repository"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/service"
	"go.uber.org/zap"
)

type ForecastHandler struct {
	ForecastService service.ForecastServiceInterface
	Logger          *zap.SugaredLogger
}

func NewForecastHandler(svc ...service.ForecastServiceInterface) *ForecastHandler {
	var forecastService service.ForecastServiceInterface
	if len(svc) > 0 && svc[0] != nil {
		forecastService = svc[0]
	} else {
		forecastService = service.NewForecastService()
	}
	return &ForecastHandler{
		ForecastService: forecastService,
		Logger:          config.GetLogger(),
	}
}

func (h *ForecastHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger().Errorw("could not encode json", "error", err)
	}
}

func (h *ForecastHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.writeJSONResponse(w, http.StatusMethodNotAllowed, model.NewErrorResponse("method not allowed"))
		return
	}

	req := model.ForecastRequestFromQuery(r.URL.Query())
	forecast, err := h.ForecastService.GetForecast(r.Context(), req)
	if err != nil {
		status, body := errorResponse(err)
		h.writeJSONResponse(w, status, body)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(forecast); err != nil {
		h.logger().Warnw("could not write forecast", "error", err)
	}
}

// errorResponse maps a service error to a status code and payload.
func errorResponse(err error) (int, model.ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrMissingCoordinates):
		return http.StatusBadRequest, model.NewErrorResponse("")
	case errors.Is(err, service.ErrInvalidCoordinates):
		return http.StatusBadRequest, model.NewErrorResponse(err.Error())
	case errors.Is(err, repository.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, model.NewErrorResponse(err.Error())
	default:
		return http.StatusBadGateway, model.NewErrorResponse(err.Error())
	}
}

func (h *ForecastHandler) logger() *zap.SugaredLogger {
	if h.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return h.Logger
}
