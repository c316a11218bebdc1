package entropyapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/skew-entropy/src/data"
	"github.com/jiaming2012/skew-entropy/src/eventmodels"
	"github.com/jiaming2012/skew-entropy/src/eventproducers/api"
	"github.com/jiaming2012/skew-entropy/src/eventservices"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

type SkewnessResponse struct {
	QuoteCount int                         `json:"quote_count"`
	Points     []eventmodels.SkewnessPoint `json:"points"`
	Skipped    []SkippedDate               `json:"skipped"`
}

type SkippedDate struct {
	QuoteDate string `json:"quote_date"`
	Reason    string `json:"reason"`
}

type EntropyResponse struct {
	QuoteCount int                     `json:"quote_count"`
	Skipped    int                     `json:"skipped_dates"`
	Saved      bool                    `json:"saved"`
	Run        *eventmodels.EntropyRun `json:"run"`
}

type Handler struct {
	source data.OptionQuoteSource
	runs   data.EntropyRunStore
	config eventmodels.PipelineConfigYAML
}

// NewHandler serves pipeline results computed from source. runs may be nil,
// in which case results are never stored.
func NewHandler(source data.OptionQuoteSource, runs data.EntropyRunStore, config *eventmodels.PipelineConfigYAML) *Handler {
	if config == nil {
		config = eventmodels.NewDefaultPipelineConfig()
	}

	return &Handler{
		source: source,
		runs:   runs,
		config: *config,
	}
}

func SetupHandler(router *mux.Router, h *Handler) {
	handle := func(pattern string, handlerFunc func(http.ResponseWriter, *http.Request)) {
		router.Handle(pattern, otelhttp.WithRouteTag(pattern, http.HandlerFunc(handlerFunc))).Methods(http.MethodGet)
	}

	handle("/skewness", h.handleSkewness)
	handle("/entropy", h.handleEntropy)
	handle("/entropy/runs/{id}", h.handleFetchRun)
}

func (h *Handler) newPipeline(apply func(cfg *eventmodels.PipelineConfigYAML)) (*eventservices.EntropyPipeline, error) {
	cfg := h.config
	apply(&cfg)

	return eventservices.NewEntropyPipeline(h.source, &cfg)
}

func (h *Handler) handleSkewness(w http.ResponseWriter, r *http.Request) {
	var query SkewnessQuery
	start, end, err := decodeQuery(r, &query, &query)
	if err != nil {
		setError("handleSkewness: invalid query", err, w)
		return
	}

	pipeline, err := h.newPipeline(query.apply)
	if err != nil {
		setError("handleSkewness: invalid parameters", err, w)
		return
	}

	result, err := pipeline.RunSkewness(r.Context(), start, end)
	if err != nil {
		setError("handleSkewness: failed to compute skewness", err, w)
		return
	}

	resp := &SkewnessResponse{
		QuoteCount: result.QuoteCount,
		Points:     result.Skewness.Points,
		Skipped:    make([]SkippedDate, 0, len(result.Skewness.Skipped)),
	}

	for _, s := range result.Skewness.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedDate{
			QuoteDate: s.QuoteDate.Format(eventmodels.DateLayout),
			Reason:    s.Reason,
		})
	}

	if err := api.SetResponse(resp, w); err != nil {
		log.Errorf("handleSkewness: failed to set response: %v", err)
	}
}

func (h *Handler) handleEntropy(w http.ResponseWriter, r *http.Request) {
	var query EntropyQuery
	start, end, err := decodeQuery(r, &query, &query.SkewnessQuery)
	if err != nil {
		setError("handleEntropy: invalid query", err, w)
		return
	}

	pipeline, err := h.newPipeline(query.apply)
	if err != nil {
		setError("handleEntropy: invalid parameters", err, w)
		return
	}

	result, err := pipeline.Run(r.Context(), start, end)
	if err != nil {
		setError("handleEntropy: failed to compute entropy", err, w)
		return
	}

	resp := &EntropyResponse{
		QuoteCount: result.QuoteCount,
		Skipped:    len(result.Skewness.Skipped),
		Run:        result.Run,
	}

	if query.Save && h.runs != nil {
		if err := h.runs.SaveEntropyRun(r.Context(), result.Run); err != nil {
			setError("handleEntropy: failed to save run", err, w)
			return
		}
		resp.Saved = true
	}

	if err := api.SetResponse(resp, w); err != nil {
		log.Errorf("handleEntropy: failed to set response: %v", err)
	}
}

func (h *Handler) handleFetchRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		setError("handleFetchRun", eventmodels.NewWebError(http.StatusNotFound, "run storage is disabled", nil), w)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		setError("handleFetchRun: failed to parse run id", eventmodels.NewWebError(http.StatusBadRequest, "invalid run id", err), w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	run, err := h.runs.FetchEntropyRun(ctx, id)
	if err != nil {
		setError("handleFetchRun: failed to fetch run", err, w)
		return
	}

	if err := api.SetResponse(run, w); err != nil {
		log.Errorf("handleFetchRun: failed to set response: %v", err)
	}
}

func decodeQuery(r *http.Request, dst interface{}, dates *SkewnessQuery) (time.Time, time.Time, error) {
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return time.Time{}, time.Time{}, eventmodels.NewWebError(http.StatusBadRequest, "invalid query", fmt.Errorf("decodeQuery: %w", err))
	}

	return dates.Dates()
}

func setError(errType string, err error, w http.ResponseWriter) {
	webErr := eventmodels.ToWebError(errType, err)
	if webErr.StatusCode >= http.StatusInternalServerError {
		log.Errorf("%s: %v", errType, err)
	}

	if respErr := api.SetErrorResponse(errType, webErr.StatusCode, err, w); respErr != nil {
		log.Errorf("%s: failed to set error response: %v", errType, respErr)
	}
}
