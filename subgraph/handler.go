// Package subgraph serves an executable federated schema over HTTP.
package subgraph

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/errors"
	"github.com/n9te9/listings-subgraph/datasources"
	"github.com/n9te9/listings-subgraph/requestctx"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-Id"

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type Option func(*Handler)

// WithContextFunc replaces the function deriving the request context from headers.
func WithContextFunc(fn requestctx.Func) Option {
	return func(h *Handler) { h.contextFunc = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// Handler executes GraphQL requests against a shared schema. Every request gets its own
// request context and a fresh set of datasources from the factory.
type Handler struct {
	schema      *graphql.Schema
	dataSources datasources.Factory
	contextFunc requestctx.Func
	logger      *zap.Logger
	metrics     *Metrics
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(schema *graphql.Schema, factory datasources.Factory, opts ...Option) *Handler {
	h := &Handler{
		schema:      schema,
		dataSources: factory,
		contextFunc: requestctx.FromRequest,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	requestID := r.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(HeaderRequestID, requestID)

	req, status := decodeRequest(r)
	if status != http.StatusOK {
		writeJSON(w, status, &graphql.Response{Errors: []*errors.QueryError{errors.Errorf("%s", http.StatusText(status))}})
		h.logger.Info("rejected request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.Int("status", status),
		)
		return
	}

	op := classifyOperation(req.Query, req.OperationName)
	if r.Method == http.MethodGet && op.Type == "mutation" {
		writeJSON(w, http.StatusMethodNotAllowed, &graphql.Response{Errors: []*errors.QueryError{errors.Errorf("mutations must be sent with POST")}})
		return
	}

	ctx := h.requestContext(r)
	resp := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	writeJSON(w, http.StatusOK, resp)

	elapsed := time.Since(start)
	h.metrics.observe(op.Type, len(resp.Errors) > 0, elapsed)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("operation_type", op.Type),
		zap.Strings("root_fields", op.RootFields),
		zap.Int("status", http.StatusOK),
		zap.Int("errors", len(resp.Errors)),
		zap.Duration("latency", elapsed),
	}
	if req.OperationName != "" {
		fields = append(fields, zap.String("operation_name", req.OperationName))
	}
	h.logger.Info("handled request", fields...)
	for _, qe := range resp.Errors {
		h.logger.Debug("graphql error", zap.String("request_id", requestID), zap.String("message", qe.Message))
	}
}

func (h *Handler) requestContext(r *http.Request) context.Context {
	ctx := requestctx.With(r.Context(), h.contextFunc(r))
	return datasources.WithDataSources(ctx, h.dataSources())
}

func decodeRequest(r *http.Request) (graphQLRequest, int) {
	var req graphQLRequest
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, http.StatusBadRequest
		}
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return req, http.StatusBadRequest
			}
		}
	default:
		return req, http.StatusMethodNotAllowed
	}
	if req.Query == "" {
		return req, http.StatusBadRequest
	}
	return req, http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// HealthHandler answers the readiness checks gateways send to subgraphs.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "pass"})
	})
}
