package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"regroup-hq/regroup/pkg/api"
	"regroup-hq/regroup/pkg/api/types"
	"regroup-hq/regroup/pkg/classify"
	"regroup-hq/regroup/pkg/ruleset"
	"regroup-hq/regroup/pkg/telemetry/logging"
	"regroup-hq/regroup/pkg/telemetry/metrics"
	"regroup-hq/regroup/pkg/telemetry/tracing"
	"regroup-hq/regroup/pkg/transform"
)

// RuleSource provides the active rule set.
type RuleSource interface {
	Current() *ruleset.Set
}

// ConversionRecorder receives one observation per conversion.
type ConversionRecorder interface {
	RecordConversion(status string, duration time.Duration, summary transform.Summary)
}

// ConvertOptions configures a ConvertHandler.
type ConvertOptions struct {
	// Transformer defaults to the built-in region table and rate pattern.
	Transformer *transform.Transformer

	// Rules is required.
	Rules RuleSource

	// Metrics and Tracer are optional.
	Metrics ConversionRecorder
	Tracer  *tracing.Tracer

	// MaxBodyBytes defaults to api.DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Redactor masks credentials when an offending proxy entry is logged.
	// Defaults to logging.DefaultRedactKeys.
	Redactor *logging.Redactor
}

// ConvertHandler serves GET and POST on "/": it rewrites the posted
// configuration with the active rule set.
type ConvertHandler struct {
	transformer  *transform.Transformer
	rules        RuleSource
	metrics      ConversionRecorder
	tracer       *tracing.Tracer
	maxBodyBytes int64
	redactor     *logging.Redactor
}

// NewConvertHandler creates a ConvertHandler.
func NewConvertHandler(opts ConvertOptions) (*ConvertHandler, error) {
	if opts.Rules == nil {
		return nil, errors.New("rule source is required")
	}
	if opts.Transformer == nil {
		opts.Transformer = transform.New(transform.Options{})
	}
	if opts.Redactor == nil {
		opts.Redactor = logging.NewRedactor(logging.DefaultRedactKeys)
	}
	return &ConvertHandler{
		transformer:  opts.Transformer,
		rules:        opts.Rules,
		metrics:      opts.Metrics,
		tracer:       opts.Tracer,
		maxBodyBytes: opts.MaxBodyBytes,
		redactor:     opts.Redactor,
	}, nil
}

// ServeHTTP implements http.Handler.
func (h *ConvertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		h.writeError(w, r, types.NewMethodNotAllowedError(r.Method))
		return
	}

	set := h.rules.Current()
	if set == nil {
		h.writeError(w, r, api.HandleError(ruleset.ErrNotLoaded))
		return
	}

	req, err := api.ParseConvertRequest(r, h.maxBodyBytes)
	if err != nil {
		logger.WarnContext(ctx, "failed to parse convert request", "error", err)
		h.record(metrics.StatusInvalidDoc, 0, transform.Summary{})
		h.writeError(w, r, api.HandleError(err))
		return
	}

	ctx, span := h.tracer.Start(ctx, "convert")
	defer span.End()

	// The transformer rewrites the document in place on success only, so
	// req.Document still holds the offending entry on error.
	start := time.Now()
	out, summary, err := h.transformer.ConvertWithSummary(req.Document, set.GroupNames(), set.Lines())
	elapsed := time.Since(start)

	status := conversionStatus(summary, err)
	h.record(status, elapsed, summary)
	tracing.RecordConversion(span, status, summary)
	tracing.SetError(span, err)

	if err != nil {
		h.logConversionError(ctx, logger, req.Document, err)
		h.writeError(w, r, api.HandleError(err))
		return
	}

	if summary.PassThrough {
		logger.InfoContext(ctx, "document lacks required keys, returned unchanged",
			"format", req.Format.String(),
		)
	} else {
		logger.InfoContext(ctx, "configuration converted",
			"format", req.Format.String(),
			"proxies", summary.Proxies,
			"regions", len(summary.Regions),
			"groups", summary.ExistingGroups+len(summary.Regions)+summary.SelectorGroups,
			"rules_added", summary.RulesAdded,
			"ruleset", set.Name,
			"duration_ms", float64(elapsed.Microseconds())/1000,
		)
		w.Header().Set(types.HeaderProxies, strconv.Itoa(summary.Proxies))
		w.Header().Set(types.HeaderRegions, strconv.Itoa(len(summary.Regions)))
		w.Header().Set(types.HeaderRules, strconv.Itoa(summary.RulesAdded))
	}

	if err := api.WriteDocument(w, req.Format, out); err != nil {
		logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

func (h *ConvertHandler) record(status string, elapsed time.Duration, summary transform.Summary) {
	if h.metrics != nil {
		h.metrics.RecordConversion(status, elapsed, summary)
	}
}

func (h *ConvertHandler) writeError(w http.ResponseWriter, r *http.Request, resp *types.ErrorResponse) {
	if err := api.WriteErrorResponse(w, resp); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}

func (h *ConvertHandler) logConversionError(ctx context.Context, logger *slog.Logger, doc transform.Document, err error) {
	var proxyErr *transform.ProxyError
	if !errors.As(err, &proxyErr) {
		logger.WarnContext(ctx, "conversion failed", "error", err)
		return
	}

	attrs := []any{
		"error", err,
		"index", proxyErr.Index,
		"name", proxyErr.Name,
	}
	if proxies, ok := doc[transform.KeyProxies].([]any); ok && proxyErr.Index < len(proxies) {
		if entry, ok := proxies[proxyErr.Index].(map[string]any); ok {
			attrs = append(attrs, "proxy", h.redactor.RedactMap(entry))
		}
	}
	logger.WarnContext(ctx, "proxy name rejected", attrs...)
}

func conversionStatus(summary transform.Summary, err error) string {
	var shapeErr *transform.ShapeError
	switch {
	case err == nil && summary.PassThrough:
		return metrics.StatusPassThrough
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, classify.ErrRate):
		return metrics.StatusInvalidName
	case errors.As(err, &shapeErr):
		return metrics.StatusInvalidDoc
	default:
		return metrics.StatusError
	}
}
