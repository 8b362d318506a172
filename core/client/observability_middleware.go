package client

import (
	"context"
	"time"

	"github.com/leofalp/shipshape/internal/utils"
	"github.com/leofalp/shipshape/providers/ai"
	"github.com/leofalp/shipshape/providers/observability"
)

// NewObservabilityMiddleware creates a Middleware that records a tracing span,
// metrics and log events for every LLM request.
//
// Both the span and the observer are injected into the context before calling
// next, so that provider implementations can retrieve them via
// [observability.SpanFromContext] and [observability.ObserverFromContext].
//
// [New] prepends it to the chain when [WithObserver] is given, so it observes
// the final outcome after any timeout middleware.
func NewObservabilityMiddleware(observer observability.Provider, defaultModel string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := effectiveModel(request.Model, defaultModel)
			structured := request.ResponseFormat != nil && request.ResponseFormat.OutputSchema != nil

			ctx, span := observer.StartSpan(ctx, observability.SpanClientSendMessage,
				observability.String(observability.AttrLLMModel, model),
				observability.Bool(observability.AttrClientStructured, structured),
			)
			ctx = observability.ContextWithSpan(ctx, span)
			ctx = observability.ContextWithObserver(ctx, observer)

			observer.Debug(ctx, "llm send",
				observability.String(observability.AttrLLMModel, model),
				observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, "llm send failed")
				span.End()

				observer.Error(ctx, "llm send failed",
					observability.Error(err),
					observability.Duration(observability.AttrDuration, elapsed),
					observability.String(observability.AttrLLMModel, model),
				)
				observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
					observability.String(observability.AttrStatus, "error"),
					observability.String(observability.AttrLLMModel, model),
				)
				return nil, err
			}

			recordObsSuccess(ctx, span, observer, response, elapsed, model)
			return response, nil
		}
	}
}

// recordObsSuccess writes the success-path metrics, log and span attributes,
// then ends the span.
func recordObsSuccess(
	ctx context.Context,
	span observability.Span,
	observer observability.Provider,
	response *ai.ChatResponse,
	elapsed time.Duration,
	model string,
) {
	observer.Histogram(observability.MetricClientRequestDuration).Record(ctx, elapsed.Seconds(),
		observability.String(observability.AttrStatus, "success"),
	)
	observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, "success"),
		observability.String(observability.AttrLLMModel, model),
	)

	logAttrs := []observability.Attribute{
		observability.String(observability.AttrLLMModel, model),
		observability.String(observability.AttrLLMFinishReason, response.FinishReason),
		observability.Duration(observability.AttrDuration, elapsed),
	}

	if response.Usage != nil {
		observer.Counter(observability.MetricClientTokensTotal).Add(ctx, int64(response.Usage.TotalTokens),
			observability.String(observability.AttrLLMModel, model),
		)
		span.SetAttributes(
			observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
			observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
		)
		logAttrs = append(logAttrs,
			observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
			observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
		)
	}

	if response.Content != "" {
		logAttrs = append(logAttrs,
			observability.String("response", utils.TruncateString(response.Content, 100)),
		)
	}

	observer.Info(ctx, "llm send completed", logAttrs...)

	span.SetStatus(observability.StatusOK, "success")
	span.End()
}

// effectiveModel returns the request-level model when set, falling back to the
// client's configured default. Both being empty is valid (provider chooses).
func effectiveModel(requestModel, defaultModel string) string {
	if requestModel != "" {
		return requestModel
	}
	return defaultModel
}
