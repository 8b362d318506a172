package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "gemini")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier from the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensPrompt is the number of prompt tokens
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensCompletion is the number of generated tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Client Attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in a request
	AttrRequestMessagesCount = "request.messages.count"

	// AttrClientStructured marks requests that carry an output schema
	AttrClientStructured = "client.structured"
)

// --- Extraction Attributes ---

const (
	// AttrExtractTarget is the address section an extraction fills
	AttrExtractTarget = "extract.target"

	// AttrExtractInputLength is the length of the free-form input text
	AttrExtractInputLength = "extract.input.length"

	// AttrExtractErrorKind is the failure kind of an extraction
	AttrExtractErrorKind = "extract.error.kind"

	// AttrExtractRequestID identifies one autofill request
	AttrExtractRequestID = "extract.request.id"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"

	// AttrHTTPDuration is the round-trip time of the request
	AttrHTTPDuration = "http.request.duration"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanClientSendMessage is the span name for structured client calls
	SpanClientSendMessage = "client.send_message"

	// SpanExtractAddress is the span name for one address extraction
	SpanExtractAddress = "extract.address"
)

// --- Event Names ---

const (
	// EventLLMRequestStart marks the start of an LLM request
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the end of an LLM request
	EventLLMRequestEnd = "llm.request.end"

	// EventTokensReceived marks when tokens are received from LLM
	EventTokensReceived = "llm.tokens.received" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Metric Names ---

const (
	// MetricClientRequestCount counts provider calls made through the client
	MetricClientRequestCount = "shipshape.client.request.count"

	// MetricClientRequestDuration is the histogram of provider call latency in seconds
	MetricClientRequestDuration = "shipshape.client.request.duration"

	// MetricClientTokensTotal counts tokens billed by the provider
	MetricClientTokensTotal = "shipshape.client.tokens.total" // #nosec G101 -- Not a credential

	// MetricExtractCount counts extraction attempts, labelled by outcome
	MetricExtractCount = "shipshape.extract.count"

	// MetricExtractDuration is the histogram of extraction latency in seconds
	MetricExtractDuration = "shipshape.extract.duration"
)
