// Package gemini implements [ai.Provider] for Google's Gemini generative
// language API (the generateContent endpoint).
//
// Structured output is requested by setting ResponseFormat.OutputSchema on the
// request; the provider then sends responseMimeType "application/json" with the
// schema as responseSchema. Authentication uses the x-goog-api-key header.
//
// [New] takes the API key as an argument and never reads the environment, so
// the caller decides where the credential comes from.
package gemini
