package ai

// NewReplyGenerator wires the configured provider behind the canned
// fallback. Without an API key the canned set serves alone.
func NewReplyGenerator(geminiAPIKey string) ReplyGenerator {
	if geminiAPIKey == "" {
		return NewFallbackGenerator(nil)
	}
	return NewFallbackGenerator(NewGeminiGenerator(geminiAPIKey))
}
