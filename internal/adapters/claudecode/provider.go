package claudecode

import "strings"

// providerPrefixes maps model name prefixes to provider ids, used when
// the model string does not embed an explicit "provider/" prefix.
var providerPrefixes = []struct {
	prefix   string
	provider string
}{
	{"claude", "anthropic"},
	{"gpt", "openai"},
	{"o1", "openai"},
	{"o3", "openai"},
	{"o4", "openai"},
	{"codex", "openai"},
	{"gemini", "google"},
	{"grok", "xai"},
	{"deepseek", "deepseek"},
	{"ministral", "mistral"},
	{"mistral", "mistral"},
	{"llama", "meta"},
}

// InferProvider derives a lowercase provider id from a raw model string.
// A "provider/" prefix wins; otherwise known name prefixes are tried;
// anything else is "unknown".
func InferProvider(model string) string {
	if i := strings.Index(model, "/"); i > 0 {
		return strings.ToLower(model[:i])
	}

	lower := strings.ToLower(model)
	for _, p := range providerPrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.provider
		}
	}
	return "unknown"
}
