package litellm

import "aispend/internal/ports"

// embeddedSchedules is the offline snapshot of the catalog, covering the
// models the supported tools commonly emit. Rates are USD per token.
func embeddedSchedules() map[string]ports.Schedule {
	return map[string]ports.Schedule{
		// Anthropic
		"claude-opus-4-5-20251101": {
			Input: 5e-06, Output: 2.5e-05,
			CacheWrite: 6.25e-06, CacheRead: 5e-07,
		},
		"claude-opus-4-1-20250805": {
			Input: 1.5e-05, Output: 7.5e-05,
			CacheWrite: 1.875e-05, CacheRead: 1.5e-06,
		},
		"claude-opus-4-20250514": {
			Input: 1.5e-05, Output: 7.5e-05,
			CacheWrite: 1.875e-05, CacheRead: 1.5e-06,
		},
		"claude-sonnet-4-5-20250929": {
			Input: 3e-06, InputAbove200k: 6e-06,
			Output: 1.5e-05, OutputAbove200k: 2.25e-05,
			CacheWrite: 3.75e-06, CacheWriteAbove200k: 7.5e-06,
			CacheRead: 3e-07, CacheReadAbove200k: 6e-07,
		},
		"claude-sonnet-4-20250514": {
			Input: 3e-06, InputAbove200k: 6e-06,
			Output: 1.5e-05, OutputAbove200k: 2.25e-05,
			CacheWrite: 3.75e-06, CacheWriteAbove200k: 7.5e-06,
			CacheRead: 3e-07, CacheReadAbove200k: 6e-07,
		},
		"claude-3-7-sonnet-20250219": {
			Input: 3e-06, Output: 1.5e-05,
			CacheWrite: 3.75e-06, CacheRead: 3e-07,
		},
		"claude-3-5-sonnet-20241022": {
			Input: 3e-06, Output: 1.5e-05,
			CacheWrite: 3.75e-06, CacheRead: 3e-07,
		},
		"claude-haiku-4-5-20251001": {
			Input: 1e-06, Output: 5e-06,
			CacheWrite: 1.25e-06, CacheRead: 1e-07,
		},
		"claude-3-5-haiku-20241022": {
			Input: 8e-07, Output: 4e-06,
			CacheWrite: 1e-06, CacheRead: 8e-08,
		},

		// OpenAI
		"gpt-5": {
			Input: 1.25e-06, Output: 1e-05, CacheRead: 1.25e-07,
		},
		"gpt-5-mini": {
			Input: 2.5e-07, Output: 2e-06, CacheRead: 2.5e-08,
		},
		"gpt-5-codex": {
			Input: 1.25e-06, Output: 1e-05, CacheRead: 1.25e-07,
		},
		"gpt-4.1": {
			Input: 2e-06, Output: 8e-06, CacheRead: 5e-07,
		},
		"gpt-4o": {
			Input: 2.5e-06, Output: 1e-05, CacheRead: 1.25e-06,
		},
		"o3": {
			Input: 2e-06, Output: 8e-06, CacheRead: 5e-07,
		},
		"codex-mini-latest": {
			Input: 1.5e-06, Output: 6e-06, CacheRead: 3.75e-07,
		},

		// Google
		"gemini-2.5-pro": {
			Input: 1.25e-06, InputAbove200k: 2.5e-06,
			Output: 1e-05, OutputAbove200k: 1.5e-05,
			CacheRead: 3.1e-07, CacheReadAbove200k: 6.25e-07,
		},
		"gemini-2.5-flash": {
			Input: 3e-07, Output: 2.5e-06, CacheRead: 7.5e-08,
		},

		// Other providers seen in local logs
		"deepseek-chat": {
			Input: 2.7e-07, Output: 1.1e-06, CacheRead: 7e-08,
		},
		"grok-4": {
			Input: 3e-06, Output: 1.5e-05, CacheRead: 7.5e-07,
		},
	}
}
