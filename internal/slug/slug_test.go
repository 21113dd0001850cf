package slug

import (
	"regexp"
	"testing"
)

// TestGenerate exercises the slug generator with a broad range of inputs
// covering typical titles, special characters, edge cases, and boundary
// conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{
			name:  "simple two words",
			input: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "title with year",
			input: "Hello World 2026",
			want:  "hello-world-2026",
		},
		{
			name:  "already lowercase",
			input: "already lowercase",
			want:  "already-lowercase",
		},
		{
			name:  "single word",
			input: "GoLang",
			want:  "golang",
		},
		{
			name:  "mixed case sentence",
			input: "The Quick Brown Fox Jumps Over the Lazy Dog",
			want:  "the-quick-brown-fox-jumps-over-the-lazy-dog",
		},

		// --- Special characters ---
		{
			name:  "punctuation marks",
			input: "Hello, World! How's it going?",
			want:  "hello-world-hows-it-going",
		},
		{
			name:  "ampersand and at sign",
			input: "Rock & Roll @ the Arena",
			want:  "rock-roll-the-arena",
		},
		{
			name:  "parentheses and brackets",
			input: "Version (2.0) [Beta]",
			want:  "version-20-beta",
		},
		{
			name:  "hash and dollar",
			input: "Issue #42 costs $100",
			want:  "issue-42-costs-100",
		},

		// --- Whitespace handling ---
		{
			name:  "leading and trailing spaces",
			input: "  hello world  ",
			want:  "hello-world",
		},
		{
			name:  "multiple internal spaces",
			input: "hello    world",
			want:  "hello-world",
		},
		{
			name:  "tabs and newlines become hyphens",
			input: "tabs\tand\nnewlines",
			want:  "tabs-and-newlines",
		},
		{
			name:  "mixed whitespace run collapses to one hyphen",
			input: "a \t\n b",
			want:  "a-b",
		},

		// --- Hyphen handling ---
		{
			name:  "existing hyphens kept",
			input: "well-known title",
			want:  "well-known-title",
		},
		{
			name:  "consecutive hyphens collapsed",
			input: "a -- b --- c",
			want:  "a-b-c",
		},
		{
			name:  "leading and trailing hyphens trimmed",
			input: "-hello world-",
			want:  "hello-world",
		},

		// --- Edge cases ---
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "!!!???",
			want:  "",
		},
		{
			name:  "only spaces",
			input: "     ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerateCharset verifies the output alphabet for arbitrary inputs:
// whatever goes in, only [a-z0-9-] may come out.
func TestGenerateCharset(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9-]*$`)
	inputs := []string{
		"Hello, World!",
		"UPPER lower 123",
		"symbols *&^%$#@! everywhere",
		"tabs\tand\nnewlines",
		"  spaced  out  ",
	}
	for _, in := range inputs {
		got := Generate(in)
		if !valid.MatchString(got) {
			t.Errorf("Generate(%q) = %q contains invalid characters", in, got)
		}
	}
}

func TestWithSuffix(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		suffix int64
		want   string
	}{
		{
			name:   "title with timestamp",
			input:  "My First Post",
			suffix: 1700000000,
			want:   "my-first-post-1700000000",
		},
		{
			name:   "empty base falls back to suffix only",
			input:  "!!!",
			suffix: 42,
			want:   "42",
		},
		{
			name:   "identical titles differ by suffix",
			input:  "Duplicate",
			suffix: 7,
			want:   "duplicate-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithSuffix(tt.input, tt.suffix)
			if got != tt.want {
				t.Errorf("WithSuffix(%q, %d) = %q, want %q", tt.input, tt.suffix, got, tt.want)
			}
		})
	}

	// Same title, different suffixes → different slugs.
	a := WithSuffix("Same Title", 1)
	b := WithSuffix("Same Title", 2)
	if a == b {
		t.Errorf("expected distinct slugs, got %q twice", a)
	}
}
