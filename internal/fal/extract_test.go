package fal

import "testing"

func TestExtractOutput_Order(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
		ok      bool
	}{
		{
			name:    "typed video object",
			payload: map[string]any{"video": map[string]any{"url": "https://cdn/a.mp4"}},
			want:    "https://cdn/a.mp4",
			ok:      true,
		},
		{
			name:    "bare video string",
			payload: map[string]any{"video": "https://cdn/b.mp4"},
			want:    "https://cdn/b.mp4",
			ok:      true,
		},
		{
			name:    "video_url fallback",
			payload: map[string]any{"video_url": "https://cdn/c.mp4"},
			want:    "https://cdn/c.mp4",
			ok:      true,
		},
		{
			name: "typed object wins over video_url",
			payload: map[string]any{
				"video":     map[string]any{"url": "https://cdn/typed.mp4"},
				"video_url": "https://cdn/flat.mp4",
			},
			want: "https://cdn/typed.mp4",
			ok:   true,
		},
		{
			name:    "empty url in typed object falls through",
			payload: map[string]any{"video": map[string]any{"url": ""}, "video_url": "https://cdn/flat.mp4"},
			want:    "https://cdn/flat.mp4",
			ok:      true,
		},
		{
			name:    "no output anywhere",
			payload: map[string]any{"status": "COMPLETED"},
			want:    "",
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractOutput(tt.payload)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ExtractOutput() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExtractError(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{"string error", map[string]any{"error": "content policy violation"}, "content policy violation"},
		{"object error", map[string]any{"error": map[string]any{"message": "bad input"}}, "bad input"},
		{"missing error", map[string]any{}, "unknown error"},
		{"empty string error", map[string]any{"error": ""}, "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractError(tt.payload); got != tt.want {
				t.Errorf("ExtractError() = %q, want %q", got, tt.want)
			}
		})
	}
}
