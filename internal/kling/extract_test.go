package kling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractStatus(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{
			name:    "nested under data",
			payload: map[string]any{"data": map[string]any{"task_status": "Succeed"}},
			want:    "succeed",
		},
		{
			name:    "bare task_status",
			payload: map[string]any{"task_status": "processing"},
			want:    "processing",
		},
		{
			name:    "bare status",
			payload: map[string]any{"status": "FAILED"},
			want:    "failed",
		},
		{
			name:    "data wins over bare fields",
			payload: map[string]any{"data": map[string]any{"task_status": "succeed"}, "status": "failed"},
			want:    "succeed",
		},
		{
			name:    "empty payload",
			payload: map[string]any{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractStatus(tt.payload))
		})
	}
}

func TestIsSucceeded(t *testing.T) {
	assert.True(t, IsSucceeded("succeed"))
	assert.True(t, IsSucceeded("completed"))
	assert.True(t, IsSucceeded("complete"))
	assert.False(t, IsSucceeded("processing"))
	assert.False(t, IsSucceeded("failed"))
}

func TestIsFailed(t *testing.T) {
	assert.True(t, IsFailed("failed"))
	assert.True(t, IsFailed("error"))
	assert.False(t, IsFailed("succeed"))
}

func TestExtractOutput(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{
			name: "task result videos",
			payload: map[string]any{
				"data": map[string]any{
					"task_result": map[string]any{
						"videos": []any{map[string]any{"url": "https://cdn.example.com/a.mp4"}},
					},
				},
			},
			want: "https://cdn.example.com/a.mp4",
		},
		{
			name:    "data video_url",
			payload: map[string]any{"data": map[string]any{"video_url": "https://cdn.example.com/b.mp4"}},
			want:    "https://cdn.example.com/b.mp4",
		},
		{
			name:    "output video_url",
			payload: map[string]any{"output": map[string]any{"video_url": "https://cdn.example.com/c.mp4"}},
			want:    "https://cdn.example.com/c.mp4",
		},
		{
			name:    "top level video_url",
			payload: map[string]any{"video_url": "https://cdn.example.com/d.mp4"},
			want:    "https://cdn.example.com/d.mp4",
		},
		{
			name: "task result wins over later shapes",
			payload: map[string]any{
				"data": map[string]any{
					"task_result": map[string]any{
						"videos": []any{map[string]any{"url": "https://cdn.example.com/first.mp4"}},
					},
					"video_url": "https://cdn.example.com/second.mp4",
				},
			},
			want: "https://cdn.example.com/first.mp4",
		},
		{
			name:    "no output",
			payload: map[string]any{"data": map[string]any{"task_status": "succeed"}},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractOutput(tt.payload))
		})
	}
}

func TestExtractError(t *testing.T) {
	assert.Equal(t, "content policy violation", ExtractError(map[string]any{
		"data": map[string]any{"task_status_msg": "content policy violation"},
	}))
	assert.Equal(t, "quota exceeded", ExtractError(map[string]any{
		"error": map[string]any{"message": "quota exceeded"},
	}))
	assert.Equal(t, "task failed", ExtractError(map[string]any{}))
}
