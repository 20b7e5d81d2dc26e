package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/swapstudio/swapstudio-api/internal/job"
	"github.com/swapstudio/swapstudio-api/internal/replicate"
)

// mockReplicateClient is a testify mock over the replicate.Client interface.
type mockReplicateClient struct {
	mock.Mock
}

func (m *mockReplicateClient) UploadMedia(ctx context.Context, data []byte, filename, contentType string) string {
	args := m.Called(ctx, data, filename, contentType)
	return args.String(0)
}

func (m *mockReplicateClient) CreatePrediction(ctx context.Context, input replicate.PredictionInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockReplicateClient) GetPrediction(ctx context.Context, id string) (replicate.Prediction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(replicate.Prediction), args.Error(1)
}

func TestReplicateAdapter_Provider(t *testing.T) {
	adapter := NewReplicateAdapter(nil, nil, discardLogger())
	assert.Equal(t, job.ProviderReplicate, adapter.Provider())
}

func TestReplicateAdapter_Submit(t *testing.T) {
	ctx := context.Background()
	client := &mockReplicateClient{}
	compressor := &mockCompressor{}
	adapter := NewReplicateAdapter(client, compressor, discardLogger())

	// "aW1n" decodes to "img", "dmlk" to "vid".
	compressor.On("Compress", ctx, "dmlk").Return("data:video/mp4;base64,dmlk", nil)
	client.On("UploadMedia", ctx, []byte("img"), "character.png", "image/png").
		Return("https://api.replicate.com/v1/files/img")
	client.On("UploadMedia", ctx, []byte("vid"), "motion.mp4", "video/mp4").
		Return("https://api.replicate.com/v1/files/vid")
	client.On("CreatePrediction", ctx, replicate.PredictionInput{
		Image:                "https://api.replicate.com/v1/files/img",
		Video:                "https://api.replicate.com/v1/files/vid",
		Prompt:               "person performing the motion naturally",
		Mode:                 "std",
		CharacterOrientation: "video",
		KeepOriginalSound:    true,
	}).Return("pred-7", nil)

	var progress []int
	task, err := adapter.Submit(ctx, Request{
		ImageData: "aW1n",
		VideoData: "dmlk",
		Quality:   "std",
	}, func(p int) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, "pred-7", task.ID)
	assert.Equal(t, []int{5, 15, 20, 30, 35, 40}, progress)
	client.AssertExpectations(t)
	compressor.AssertExpectations(t)
}

func TestReplicateAdapter_Submit_InvalidImage(t *testing.T) {
	ctx := context.Background()
	client := &mockReplicateClient{}
	compressor := &mockCompressor{}
	adapter := NewReplicateAdapter(client, compressor, discardLogger())

	compressor.On("Compress", ctx, mock.Anything).Return("dmlk", nil)

	_, err := adapter.Submit(ctx, Request{ImageData: "not base64!!!", VideoData: "dmlk"}, func(int) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding image")
}

func TestReplicateAdapter_PollOnce(t *testing.T) {
	ctx := context.Background()
	task := &Task{ID: "pred-7"}

	tests := []struct {
		name       string
		prediction replicate.Prediction
		wantStatus Status
		wantOutput string
		wantError  string
	}{
		{
			name:       "starting maps to queued",
			prediction: replicate.Prediction{Status: replicate.StatusStarting},
			wantStatus: StatusQueued,
		},
		{
			name:       "processing maps to running",
			prediction: replicate.Prediction{Status: replicate.StatusProcessing},
			wantStatus: StatusRunning,
		},
		{
			name: "succeeded with string output",
			prediction: replicate.Prediction{
				Status: replicate.StatusSucceeded,
				Output: "https://cdn.example.com/out.mp4",
			},
			wantStatus: StatusSucceeded,
			wantOutput: "https://cdn.example.com/out.mp4",
		},
		{
			name: "succeeded with list output",
			prediction: replicate.Prediction{
				Status: replicate.StatusSucceeded,
				Output: []any{"https://cdn.example.com/first.mp4"},
			},
			wantStatus: StatusSucceeded,
			wantOutput: "https://cdn.example.com/first.mp4",
		},
		{
			name: "failed with message",
			prediction: replicate.Prediction{
				Status: replicate.StatusFailed,
				Error:  "model exited unexpectedly",
			},
			wantStatus: StatusFailed,
			wantError:  "model exited unexpectedly",
		},
		{
			name:       "failed without message gets default",
			prediction: replicate.Prediction{Status: replicate.StatusFailed},
			wantStatus: StatusFailed,
			wantError:  "prediction failed",
		},
		{
			name:       "canceled by provider",
			prediction: replicate.Prediction{Status: replicate.StatusCanceled},
			wantStatus: StatusFailed,
			wantError:  "prediction canceled by provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockReplicateClient{}
			adapter := NewReplicateAdapter(client, nil, discardLogger())

			client.On("GetPrediction", ctx, "pred-7").Return(tt.prediction, nil)

			result, err := adapter.PollOnce(ctx, task, 1)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantOutput, result.OutputURL)
			assert.Equal(t, tt.wantError, result.Error)
		})
	}
}
