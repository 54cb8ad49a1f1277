package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supersonicads/spotcli/elastigroup"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		inputKind     string
		inputOptions  *Options
		expectedError string
		name          string
	}{
		{
			inputKind:    "roll",
			inputOptions: &Options{Targets: []string{"web"}},
			name:         "minimal roll task",
		},
		{
			inputKind:    "roll",
			inputOptions: &Options{Targets: []string{"web"}, Batch: "50%", Grace: "10m"},
			name:         "roll task with parameters",
		},
		{
			inputKind:    "suspend",
			inputOptions: &Options{Targets: []string{"web"}, Processes: []string{"auto_healing", "AUTO_SCALE_UP"}},
			name:         "suspend task parses processes",
		},
		{
			inputKind:     "explode",
			inputOptions:  &Options{Targets: []string{"web"}},
			expectedError: `invalid task kind "explode"`,
			name:          "unknown kind",
		},
		{
			inputKind:     "roll",
			inputOptions:  &Options{},
			expectedError: "invalid roll task: tasks require at least one target",
			name:          "missing targets",
		},
		{
			inputKind:     "upscale",
			inputOptions:  &Options{Targets: []string{"web"}},
			expectedError: "invalid upscale task: scale tasks require an amount",
			name:          "scale without amount",
		},
		{
			inputKind:     "upscale",
			inputOptions:  &Options{},
			expectedError: "invalid upscale task: tasks require at least one target, scale tasks require an amount",
			name:          "errors accumulate",
		},
		{
			inputKind:     "unsuspend",
			inputOptions:  &Options{Targets: []string{"web"}},
			expectedError: "invalid unsuspend task: unsuspend tasks require at least one process",
			name:          "unsuspend without process",
		},
		{
			inputKind:     "suspend",
			inputOptions:  &Options{Targets: []string{"web"}, Processes: []string{"defrag"}},
			expectedError: `invalid suspend task: invalid elastigroup process "defrag"`,
			name:          "unknown process",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			task, err := New(tc.inputKind, tc.inputOptions)
			if tc.expectedError != "" {
				assert.Nil(t, task, tc.name)
				assert.EqualError(t, err, tc.expectedError, tc.name)
				return
			}
			require.NoError(t, err, tc.name)
			assert.Equal(t, Kind(tc.inputKind), task.Kind, tc.name)
			assert.Equal(t, tc.inputOptions.Targets, task.Targets, tc.name)
		})
	}
}

func TestNew_processTranslation(t *testing.T) {
	task, err := New("suspend", &Options{
		Targets:   []string{"web"},
		Processes: []string{"auto_healing", "AUTO_SCALE_UP"},
	})
	require.NoError(t, err)
	assert.Equal(t, []elastigroup.Process{
		elastigroup.ProcessAutoHealing,
		elastigroup.ProcessAutoScaleUp,
	}, task.Processes)
}
