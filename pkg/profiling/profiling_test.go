package profiling

import (
	"runtime"
	"testing"

	"github.com/getmentor/mentorship-api/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSampleTypes_EmptyMeansAll(t *testing.T) {
	got, err := parseSampleTypes("  ")
	require.NoError(t, err)

	assert.Len(t, got, 8)
	assert.Equal(t, pyroscope.ProfileCPU, got[0])
	assert.Contains(t, got, pyroscope.ProfileBlockDuration)
}

func TestParseSampleTypes_Subset(t *testing.T) {
	got, err := parseSampleTypes("mutex, cpu,,MUTEX")
	require.NoError(t, err)

	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
		pyroscope.ProfileCPU,
	}, got)
}

func TestParseSampleTypes_Unknown(t *testing.T) {
	_, err := parseSampleTypes("cpu,heap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"heap"`)
}

func TestProfileTags(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{AppEnv: "production"},
		Observability: config.ObservabilityConfig{
			ServiceName:      "mentorship-api",
			ServiceNamespace: "getmentor",
			ServiceVersion:   " 2.0.0 ",
		},
	}

	assert.Equal(t, map[string]string{
		"service_name":    "mentorship-api",
		"namespace":       "getmentor",
		"service_version": "2.0.0",
		"environment":     "production",
	}, profileTags(cfg))
}

func TestEnableRuntimeSampling_RestoresMutexFraction(t *testing.T) {
	original := runtime.SetMutexProfileFraction(-1)

	restore := enableRuntimeSampling([]pyroscope.ProfileType{pyroscope.ProfileMutexCount})
	assert.Equal(t, mutexProfileFraction, runtime.SetMutexProfileFraction(-1))

	restore()
	assert.Equal(t, original, runtime.SetMutexProfileFraction(-1))
}

func TestStart_Disabled(t *testing.T) {
	stop, err := Start(&config.Config{})
	require.NoError(t, err)
	assert.NotPanics(t, stop)
}

func TestStart_MissingEndpoint(t *testing.T) {
	_, err := Start(&config.Config{Profiling: config.ProfilingConfig{Enabled: true, Endpoint: "  "}})
	assert.Error(t, err)
}
