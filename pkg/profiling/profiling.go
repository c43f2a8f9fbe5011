package profiling

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/getmentor/mentorship-api/config"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

const (
	defaultAppName        = "mentorship-api"
	defaultUploadInterval = 15 * time.Second

	// sampling rates applied only when mutex/block profiles are requested
	mutexProfileFraction = 5
	blockProfileRate     = 5
)

// sampleTypes maps O11Y_PROFILING_SAMPLE_TYPES names to pyroscope profiles.
// Order matters: it is the order used when the setting is empty.
var sampleTypes = []struct {
	name  string
	types []pyroscope.ProfileType
}{
	{"cpu", []pyroscope.ProfileType{pyroscope.ProfileCPU}},
	{"alloc_space", []pyroscope.ProfileType{pyroscope.ProfileAllocSpace}},
	{"alloc_objects", []pyroscope.ProfileType{pyroscope.ProfileAllocObjects}},
	{"goroutines", []pyroscope.ProfileType{pyroscope.ProfileGoroutines}},
	{"mutex", []pyroscope.ProfileType{pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration}},
	{"block", []pyroscope.ProfileType{pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration}},
}

// Start begins continuous profiling when cfg.Profiling.Enabled is set. The
// returned stop function is always safe to call.
func Start(cfg *config.Config) (stop func(), err error) {
	p := cfg.Profiling
	if !p.Enabled {
		logger.Info("Continuous profiling disabled")
		return func() {}, nil
	}

	endpoint := strings.TrimSpace(p.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	types, err := parseSampleTypes(p.SampleTypes)
	if err != nil {
		return nil, err
	}
	restoreRates := enableRuntimeSampling(types)

	upload := time.Duration(p.UploadIntervalSeconds) * time.Second
	if upload <= 0 {
		upload = defaultUploadInterval
	}

	appName := strings.TrimSpace(p.AppName)
	if appName == "" {
		appName = defaultAppName
	}
	tags := profileTags(cfg)

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		Tags:            tags,
		ServerAddress:   endpoint,
		UploadRate:      upload,
		ProfileTypes:    types,
	})
	if err != nil {
		restoreRates()
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	logger.Info("Continuous profiling started",
		zap.String("application_name", appName),
		zap.Any("tags", tags),
		zap.String("endpoint", endpoint),
		zap.Int("profile_types", len(types)),
		zap.Duration("upload_interval", upload))

	return func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("Failed to stop profiler", zap.Error(stopErr))
		}
		restoreRates()
	}, nil
}

// profileTags labels every profile with the same resource identity the tracer uses
func profileTags(cfg *config.Config) map[string]string {
	tags := make(map[string]string, 5)
	add := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			tags[key] = value
		}
	}
	add("service_name", cfg.Observability.ServiceName)
	add("namespace", cfg.Observability.ServiceNamespace)
	add("service_version", cfg.Observability.ServiceVersion)
	add("instance", cfg.Observability.ServiceInstanceID)
	add("environment", cfg.Server.AppEnv)
	return tags
}

func parseSampleTypes(value string) ([]pyroscope.ProfileType, error) {
	var out []pyroscope.ProfileType
	seen := make(map[pyroscope.ProfileType]bool)
	add := func(types []pyroscope.ProfileType) {
		for _, t := range types {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}

	if strings.TrimSpace(value) == "" {
		for _, st := range sampleTypes {
			add(st.types)
		}
		return out, nil
	}

	for _, raw := range strings.Split(value, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		found := false
		for _, st := range sampleTypes {
			if st.name == name {
				add(st.types)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unsupported O11Y_PROFILING_SAMPLE_TYPES value: %q", name)
		}
	}

	if len(out) == 0 {
		return parseSampleTypes("")
	}
	return out, nil
}

// enableRuntimeSampling turns on the runtime's mutex and block sampling when
// those profiles are requested; without it they upload empty. The returned
// func puts the previous rates back.
func enableRuntimeSampling(types []pyroscope.ProfileType) func() {
	var wantMutex, wantBlock bool
	for _, t := range types {
		switch t {
		case pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration:
			wantMutex = true
		case pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration:
			wantBlock = true
		}
	}

	previousMutex := -1
	if wantMutex {
		previousMutex = runtime.SetMutexProfileFraction(mutexProfileFraction)
	}
	if wantBlock {
		runtime.SetBlockProfileRate(blockProfileRate)
	}

	return func() {
		if previousMutex >= 0 {
			runtime.SetMutexProfileFraction(previousMutex)
		}
		if wantBlock {
			runtime.SetBlockProfileRate(0)
		}
	}
}
