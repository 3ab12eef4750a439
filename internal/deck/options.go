package deck

import (
	"time"

	"github.com/phrazzld/lessondeck/internal/config"
	"github.com/phrazzld/lessondeck/internal/retry"
)

// OptionsFromConfig builds pipeline options from the llm and generation
// sections. cache may be nil.
func OptionsFromConfig(llm config.LLMConfig, gen config.GenerationConfig, cache ImageCache) (Options, error) {
	mode, err := ParseImageMode(gen.ImageMode)
	if err != nil {
		return Options{}, err
	}

	policy := retry.DefaultPolicy()
	if llm.MaxRetries > 0 {
		policy.MaxAttempts = llm.MaxRetries
	}
	if llm.RetryBaseDelayMs > 0 {
		policy.BaseDelay = time.Duration(llm.RetryBaseDelayMs) * time.Millisecond
	}

	return Options{
		Retry:            policy,
		ImageMode:        mode,
		ImageWorkers:     gen.ImageWorkers,
		ProgressInterval: time.Duration(gen.ProgressIntervalMs) * time.Millisecond,
		ProgressStep:     gen.ProgressStep,
		Cache:            cache,
	}, nil
}
