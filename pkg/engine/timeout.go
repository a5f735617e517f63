package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/birukm3/femSIM/pkg/pipeline"
)

// EvalTimeout is the hard limit for a single plan evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	config *pipeline.Config
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, or fails once EvalTimeout has
// passed. Results from an evaluation that has since been superseded by a
// newer call are discarded.
//
// On timeout the evaluating goroutine may still be running; its result is
// dropped into the buffered channel and never read.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (*pipeline.Config, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.config, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
	}
}
