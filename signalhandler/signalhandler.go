package signalhandler

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
)

// SetupHandler returns a context cancelled on SIGINT or SIGTERM. The first
// signal lets in-flight conversions and their encoder subprocesses stop; a
// second one exits immediately.
func SetupHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stopped := make(chan struct{})

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-stopped:
			return
		}
		select {
		case <-sigChan:
			os.Exit(130)
		case <-stopped:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(stopped)
			cancel()
		})
	}
}

// GetOptimalProcs returns the number of concurrent conversions to run when the
// user did not pick one
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()

	// Each conversion also runs an encoder process, so leave headroom
	maxProcs := numCPU / 2
	if maxProcs < 1 {
		maxProcs = 1
	}
	return maxProcs
}

// ResolveJobs maps a configured job count to a usable one; values below 1 pick
// a default from the CPU count
func ResolveJobs(jobs int) int {
	if jobs < 1 {
		return GetOptimalProcs()
	}
	return jobs
}
