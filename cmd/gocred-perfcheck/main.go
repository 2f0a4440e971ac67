// Command gocred-perfcheck compares two `go test -bench` outputs and exits
// non-zero when a tracked benchmark regressed past the threshold.
//
//	go test -run '^$' -bench . -count 5 . > base.txt
//	go test -run '^$' -bench . -count 5 . > head.txt
//	gocred-perfcheck -baseline base.txt -candidate head.txt
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
)

const defaultThreshold = 0.30

// Hashing dominates authenticate latency, so allocations are only tracked
// for the metrics fast path.
var trackedMetrics = map[string][]string{
	"BenchmarkAuthenticateMemory": {"ns/op"},
	"BenchmarkAuthenticateRedis":  {"ns/op"},
	"BenchmarkMetricsInc":         {"ns/op", "allocs/op"},
}

func main() {
	var (
		baselinePath  string
		candidatePath string
		threshold     float64
	)

	flag.StringVar(&baselinePath, "baseline", "", "path to baseline benchmark output")
	flag.StringVar(&candidatePath, "candidate", "", "path to candidate benchmark output")
	flag.Float64Var(&threshold, "threshold", defaultThreshold, "maximum allowed regression ratio (0.30 = +30%)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if baselinePath == "" || candidatePath == "" {
		logger.Error("-baseline and -candidate are required")
		os.Exit(2)
	}
	if threshold < 0 {
		logger.Error("-threshold must be >= 0", zap.Float64("threshold", threshold))
		os.Exit(2)
	}

	baseline, err := parseBenchmarkFile(baselinePath, trackedMetrics)
	if err != nil {
		logger.Error("parse baseline", zap.String("path", baselinePath), zap.Error(err))
		os.Exit(1)
	}
	candidate, err := parseBenchmarkFile(candidatePath, trackedMetrics)
	if err != nil {
		logger.Error("parse candidate", zap.String("path", candidatePath), zap.Error(err))
		os.Exit(1)
	}

	rows, failures := compare(baseline, candidate, trackedMetrics, threshold)
	fmt.Println("benchmark metric baseline candidate delta")
	for _, r := range rows {
		fmt.Printf("%s %s %.3f %.3f %+0.2f%%\n", r.benchmark, r.metric, r.baseline, r.candidate, r.delta*100)
	}

	if len(failures) > 0 {
		for _, f := range failures {
			logger.Error("performance regression", zap.String("detail", f))
		}
		os.Exit(1)
	}
}
