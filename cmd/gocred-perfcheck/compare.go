package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// sampleSet maps benchmark name -> unit -> samples across -count runs.
type sampleSet map[string]map[string][]float64

type comparison struct {
	benchmark string
	metric    string
	baseline  float64
	candidate float64
	delta     float64
}

func parseBenchmarkFile(path string, tracked map[string][]string) (sampleSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseBenchmarks(file, tracked)
}

func parseBenchmarks(r io.Reader, tracked map[string][]string) (sampleSet, error) {
	samples := sampleSet{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || !strings.HasPrefix(fields[0], "Benchmark") {
			continue
		}

		name := normalizeBenchmarkName(fields[0])
		if _, ok := tracked[name]; !ok {
			continue
		}
		if samples[name] == nil {
			samples[name] = map[string][]float64{}
		}

		// fields[1] is the iteration count; value/unit pairs follow.
		for i := 2; i+1 < len(fields); i += 2 {
			value, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				continue
			}
			samples[name][fields[i+1]] = append(samples[name][fields[i+1]], value)
		}
	}
	return samples, scanner.Err()
}

// compare returns one row per tracked metric, sorted, and a failure line for
// every missing sample or regression above threshold.
func compare(baseline, candidate sampleSet, tracked map[string][]string, threshold float64) ([]comparison, []string) {
	names := make([]string, 0, len(tracked))
	for name := range tracked {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		rows     []comparison
		failures []string
	)
	for _, name := range names {
		for _, metric := range tracked[name] {
			base := baseline[name][metric]
			cand := candidate[name][metric]
			if len(base) == 0 || len(cand) == 0 {
				failures = append(failures, fmt.Sprintf("missing samples for %s %s", name, metric))
				continue
			}

			baseMedian := median(base)
			candMedian := median(cand)
			if baseMedian <= 0 {
				// allocs/op can legitimately be zero; only growth from zero fails.
				if candMedian > 0 {
					failures = append(failures, fmt.Sprintf("%s %s grew from 0 to %.3f", name, metric, candMedian))
				}
				rows = append(rows, comparison{benchmark: name, metric: metric, baseline: baseMedian, candidate: candMedian})
				continue
			}

			delta := (candMedian - baseMedian) / baseMedian
			rows = append(rows, comparison{benchmark: name, metric: metric, baseline: baseMedian, candidate: candMedian, delta: delta})
			if delta > threshold {
				failures = append(failures, fmt.Sprintf("%s %s regressed by %+0.2f%% (limit %+0.2f%%)", name, metric, delta*100, threshold*100))
			}
		}
	}
	return rows, failures
}

func normalizeBenchmarkName(raw string) string {
	if idx := strings.LastIndexByte(raw, '-'); idx > 0 {
		if _, err := strconv.Atoi(raw[idx+1:]); err == nil {
			return raw[:idx]
		}
	}
	return raw
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
