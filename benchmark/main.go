// Package main benchmarks the gitwalk CLI against local repositories.
// Each command runs with the log cache disabled and then with SQLite caching,
// where the first successful run counts as cold and the rest are averaged as warm.
// Results are written to a CSV file for documentation.
//
// Prerequisites:
// - gitwalk binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the timings of one command on one repository.
type BenchmarkResult struct {
	Repository  string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	WalkLimit   int
	TestRepos   []string
	RepoPaths   map[string]string
	RepoRefs    map[string][2]string
}

// benchCase is one command line to time, plus the text that marks success.
type benchCase struct {
	command     string
	description string
	args        []string
	marker      string // empty means exit status alone decides
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:    os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		WalkLimit:   25,
		TestRepos:   []string{"csv-parser", "fd", "git", "kubernetes"},
		RepoPaths: map[string]string{
			"csv-parser": "python/csvpy.cpp",
			"fd":         "src/main.rs",
			"git":        "builtin/add.c",
			"kubernetes": "cmd/cloud-controller-manager/main.go",
		},
		RepoRefs: map[string][2]string{
			"csv-parser": {"v1.0.0", "v1.1.0"},
			"fd":         {"v9.0.0", "v10.0.0"},
			"git":        {"v2.51.0", "v2.52.0-rc0"},
			"kubernetes": {"v1.34.0", "v1.35.0-alpha.0"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	if output, err := exec.Command("gitwalk", "cache", "clear").CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the gitwalk binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("gitwalk"); err != nil {
		return errors.New("gitwalk binary not found in PATH")
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// casesFor lists the commands benchmarked on one repository.
func casesFor(config BenchmarkConfig, repo string) []benchCase {
	cases := []benchCase{
		{command: "log", description: "history listing", args: []string{"log", "--limit", "100"}, marker: "Listed in"},
	}
	if refs, ok := config.RepoRefs[repo]; ok {
		cases = append(cases, benchCase{
			command:     "diff",
			description: fmt.Sprintf("diff (%s -> %s)", refs[0], refs[1]),
			args:        []string{"diff", refs[0], refs[1]},
			marker:      "Diffed in",
		})
	}
	if path, ok := config.RepoPaths[repo]; ok {
		cases = append(cases, benchCase{
			command:     "show",
			description: fmt.Sprintf("show (%s)", path),
			args:        []string{"show", "HEAD", path},
		})
	}
	cases = append(cases, benchCase{
		command:     "walk",
		description: fmt.Sprintf("walk (last %d commits)", config.WalkLimit),
		args:        []string{"walk", "--limit", fmt.Sprint(config.WalkLimit)},
		marker:      "Walk completed in",
	})
	return cases
}

// runBenchmarks executes all benchmark tests across configured repositories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.TestRepos), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, bc := range casesFor(config, repo) {
			results = append(results, runBenchmarkSuite(config, repo, repoPath, bc))
		}
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath string, bc benchCase) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", bc.description, repo)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, repoPath, bc, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Repository:  repo,
		Command:     bc.command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a gitwalk command several times and returns the cold time and warm times.
func runBenchmark(config BenchmarkConfig, repoPath string, bc benchCase, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append(append([]string{}, bc.args...), "--cache-backend", cacheBackend, "--color", "no")

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()

		cmd := exec.CommandContext(ctx, "gitwalk", args...)
		cmd.Dir = repoPath
		output, err := cmd.CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output, bc.marker) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return coldTime, warmTimes
}

// isSuccess checks if command output carries the completion summary.
func isSuccess(output []byte, marker string) bool {
	return marker == "" || strings.Contains(string(output), marker)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/gitwalk_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"log", "diff", "show", "walk"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
