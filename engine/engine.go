// Package engine is the top-level facade over pipeline.Run: it owns the
// engine's identity, supplies wall-clock timestamps, and writes the run's
// output artifacts to disk (spec §6.2). Everything between LOAD and
// BUILD_RUN_RECORD stays inside pipeline, which never touches a filesystem
// writer — only engine does.
package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vm-engine/engine/pipeline"
	"github.com/vm-engine/engine/report"
	"github.com/vm-engine/engine/result"
)

// Identity is this build's engine identity, embedded in every RunRecord
// (spec §6.3). Build is overridable at link time via -ldflags, matching the
// teacher's own version-stamping convention for its CLI binary.
var (
	Vendor  = "vm-engine"
	Name    = "vm-engine"
	Version = "0.1.0"
	Build   = "dev"
)

func identity() result.EngineIdentity {
	return result.EngineIdentity{Vendor: Vendor, Name: Name, Version: Version, Build: Build}
}

// Report is what Run returns to its caller: the three output paths actually
// written (FrontierMapPath empty if MAP_FRONTIER didn't run) and the exit
// code the caller should use (spec §6.4).
type Report struct {
	ExitCode        int
	ResultPath      string
	RunRecordPath   string
	FrontierMapPath string

	// View is the pure presentation view-model built from this run's
	// in-memory Result/FrontierMapDoc, before either was serialized to
	// disk (report.Build never reads the files Run just wrote).
	View report.View
}

// Run loads and executes the manifest at manifestPath within fsys, then
// writes result.json, run_record.json, and (if produced) frontier_map.json
// into outDir on the real filesystem. A non-nil error means the run aborted
// before any artifact existed (exit code 1); errors writing the artifacts
// themselves are also returned this way even though the pipeline itself
// succeeded, since the caller has nothing usable to report in that case.
func Run(fsys fs.FS, manifestPath, outDir string) (*Report, error) {
	startedUtc := time.Now().UTC().Format(time.RFC3339)
	outcome, err := pipeline.Run(fsys, manifestPath, identity(), startedUtc, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("engine: create output directory %s: %w", outDir, err)
	}

	rep := &Report{ExitCode: outcome.ExitCode, View: report.Build(outcome.Result, outcome.FrontierMapDoc)}

	rep.ResultPath = filepath.Join(outDir, "result.json")
	if err := writeArtifact(rep.ResultPath, outcome.ResultBytes); err != nil {
		return nil, err
	}

	rep.RunRecordPath = filepath.Join(outDir, "run_record.json")
	if err := writeArtifact(rep.RunRecordPath, outcome.RunRecordBytes); err != nil {
		return nil, err
	}

	if outcome.FrontierMapBytes != nil {
		rep.FrontierMapPath = filepath.Join(outDir, "frontier_map.json")
		if err := writeArtifact(rep.FrontierMapPath, outcome.FrontierMapBytes); err != nil {
			return nil, err
		}
	}

	return rep, nil
}

func writeArtifact(path string, b []byte) error {
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("engine: write %s: %w", path, err)
	}
	return nil
}
