package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kailas-cloud/synergyphi/internal/domain/entropy"
	"github.com/kailas-cloud/synergyphi/internal/domain/quotient"
	"github.com/kailas-cloud/synergyphi/internal/domain/receipt"
	"github.com/kailas-cloud/synergyphi/internal/domain/resonance"
	"github.com/kailas-cloud/synergyphi/internal/domain/vector"
	logpkg "github.com/kailas-cloud/synergyphi/internal/logger"
	"github.com/kailas-cloud/synergyphi/internal/version"
)

type bsqInput struct {
	Affirmations []float64   `json:"affirmations"`
	Embeddings   [][]float64 `json:"embeddings"`
	Baseline     []float64   `json:"baseline"`
}

type resonanceInput struct {
	Aligned  []float64 `json:"aligned"`
	Baseline []float64 `json:"baseline"`
}

type coherenceInput struct {
	Embeddings [][]float64 `json:"embeddings"`
}

type synergyInput struct {
	X []any `json:"x"`
	Y []any `json:"y"`
	Z []any `json:"z"`
}

type harmonicInput struct {
	Alignment    float64     `json:"alignment"`
	HRVCoherence float64     `json:"hrv_coherence"`
	Synergy      float64     `json:"synergy"`
	Weights      *[3]float64 `json:"weights"`
}

func runBSQ(args []string, stdin io.Reader, stdout io.Writer) error {
	var in bsqInput
	if err := loadJSON(args, stdin, &in); err != nil {
		return err
	}
	v, err := quotient.Expanded(in.Affirmations, in.Embeddings, in.Baseline)
	if err != nil {
		return fmt.Errorf("bsq: %w", err)
	}
	fmt.Fprintln(stdout, v)
	return nil
}

func runResonance(args []string, stdin io.Reader, stdout io.Writer) error {
	var in resonanceInput
	if err := loadJSON(args, stdin, &in); err != nil {
		return err
	}
	v, err := resonance.Intrinsic(in.Aligned, in.Baseline)
	if err != nil {
		return fmt.Errorf("ra: %w", err)
	}
	fmt.Fprintln(stdout, v)
	return nil
}

func runCoherence(args []string, stdin io.Reader, stdout io.Writer) error {
	var in coherenceInput
	if err := loadJSON(args, stdin, &in); err != nil {
		return err
	}
	scores, err := vector.Coherence(in.Embeddings)
	if err != nil {
		return fmt.Errorf("coherence: %w", err)
	}
	return writeJSONLine(stdout, scores)
}

func runSynergy(args []string, stdin io.Reader, stdout io.Writer) error {
	var in synergyInput
	if err := loadJSON(args, stdin, &in); err != nil {
		return err
	}
	var err error
	if in.X, err = entropy.Symbols(in.X); err != nil {
		return fmt.Errorf("dsi: x: %w", err)
	}
	if in.Y, err = entropy.Symbols(in.Y); err != nil {
		return fmt.Errorf("dsi: y: %w", err)
	}
	if in.Z, err = entropy.Symbols(in.Z); err != nil {
		return fmt.Errorf("dsi: z: %w", err)
	}
	v, err := entropy.DyadicSynergyIndex(in.X, in.Y, in.Z)
	if err != nil {
		return fmt.Errorf("dsi: %w", err)
	}
	fmt.Fprintln(stdout, v)
	return nil
}

func runHarmonic(args []string, stdin io.Reader, stdout io.Writer) error {
	var in harmonicInput
	if err := loadJSON(args, stdin, &in); err != nil {
		return err
	}
	w := quotient.DefaultWeights
	if in.Weights != nil {
		w = quotient.Weights(*in.Weights)
	}
	v, err := quotient.Harmonic(in.Alignment, in.HRVCoherence, in.Synergy, w)
	if err != nil {
		return fmt.Errorf("harmonic: %w", err)
	}
	fmt.Fprintln(stdout, v)
	return nil
}

func runWitness(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("witness", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	keyHex := fs.String("key", os.Getenv("SYNERGYPHI_LEDGER_KEY"), "hex-encoded 32-byte signing key")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("witness: %w", err)
	}

	payload, err := readInput(fs.Args(), stdin)
	if err != nil {
		return err
	}

	var key receipt.KeyPair
	if *keyHex != "" {
		key, err = receipt.ParsePrivateKey(*keyHex)
	} else {
		key, err = receipt.GenerateKeyPair()
		if err == nil {
			warnEphemeralKey()
		}
	}
	if err != nil {
		return fmt.Errorf("witness: %w", err)
	}

	return writeJSONLine(stdout, receipt.New(payload, key))
}

func runVersion(_ []string, _ io.Reader, stdout io.Writer) error {
	fmt.Fprintf(stdout, "synergyphi %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
	return nil
}

// warnEphemeralKey tells the user the receipt cannot be verified later.
func warnEphemeralKey() {
	logger, err := logpkg.NewLogger("cli")
	if err != nil {
		return
	}
	defer func() { _ = logger.Sync() }()
	logger.Warn("Signing with an ephemeral key; the receipt cannot be verified later",
		zap.String("hint", "pass -key or set SYNERGYPHI_LEDGER_KEY"))
}

// loadJSON decodes the file named by the single positional argument.
func loadJSON(args []string, stdin io.Reader, v any) error {
	data, err := readInput(args, stdin)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	return nil
}

// readInput reads the file named by the single positional argument; "-" is stdin.
func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) != 1 {
		return nil, errors.New("expected exactly one FILE argument")
	}
	if args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(args[0]))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
