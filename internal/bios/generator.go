package bios

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/bio-generator/internal/catalog"
	"github.com/jonathan/bio-generator/internal/llm"
	"github.com/jonathan/bio-generator/internal/types"
	"github.com/jonathan/bio-generator/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Recorder stores completed generations.
type Recorder interface {
	RecordGeneration(ctx context.Context, gen types.Generation) error
}

// Result is the outcome of a generation. Warning is set when the completion
// was only partially parsed. Violations lists the content rules the bios
// break; they never fail a generation.
type Result struct {
	Generation types.Generation
	Completion string
	Warning    string
	Violations []types.Violation
}

// Generator runs the prompt, completion and parse steps against an LLM client.
type Generator struct {
	client   llm.Client
	recorder Recorder
	logger   *zap.Logger
	timeout  time.Duration
	group    singleflight.Group
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder records every successful generation.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithTimeout bounds each completion request.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// NewGenerator creates a Generator backed by client.
func NewGenerator(client llm.Client, opts ...Option) *Generator {
	g := &Generator{
		client: client,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequestCompletion sends prompt to the completion service and returns the
// trimmed text of the first candidate. Concurrent calls with the same prompt
// share one outbound request. Failures are logged and returned as
// *APICallError; there is no retry.
//
// The shared request is detached from the cancellation of whichever caller
// started it and bounded by the generator timeout instead. Each caller still
// returns as soon as its own ctx is done.
func (g *Generator) RequestCompletion(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := g.now()
	shared := context.WithoutCancel(ctx)
	ch := g.group.DoChan(prompt, func() (any, error) {
		callCtx := shared
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(shared, g.timeout)
			defer cancel()
		}
		return g.client.GenerateContent(callCtx, prompt)
	})

	select {
	case <-ctx.Done():
		err := &APICallError{Message: "completion request cancelled", Cause: ctx.Err()}
		g.logger.Warn("Completion request cancelled", zap.Error(ctx.Err()))
		return "", err
	case res := <-ch:
		if res.Err != nil {
			g.logger.Error("Error calling Gemini API",
				zap.String("model", g.client.Model()),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(res.Err))
			return "", &APICallError{Message: "failed to generate content", Cause: res.Err}
		}
		text := res.Val.(string)
		g.logger.Debug("Completion received",
			zap.String("model", g.client.Model()),
			zap.Int("chars", len(text)),
			zap.Bool("shared", res.Shared),
			zap.Duration("elapsed", time.Since(start)))
		return text, nil
	}
}

// Generate builds the prompt for form, requests a completion and parses it.
//
// A completion with at least one bio is a success; when fewer than BioCount
// bios were found the generation is marked degraded and Result.Warning is
// set. A completion without any bios returns the *ParseError.
func (g *Generator) Generate(ctx context.Context, form types.FormState) (*Result, error) {
	prompt := BuildPrompt(form)

	text, err := g.RequestCompletion(ctx, prompt)
	if err != nil {
		return nil, err
	}

	bios, err := ParseBios(text)
	var parseErr *ParseError
	if err != nil && (!errors.As(err, &parseErr) || len(bios) == 0) {
		g.logger.Warn("Completion could not be parsed", zap.Error(err), zap.String("completion", text))
		return nil, err
	}

	res := &Result{Completion: text, Violations: CheckContent(form, bios)}
	if len(res.Violations) > 0 {
		g.logger.Info("Bios break content rules", zap.Int("violations", len(res.Violations)))
	}
	if parseErr != nil {
		res.Warning = parseErr.Error()
		g.logger.Warn("Completion partially parsed", zap.Int("bios", len(bios)), zap.Error(parseErr))
	}
	res.Generation = g.Record(ctx, form, prompt, bios, parseErr != nil)
	return res, nil
}

// Record stores a finished generation and returns it. Storage failures are
// logged and do not fail the generation.
func (g *Generator) Record(ctx context.Context, form types.FormState, prompt string, bios []types.Bio, degraded bool) types.Generation {
	gen := types.Generation{
		ID:        uuid.New(),
		Prompt:    prompt,
		Vibe:      form.Vibe,
		Location:  form.Location,
		Bios:      bios,
		Degraded:  degraded,
		CreatedAt: g.now().UTC(),
	}
	if g.recorder == nil {
		return gen
	}
	if err := g.recorder.RecordGeneration(ctx, gen); err != nil {
		g.logger.Error("Failed to record generation", zap.String("id", gen.ID.String()), zap.Error(err))
	}
	return gen
}

// CheckContent checks bios against the rules in the prompt: the length
// limit, no hashtags and the flag of a catalog location.
func CheckContent(form types.FormState, bios []types.Bio) []types.Violation {
	opts := validation.Options{MaxChars: MaxBioChars}
	if form.LocationSet() {
		if c, ok := catalog.Lookup(form.Location); ok {
			opts.Flag = c.Flag
		}
	}
	return validation.CheckBios(bios, opts)
}

// Model returns the model used for completions.
func (g *Generator) Model() string {
	return g.client.Model()
}
