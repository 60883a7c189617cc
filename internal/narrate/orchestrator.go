package narrate

import (
	"context"
	"encoding/json"
	"log"

	"github.com/mbastide/calendis/internal/codec"
)

// #region orchestrator

// Generator is the narrow view of the generative client the orchestrator
// needs. Satisfied by *codec.Client; tests substitute their own.
type Generator interface {
	Available() bool
	Generate(ctx context.Context, instruction string, payload map[string]any) (string, error)
}

// Orchestrator escalates grounded facts to a generative rewrite, validates
// the result, and falls back to the deterministic render on any doubt.
type Orchestrator struct {
	gen Generator
}

// New creates an orchestrator. gen may be nil: every narration then takes the
// deterministic path.
func New(gen Generator) *Orchestrator {
	return &Orchestrator{gen: gen}
}

// NewWithClient wires the standard codec client.
func NewWithClient(c *codec.Client) *Orchestrator {
	return &Orchestrator{gen: c}
}

// #endregion orchestrator

// #region narrate

// Narrate produces the final narration for one request. It never fails:
// unavailability, malformed output, validator rejection, and reconciliation
// mismatches all degrade to the deterministic fallback with OK=true.
func (o *Orchestrator) Narrate(ctx context.Context, in Input) Result {
	fallback := Result{
		OK:       true,
		Source:   "deterministic",
		Headline: in.FallbackHeadline,
		Answer:   in.FallbackAnswer,
		Reasons:  in.FallbackReasons,
	}

	spec, err := Lookup(in.Mode, in.Submode)
	if err != nil {
		// Unknown pair is a programming error; log it, answer deterministically.
		log.Printf("[NARRATE] %v", err)
		fallback.Warnings = append(fallback.Warnings, err.Error())
		return fallback
	}

	if o.gen == nil || !o.gen.Available() {
		return fallback
	}

	raw, err := o.gen.Generate(ctx, spec.Instruction, BuildPayload(in))
	if err != nil {
		log.Printf("[NARRATE] generate failed, falling back: %v", err)
		fallback.Warnings = append(fallback.Warnings, "génération indisponible")
		return fallback
	}

	body, ok := StripFence(raw)
	if !ok {
		log.Printf("[NARRATE] non-object response rejected")
		fallback.Warnings = append(fallback.Warnings, "réponse générative mal formée")
		return fallback
	}

	var n Narration
	if err := json.Unmarshal([]byte(body), &n); err != nil {
		log.Printf("[NARRATE] unparseable response rejected: %v", err)
		fallback.Warnings = append(fallback.Warnings, "réponse générative illisible")
		return fallback
	}

	if phrase := hitDenylist(n); phrase != "" {
		log.Printf("[NARRATE] denylist hit %q, falling back", phrase)
		fallback.Warnings = append(fallback.Warnings, "formulation générative refusée")
		return fallback
	}

	ok, errs, warns := spec.Validate(n, in)
	if !ok {
		log.Printf("[NARRATE] validator rejected: %v", errs)
		fallback.Errors = errs
		fallback.Warnings = append(fallback.Warnings, "narration générative invalide")
		return fallback
	}

	if err := Reconcile(n, in); err != nil {
		log.Printf("[NARRATE] reconciliation failed: %v", err)
		fallback.Warnings = append(fallback.Warnings, "narration générative non conciliée avec les données")
		return fallback
	}

	return Result{
		OK:       true,
		Source:   "generated",
		Headline: n.Headline,
		Answer:   n.Answer,
		Reasons:  n.Reasons,
		Warnings: warns,
	}
}

// #endregion narrate
