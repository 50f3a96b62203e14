package pacaur

import "fmt"

// Outcome is the single result document of a run, printed as JSON on stdout.
// Handler is set only when an install or upgrade path actually mutated state.
type Outcome struct {
	Changed bool   `json:"changed"`
	Msg     string `json:"msg"`
	Handler string `json:"handler,omitempty"`
}

// buildOutcome applies the message grammar shared by all named-package paths.
// single reports whether the request named exactly one package, which picks
// the "package is already ..." form over "all packages are already ...".
func buildOutcome(desired State, changes int, single, checkMode bool, handler string) *Outcome {
	verb := desired.pastParticiple()
	out := &Outcome{}

	switch {
	case changes > 1:
		tense := "have been"
		if checkMode {
			tense = "would be"
		}
		out.Changed = true
		out.Msg = fmt.Sprintf("%d packages %s %s", changes, tense, verb)
	case changes == 1:
		tense := "has been"
		if checkMode {
			tense = "would be"
		}
		out.Changed = true
		out.Msg = fmt.Sprintf("package %s %s", tense, verb)
	default:
		if single {
			out.Msg = "package is already " + verb
		} else {
			out.Msg = "all packages are already " + verb
		}
	}

	if out.Changed && !checkMode {
		out.Handler = handler
	}
	return out
}
