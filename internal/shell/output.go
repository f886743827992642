package shell

import "fmt"

// OutputKind classifies an output line for display
type OutputKind int

const (
	KindInfo OutputKind = iota
	KindHeader
	KindPrompt
	KindSuccess
	KindError
	KindWarning
	KindCode
)

func (k OutputKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindPrompt:
		return "prompt"
	case KindInfo:
		return "info"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindWarning:
		return "warning"
	case KindCode:
		return "code"
	default:
		return fmt.Sprintf("OutputKind(%d)", int(k))
	}
}

// Line is one classified line of command output.
// Text may itself span several physical lines (neofetch, cat).
type Line struct {
	Text string
	Kind OutputKind
}

// Result is what Execute returns for one input line
type Result struct {
	Lines []Line

	// Clear asks the caller to reset its displayed history
	Clear bool
}

// HasError reports whether any line is an error
func (r Result) HasError() bool {
	for _, l := range r.Lines {
		if l.Kind == KindError {
			return true
		}
	}
	return false
}

func info(text string) Line {
	return Line{Text: text, Kind: KindInfo}
}

func errorf(format string, args ...interface{}) Line {
	return Line{Text: fmt.Sprintf(format, args...), Kind: KindError}
}

func infos(texts ...string) []Line {
	out := make([]Line, len(texts))
	for i, t := range texts {
		out[i] = info(t)
	}
	return out
}
