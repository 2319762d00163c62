package portal

type patchType int

const (
	patchTypeElements patchType = iota
	patchTypeSignals
	patchTypeScript
	patchTypeRedirect
)

func (t patchType) String() string {
	switch t {
	case patchTypeElements:
		return "elements"
	case patchTypeSignals:
		return "signals"
	case patchTypeScript:
		return "script"
	case patchTypeRedirect:
		return "redirect"
	}
	return "unknown"
}

type patch struct {
	typ     patchType
	content string
}
