package h

import gh "maragu.dev/gomponents/html"

func Accept(v string) H { return gh.Accept(v) }
func Charset(v string) H { return gh.Charset(v) }
func Checked() H { return gh.Checked() }
func Class(v string) H { return gh.Class(v) }
func ColSpan(v string) H { return gh.ColSpan(v) }
func Content(v string) H { return gh.Content(v) }
func Disabled() H { return gh.Disabled() }
func EncType(v string) H { return gh.EncType(v) }
func For(v string) H { return gh.For(v) }
func Href(v string) H { return gh.Href(v) }
func ID(v string) H { return gh.ID(v) }
func Max(v string) H { return gh.Max(v) }
func Min(v string) H { return gh.Min(v) }
func Method(v string) H { return gh.Method(v) }
func Multiple() H { return gh.Multiple() }
func Name(v string) H { return gh.Name(v) }
func Placeholder(v string) H { return gh.Placeholder(v) }
func Rel(v string) H { return gh.Rel(v) }
func Required() H { return gh.Required() }
func Role(v string) H { return gh.Role(v) }
func Selected() H { return gh.Selected() }
func Src(v string) H { return gh.Src(v) }
func Step(v string) H { return gh.Step(v) }
func Type(v string) H { return gh.Type(v) }
func Value(v string) H { return gh.Value(v) }

// Data attributes automatically have their name prefixed with "data-".
func Data(name, v string) H {
	return gh.Data(name, v)
}

// Aria attributes automatically have their name prefixed with "aria-".
func Aria(name, v string) H {
	return gh.Aria(name, v)
}

func AriaInvalid() H {
	return gh.Aria("invalid", "true")
}

func AriaCurrent(v string) H {
	return gh.Aria("current", v)
}
