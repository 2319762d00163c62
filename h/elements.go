package h

import gh "maragu.dev/gomponents/html"

func A(children ...H) H { return gh.A(retype(children)...) }
func Article(children ...H) H { return gh.Article(retype(children)...) }
func Aside(children ...H) H { return gh.Aside(retype(children)...) }
func Br(children ...H) H { return gh.Br(retype(children)...) }
func Button(children ...H) H { return gh.Button(retype(children)...) }
func Dd(children ...H) H { return gh.Dd(retype(children)...) }
func Details(children ...H) H { return gh.Details(retype(children)...) }
func Dialog(children ...H) H { return gh.Dialog(retype(children)...) }
func Div(children ...H) H { return gh.Div(retype(children)...) }
func Dl(children ...H) H { return gh.Dl(retype(children)...) }
func Dt(children ...H) H { return gh.Dt(retype(children)...) }
func Em(children ...H) H { return gh.Em(retype(children)...) }
func FieldSet(children ...H) H { return gh.FieldSet(retype(children)...) }
func Footer(children ...H) H { return gh.Footer(retype(children)...) }
func Form(children ...H) H { return gh.Form(retype(children)...) }
func H1(children ...H) H { return gh.H1(retype(children)...) }
func H2(children ...H) H { return gh.H2(retype(children)...) }
func H3(children ...H) H { return gh.H3(retype(children)...) }
func H4(children ...H) H { return gh.H4(retype(children)...) }
func Header(children ...H) H { return gh.Header(retype(children)...) }
func Hr(children ...H) H { return gh.Hr(retype(children)...) }
func Img(children ...H) H { return gh.Img(retype(children)...) }
func Input(children ...H) H { return gh.Input(retype(children)...) }
func Label(children ...H) H { return gh.Label(retype(children)...) }
func Legend(children ...H) H { return gh.Legend(retype(children)...) }
func Li(children ...H) H { return gh.Li(retype(children)...) }
func Link(children ...H) H { return gh.Link(retype(children)...) }
func Main(children ...H) H { return gh.Main(retype(children)...) }
func Meta(children ...H) H { return gh.Meta(retype(children)...) }
func Nav(children ...H) H { return gh.Nav(retype(children)...) }
func Ol(children ...H) H { return gh.Ol(retype(children)...) }
func Option(children ...H) H { return gh.Option(retype(children)...) }
func P(children ...H) H { return gh.P(retype(children)...) }
func Progress(children ...H) H { return gh.Progress(retype(children)...) }
func Script(children ...H) H { return gh.Script(retype(children)...) }
func Section(children ...H) H { return gh.Section(retype(children)...) }
func Select(children ...H) H { return gh.Select(retype(children)...) }
func Small(children ...H) H { return gh.Small(retype(children)...) }
func Span(children ...H) H { return gh.Span(retype(children)...) }
func Strong(children ...H) H { return gh.Strong(retype(children)...) }
func Summary(children ...H) H { return gh.Summary(retype(children)...) }
func Table(children ...H) H { return gh.Table(retype(children)...) }
func TBody(children ...H) H { return gh.TBody(retype(children)...) }
func Td(children ...H) H { return gh.Td(retype(children)...) }
func Textarea(children ...H) H { return gh.Textarea(retype(children)...) }
func Th(children ...H) H { return gh.Th(retype(children)...) }
func THead(children ...H) H { return gh.THead(retype(children)...) }
func Tr(children ...H) H { return gh.Tr(retype(children)...) }
func Ul(children ...H) H { return gh.Ul(retype(children)...) }
