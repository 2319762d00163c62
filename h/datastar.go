package h

// DataOn reacts to a DOM event. The event may carry Datastar modifiers,
// e.g. "input__debounce.300ms".
func DataOn(event, expr string) H {
	return Data("on:"+event, expr)
}

// DataShow displays the element while expr is truthy.
func DataShow(expr string) H {
	return Data("show", expr)
}

// DataText sets the element's text from expr.
func DataText(expr string) H {
	return Data("text", expr)
}

// DataAttr sets an attribute of the element from expr.
func DataAttr(attr, expr string) H {
	return Data("attr:"+attr, expr)
}

// DataIndicator sets the named signal to true while a request triggered by
// the element is in flight.
func DataIndicator(signal string) H {
	return Data("indicator", signal)
}
