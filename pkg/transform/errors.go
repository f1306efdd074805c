package transform

import "fmt"

// ProxyError reports a proxy whose name could not be classified.
type ProxyError struct {
	Index int
	Name  string
	Err   error
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("proxies[%d]: %v", e.Index, e.Err)
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}

// Field returns the document path of the offending name.
func (e *ProxyError) Field() string {
	return fmt.Sprintf("%s[%d].name", KeyProxies, e.Index)
}

// ShapeError reports a document value with an unexpected type.
type ShapeError struct {
	// Field is the document path, e.g. "proxy-groups[2].proxies".
	Field string

	// Want describes the expected value.
	Want string

	// Got is the value that was found.
	Got any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %T", e.Field, e.Want, e.Got)
}
