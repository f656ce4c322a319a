package gateway

import "strings"

// suppressedPrefixes and suppressedContains name request paths the Gateway
// never traces, even in debug mode: browser/devtools housekeeping requests
// that have nothing to do with Agent Board's own traffic.
var suppressedPrefixes = []string{"/.well-known/", "/devtools/"}

const suppressedContains = "appspecific"

func shouldSuppressRequestLog(path string, extra []string) bool {
	if path == "/favicon.ico" {
		return true
	}
	if strings.Contains(path, suppressedContains) {
		return true
	}
	for _, prefix := range suppressedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, prefix := range extra {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// debugLog traces a request line, but only when g.debug is set and the path
// isn't on the suppressed list. g.logAllow extends the built-in suppression
// list with additional noisy prefixes a deployment wants silenced.
func (g *Gateway) debugLog(method, path string) {
	if !g.debug || shouldSuppressRequestLog(path, g.logAllow) {
		return
	}
	g.logger.Debug("gateway", "request", "method", method, "path", path)
}
