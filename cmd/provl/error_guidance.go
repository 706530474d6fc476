package main

import (
	"context"
	"errors"
	"net"
	"strings"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase PROVL_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a provl server is running at PROVL_API_URL.",
			"hint: start the local server manually with: provl srv",
		)
		return uniqueLines(lines)
	}

	message := err.Error()
	switch {
	case strings.HasPrefix(message, "unauthorized:"), strings.HasPrefix(message, "forbidden:"):
		lines = append(lines, "hint: verify PROVL_API_TOKEN and the operator password.")
	case strings.HasPrefix(message, "resource_exhausted:"):
		lines = append(lines, "hint: retry shortly or reduce concurrent uploads.")
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := lines[:0]
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
