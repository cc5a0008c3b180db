package client

import (
	"context"
	"strings"
	"time"
)

var codeMarkers = []string{"```", "function", "<", "const ", "let "}

// HasCodeMarkers reports whether content looks like code and should be shown whole.
func HasCodeMarkers(content string) bool {
	for _, marker := range codeMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

// Reveal emits growing prefixes of content, one word per interval, and closes the
// channel after the full text. Code-like content is emitted in one frame. The reveal
// is presentation only and says nothing about delivery.
func Reveal(ctx context.Context, content string, interval time.Duration) <-chan string {
	frames := make(chan string)
	go func() {
		defer close(frames)
		if interval <= 0 || HasCodeMarkers(content) {
			select {
			case frames <- content:
			case <-ctx.Done():
			}
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var sb strings.Builder
		for i, word := range strings.SplitAfter(content, " ") {
			if i > 0 {
				select {
				case <-ticker.C:
				case <-ctx.Done():
					return
				}
			}
			sb.WriteString(word)
			select {
			case frames <- sb.String():
			case <-ctx.Done():
				return
			}
		}
	}()
	return frames
}
