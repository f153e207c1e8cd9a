package batch

import (
	"fmt"
	"io"
	"time"
)

// Progress tracks batch progress.
type Progress struct {
	Phase       string
	File        string
	FilesDone   int
	FilesFailed int
	FilesTotal  int
	InputBytes  int64
	OutputBytes int64
	StartTime   time.Time
	Error       error
}

// ProgressFunc is called with progress updates.
// Calls are serialized; the function need not be safe for concurrent use.
type ProgressFunc func(Progress)

// FormatBytes formats bytes as human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < 0 {
		return "-" + FormatBytes(-bytes)
	}
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// Printer returns a ProgressFunc that writes progress lines to w.
func Printer(w io.Writer) ProgressFunc {
	return func(p Progress) {
		switch p.Phase {
		case "plan":
			fmt.Fprintf(w, "[Plan] %d files to convert\n", p.FilesTotal)
		case "convert":
			fmt.Fprintf(w, "\r[Convert] %d / %d files, %s -> %s",
				p.FilesDone, p.FilesTotal, FormatBytes(p.InputBytes), FormatBytes(p.OutputBytes))
		case "error":
			fmt.Fprintf(w, "\n[Error] %s: %v\n", p.File, p.Error)
		case "done":
			fmt.Fprintf(w, "\n[Done] %d files, %d failed, %s -> %s (%s)\n",
				p.FilesDone, p.FilesFailed, FormatBytes(p.InputBytes), FormatBytes(p.OutputBytes),
				FormatDuration(time.Since(p.StartTime)))
		}
	}
}
