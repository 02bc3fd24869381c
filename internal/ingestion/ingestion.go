// Package ingestion loads job posting text from local files or URLs and
// normalizes it for the refinement workflow.
package ingestion

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/jonathan/jd-refiner/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the HTTP request fails
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = fmt.Errorf("content extraction failed")
	// ErrEmptyContent is returned when no usable text could be extracted
	ErrEmptyContent = fmt.Errorf("no job posting text found")
)

// FromFile reads a job posting from a local text file and cleans it.
func FromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read job posting file %s: %w", path, err)
	}

	text := CleanText(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyContent, path)
	}
	return text, nil
}

// FromURL fetches a job posting page, extracts the main text, and cleans it.
// If useBrowser is true and the HTTP fetch yields too little content, the
// page is re-rendered in a headless browser (SPA job boards).
func FromURL(ctx context.Context, urlStr string, useBrowser, verbose bool) (string, error) {
	result, err := fetch.URL(ctx, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	if verbose {
		log.Printf("[VERBOSE] Fetched HTML: %d bytes", len(result.HTML))
	}

	text, err := fetch.ExtractMainText(result.HTML, fetch.JobPostingSelectors())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	if verbose {
		log.Printf("[VERBOSE] Extracted text: %d chars", len(text))
	}

	if useBrowser && fetch.ShouldUseBrowser(text) {
		if verbose {
			log.Printf("[VERBOSE] Content too short (%d chars < %d), falling back to browser rendering...",
				len(text), fetch.MinContentLength)
		}
		browserHTML, browserErr := fetch.WithBrowser(ctx, urlStr, fetch.DefaultTimeout, verbose)
		if browserErr != nil {
			log.Printf("Warning: browser fallback failed: %v", browserErr)
		} else {
			browserText, extractErr := fetch.ExtractMainText(browserHTML, fetch.JobPostingSelectors())
			if extractErr == nil && len(browserText) > len(text) {
				text = browserText
			}
		}
	}

	text = CleanText(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyContent, urlStr)
	}
	return text, nil
}

var multiSpaceRe = regexp.MustCompile(`\s+`)

// CleanText normalizes job posting text while preserving line structure:
// line endings become LF, in-line whitespace runs collapse, and consecutive
// blank lines are capped at one.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	blankRun := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
			cleaned = append(cleaned, "")
			continue
		}
		blankRun = 0
		cleaned = append(cleaned, multiSpaceRe.ReplaceAllString(line, " "))
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
