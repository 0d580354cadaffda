package render

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
	BlockUnusual    BlockType = "unusual_traffic"
)

// DetectBlock checks an HTTP response for signs of anti-bot protection.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	// Cloudflare: 403/503 with cf-* headers.
	if resp.StatusCode == 403 || resp.StatusCode == 503 {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" {
			return true, BlockCloudflare
		}
		if resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
	}

	if blocked, bt := DetectBlockContent(string(body)); blocked {
		return true, bt
	}

	// JS-only shell: very small body with noscript or meta refresh.
	if len(body) < 2000 {
		lower := strings.ToLower(string(body))
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, "meta http-equiv=\"refresh\"") {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}

// DetectBlockContent checks rendered page content for challenge or
// interstitial markers. Used after a browser navigation where no raw
// response headers are available.
func DetectBlockContent(content string) (bool, BlockType) {
	lower := strings.ToLower(content)

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return true, BlockCloudflare
	}

	// Google's /sorry/ page.
	if strings.Contains(lower, "unusual traffic from your computer network") {
		return true, BlockUnusual
	}

	if strings.Contains(lower, "g-recaptcha") ||
		strings.Contains(lower, "h-captcha") ||
		strings.Contains(lower, "complete the recaptcha") ||
		strings.Contains(lower, "captcha-form") {
		return true, BlockCaptcha
	}

	return false, BlockNone
}
