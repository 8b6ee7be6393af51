package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board.
type Platform string

const (
	// PlatformHH is hh.ru and its regional mirrors
	PlatformHH Platform = "hh"
	// PlatformHabr is Habr Career
	PlatformHabr Platform = "habr"
	// PlatformTelegram is a public Telegram channel post
	PlatformTelegram Platform = "telegram"
	// PlatformGreenhouse is the Greenhouse ATS platform
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS platform
	PlatformLever Platform = "lever"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the job board from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())

	switch {
	case host == "hh.ru" || strings.HasSuffix(host, ".hh.ru") ||
		host == "hh.kz" || strings.HasSuffix(host, ".hh.kz"):
		return PlatformHH
	case host == "career.habr.com":
		return PlatformHabr
	case host == "t.me" || host == "telegram.me":
		return PlatformTelegram
	case strings.HasSuffix(host, "greenhouse.io"):
		return PlatformGreenhouse
	case strings.HasSuffix(host, "lever.co"):
		return PlatformLever
	}
	return PlatformUnknown
}

// PageURL rewrites a URL to the variant that serves readable HTML.
// Telegram posts only render their text in the embed view.
func PageURL(urlStr string) string {
	if DetectPlatform(urlStr) != PlatformTelegram {
		return urlStr
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	q := parsed.Query()
	q.Set("embed", "1")
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

// PlatformContentSelectors returns content selectors for a platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformHH:
		return []string{
			"[data-qa='vacancy-description']",
			".vacancy-description",
			".vacancy-section",
			"main",
		}
	case PlatformHabr:
		return []string{
			".vacancy-description__text",
			".basic-section--appearance-vacancy-description",
			".page-container__main",
		}
	case PlatformTelegram:
		return []string{
			".tgme_widget_message_text",
			".tgme_page_description",
		}
	case PlatformGreenhouse:
		return []string{
			".job__description.body",
			".job__description",
			"#content",
		}
	case PlatformLever:
		return []string{
			".posting-page",
			".posting-description",
			".content",
		}
	default:
		return JobPostingSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".application-form",
		".apply-button-container",
		".social-share",
		".share-buttons",
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformHH:
		return append(common,
			"[data-qa='vacancy-response-link-top']",
			"[data-qa='vacancy-serp__vacancy']",
			".vacancy-similar",
		)
	case PlatformHabr:
		return append(common,
			".vacancy-similar",
			".vacancy-show-banner",
		)
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", "#usa_self_id_section")
	case PlatformLever:
		return append(common, ".apply-section", ".posting-apply")
	default:
		return common
	}
}
