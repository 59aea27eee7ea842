package technographics

import (
	"context"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultFetchTimeout = 10 * time.Second
	inspectorUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxBodyBytes        = 2 << 20 // 2 MiB is plenty for signature matching
)

// Inspector fetches a company website and classifies its technology signals.
// A fetch failure or a non-200 response yields an empty profile, never an
// error: classification degrades to "no data" per the collaborator-error
// policy.
type Inspector struct {
	client *http.Client
}

// NewInspector builds an inspector with a bounded-timeout HTTP client.
func NewInspector(client *http.Client) *Inspector {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Inspector{client: client}
}

// Inspect fetches the website and returns its classified profile. The
// returned profile is never nil.
func (i *Inspector) Inspect(ctx context.Context, website string) *Profile {
	profile := &Profile{Categories: map[string][]string{}}

	website = strings.TrimSpace(website)
	if website == "" {
		return profile
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	if err != nil {
		log.Printf("technographics inspect url=%q error=%q", website, err)
		return profile
	}
	req.Header.Set("User-Agent", inspectorUserAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		log.Printf("technographics fetch url=%q error=%q", website, err)
		return profile
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("technographics fetch url=%q status=%d", website, resp.StatusCode)
		return profile
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Printf("technographics read url=%q error=%q", website, err)
		return profile
	}

	return Classify(resp.Header, body)
}

// Classify builds a profile from response headers and page content. Exposed
// separately from Inspect so callers with an already-fetched page (tests,
// batch crawlers) can classify without a network round trip.
func Classify(headers http.Header, body []byte) *Profile {
	profile := &Profile{Categories: map[string][]string{}}
	content := strings.ToLower(string(body))
	found := map[string]bool{}

	addTech := func(name, category string) {
		if !found[name] {
			found[name] = true
			profile.Technologies = append(profile.Technologies, name)
		}
		if category == "" {
			return
		}
		for _, existing := range profile.Categories[category] {
			if existing == name {
				return
			}
		}
		profile.Categories[category] = append(profile.Categories[category], name)
	}

	for name, sig := range techSignatures {
		for _, headerPattern := range sig.headers {
			if headerMatches(headers, headerPattern) {
				addTech(name, sig.category)
				break
			}
		}
		for _, pattern := range sig.patterns {
			if strings.Contains(content, strings.ToLower(pattern)) {
				addTech(name, sig.category)
				break
			}
		}
	}

	serviceSet := map[string]bool{}
	for service, indicators := range targetServiceIndicators {
		for _, indicator := range indicators {
			if strings.Contains(content, strings.ToLower(indicator)) {
				serviceSet[service] = true
				break
			}
		}
	}
	for service := range serviceSet {
		profile.TargetServices = append(profile.TargetServices, service)
	}

	classifyMarkup(body, addTech)

	// Deterministic ordering for stable output and round-trip tests.
	sort.Strings(profile.Technologies)
	sort.Strings(profile.TargetServices)
	for _, names := range profile.Categories {
		sort.Strings(names)
	}

	profile.TechCount = len(profile.Technologies)
	return profile
}

// classifyMarkup parses the HTML for meta generator tags and well-known
// script sources.
func classifyMarkup(body []byte, addTech func(name, category string)) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return
	}

	doc.Find(`meta[name="generator"]`).Each(func(_ int, sel *goquery.Selection) {
		generator := strings.ToLower(sel.AttrOr("content", ""))
		for _, cms := range generatorCMSNames {
			if strings.Contains(generator, cms) {
				addTech(cms, CategoryCMS)
			}
		}
	})

	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		src := strings.ToLower(sel.AttrOr("src", ""))
		for _, lib := range scriptLibraries {
			if strings.Contains(src, lib) {
				category := ""
				for _, framework := range modernFrontendFrameworks {
					if lib == framework {
						category = CategoryFrontend
					}
				}
				addTech(lib, category)
			}
		}
	})
}

func headerMatches(headers http.Header, pattern string) bool {
	pattern = strings.ToLower(pattern)
	for name, values := range headers {
		if strings.Contains(strings.ToLower(name), pattern) {
			return true
		}
		for _, value := range values {
			if strings.Contains(strings.ToLower(value), pattern) {
				return true
			}
		}
	}
	return false
}
