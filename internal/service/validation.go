package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup

	errEmptyURL   = errors.New("empty url")
	errInvalidURL = errors.New("invalid url")
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "BR"
	defaultHTTPTimeout = 5 * time.Second
)

// DNSResolver abstracts DNS lookups to simplify testing.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// HTTPClient abstracts HTTP requests for validation purposes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ContactValidator normalizes and validates the contact fields of incoming
// leads: email deliverability, phone formats, website URLs.
type ContactValidator struct {
	DefaultRegion string
	dnsResolver   DNSResolver
	httpClient    HTTPClient
	domainCache   map[string]bool
}

// ContactValidatorOption configures optional dependencies.
type ContactValidatorOption func(*ContactValidator)

// WithDNSResolver overrides the default DNS resolver.
func WithDNSResolver(resolver DNSResolver) ContactValidatorOption {
	return func(v *ContactValidator) {
		v.dnsResolver = resolver
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPClient) ContactValidatorOption {
	return func(v *ContactValidator) {
		if client != nil {
			v.httpClient = client
		}
	}
}

// NewContactValidator builds a validator with sensible defaults.
func NewContactValidator(defaultRegion string, opts ...ContactValidatorOption) *ContactValidator {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	v := &ContactValidator{
		DefaultRegion: region,
		dnsResolver:   systemDNSResolver{},
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		domainCache: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// CleanEmail lowercases and validates an email address, including an MX
// lookup on the domain. Returns the normalized address, or "" when the
// value cannot be delivered to.
func (v *ContactValidator) CleanEmail(ctx context.Context, raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return ""
	}
	parts := strings.SplitN(email, "@", 2)
	domain := parts[1]
	if !isDomainValid(domain) {
		return ""
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return ""
	}
	hasMX, cached := v.domainCache[asciiDomain]
	if !cached {
		hasMX = v.hasMXRecord(ctx, asciiDomain)
		v.domainCache[asciiDomain] = hasMX
	}
	if !hasMX {
		return ""
	}
	return email
}

// NormalizePhone parses and formats a phone number as E.164 against the
// validator's default region. Returns "" for numbers that cannot exist.
func (v *ContactValidator) NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, v.DefaultRegion)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// SanitizeWebsite canonicalizes a website URL: forces https, strips
// tracking parameters, rejects values without a host.
func (v *ContactValidator) SanitizeWebsite(raw string) string {
	u, err := sanitizeURL(raw)
	if err != nil {
		return ""
	}
	stripTracking(u)
	return u.String()
}

func (v *ContactValidator) hasMXRecord(ctx context.Context, domain string) bool {
	if v.dnsResolver == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	records, err := v.dnsResolver.LookupMX(ctx, domain)
	return err == nil && len(records) > 0
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errEmptyURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errInvalidURL
	}
	u.Scheme = "https"
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

type systemDNSResolver struct{}

func (systemDNSResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}
