// Package linkcheck решает, можно ли сделать URL целью короткой ссылки.
//
// Все проверки статические: разбор строки и сопоставление с шаблонами.
// Сетевых запросов нет, живой запрос к цели сам по себе был бы SSRF.
package linkcheck

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Options задаёт статическую конфигурацию валидатора.
type Options struct {
	// SelfHosts: собственные домены сервиса, например "sho.rt" или "sho.rt:8080".
	SelfHosts []string
	// BlockedDomains дополняет встроенный список сокращателей.
	BlockedDomains []string
}

// Result содержит итог проверки. Либо Valid и NormalizedURL, либо Err.
type Result struct {
	Valid         bool
	NormalizedURL string
	Err           error
}

// Validator неизменяем после создания и безопасен для конкурентного использования.
type Validator struct {
	suspicious *regexp.Regexp
	selfHosts  map[string]struct{}
}

// New компилирует правила один раз.
func New(opts Options) (*Validator, error) {
	re, err := regexp.Compile(suspiciousPattern(opts.BlockedDomains))
	if err != nil {
		return nil, fmt.Errorf("compile suspicious pattern: %w", err)
	}

	self := make(map[string]struct{}, len(loopbackHosts)+len(opts.SelfHosts))
	for _, h := range loopbackHosts {
		self[h] = struct{}{}
	}
	for _, h := range opts.SelfHosts {
		if h = normalizeHost(h); h != "" {
			self[h] = struct{}{}
		}
	}

	return &Validator{suspicious: re, selfHosts: self}, nil
}

// Validate проверяет URL. Проверки идут по порядку, первая неудачная
// определяет сообщение.
func (v *Validator) Validate(raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return rejected(ErrURLRequired, "URL is required")
	}
	if len(raw) > MaxURLLength {
		return rejected(ErrURLTooLong, fmt.Sprintf("URL is too long (maximum %d characters)", MaxURLLength))
	}

	normalized := raw
	if !strings.Contains(raw, "://") {
		if scheme, ok := opaqueScheme(raw); ok {
			if _, allowed := allowedSchemes[scheme]; allowed {
				// "http:example.com" без слешей
				return rejected(ErrInvalidFormat, "Invalid URL format")
			}
			return schemeRejection(scheme)
		}
		normalized = "https://" + raw
	}

	u, err := url.Parse(normalized)
	if err != nil {
		if strings.Contains(err.Error(), "invalid port") {
			return rejected(ErrInvalidPort, "Invalid port in URL")
		}
		return rejected(ErrInvalidFormat, "Invalid URL format")
	}

	scheme := strings.ToLower(u.Scheme)
	if _, blocked := blockedSchemes[scheme]; blocked {
		return schemeRejection(scheme)
	}
	if _, ok := allowedSchemes[scheme]; !ok {
		return schemeRejection(scheme)
	}

	host := normalizeHost(u.Hostname())
	if host == "" {
		return rejected(ErrMissingHost, "URL must include a valid domain")
	}

	if v.suspicious.MatchString(normalized) {
		return rejected(ErrSuspicious, "URL appears to be suspicious or potentially harmful")
	}

	if _, ok := v.selfHosts[host]; ok {
		return rejected(ErrSelfReference, "URL points to this service")
	}

	if res, ok := checkIP(host); !ok {
		return res
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port > 65535 {
			return rejected(ErrInvalidPort, "Invalid port in URL")
		}
		if _, blocked := blockedPorts[port]; blocked {
			return rejected(ErrPortNotAllowed, fmt.Sprintf("Port %d is not allowed", port))
		}
	}

	if len(u.Path) > MaxPathLength {
		return rejected(ErrPathTooLong, "URL path is too long")
	}

	return Result{Valid: true, NormalizedURL: normalized}
}

// Rejection возвращает причину отказа, если она есть.
func (r Result) Rejection() (*Rejection, bool) {
	var rej *Rejection
	if errors.As(r.Err, &rej) {
		return rej, true
	}
	return nil, false
}

func rejected(reason error, message string) Result {
	return Result{Err: reject(reason, message)}
}

func schemeRejection(scheme string) Result {
	if scheme == "" {
		return rejected(ErrSchemeNotAllowed, "URL scheme is missing, only http and https are allowed")
	}
	if _, blocked := blockedSchemes[scheme]; blocked {
		return rejected(ErrBlockedScheme, fmt.Sprintf("Protocol '%s' is not allowed", scheme))
	}
	return rejected(ErrSchemeNotAllowed, fmt.Sprintf("Protocol '%s' is not allowed, only http and https are accepted", scheme))
}

// opaqueScheme распознаёт явную схему без "://" ("javascript:alert(1)").
// Пара host:port ("example.com:8080", "localhost:3000") и userinfo
// ("user:pass@example.com") схемой не считаются.
func opaqueScheme(raw string) (string, bool) {
	m := opaqueSchemeRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	scheme, rest := strings.ToLower(m[1]), m[2]
	if _, blocked := blockedSchemes[scheme]; blocked {
		return scheme, true
	}
	if strings.Contains(scheme, ".") {
		return "", false
	}
	if rest == "" || unicode.IsDigit(rune(rest[0])) {
		return "", false
	}
	if _, opaque := opaqueOnlySchemes[scheme]; !opaque && hasUserinfo(rest) {
		return "", false
	}
	return scheme, true
}

// hasUserinfo сообщает, похож ли остаток после двоеточия на "pass@host".
func hasUserinfo(rest string) bool {
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	at := strings.LastIndex(rest, "@")
	return at > 0 && at < len(rest)-1
}

// checkIP отклоняет приватные, loopback и link-local адреса,
// записанные числами. Имена хостов не резолвятся.
func checkIP(host string) (Result, bool) {
	var addr netip.Addr

	switch {
	case dottedQuadRe.MatchString(host):
		var octets [4]byte
		for i, part := range strings.Split(host, ".") {
			n, err := strconv.Atoi(part)
			if err != nil || n > 255 {
				return rejected(ErrInvalidIP, "Invalid IP address"), false
			}
			octets[i] = byte(n)
		}
		addr = netip.AddrFrom4(octets)
	case numericHostRe.MatchString(host):
		return rejected(ErrInvalidIP, "Invalid IP address"), false
	case strings.Contains(host, ":"):
		a, err := netip.ParseAddr(host)
		if err != nil {
			return rejected(ErrInvalidIP, "Invalid IP address"), false
		}
		addr = a.Unmap()
	default:
		return Result{}, true
	}

	if isPrivate(addr) {
		return rejected(ErrPrivateIP, "Private IP addresses are not allowed"), false
	}
	return Result{}, true
}

func isPrivate(addr netip.Addr) bool {
	if addr.Is4() {
		for _, p := range privatePrefixes {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified()
}
