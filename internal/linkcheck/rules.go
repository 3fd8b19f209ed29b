package linkcheck

import (
	"net/netip"
	"regexp"
	"strings"
)

const (
	MaxURLLength  = 2048
	MaxPathLength = 1000
)

var allowedSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
}

// Проверяется отдельно от allowedSchemes: если список разрешённых когда-нибудь
// расширят, эти схемы всё равно останутся запрещены.
var blockedSchemes = map[string]struct{}{
	"javascript": {},
	"data":       {},
	"vbscript":   {},
	"file":       {},
	"ftp":        {},
	"about":      {},
	"blob":       {},
}

// Порты не-HTTP сервисов.
var blockedPorts = map[int]struct{}{
	22:  {},
	23:  {},
	25:  {},
	53:  {},
	110: {},
	143: {},
	993: {},
	995: {},
}

// Другие сокращатели: запрещаем цепочки коротких ссылок.
var shortenerDomains = []string{
	"bit.ly",
	"tinyurl.com",
	"t.co",
	"goo.gl",
	"ow.ly",
	"is.gd",
	"buff.ly",
	"rebrand.ly",
	"cutt.ly",
	"tiny.cc",
	"shorturl.at",
}

var privateHostPatterns = []string{
	`localhost`,
	`127\.0\.0\.1`,
	`0\.0\.0\.0`,
	`\[::1\]`,
	`10(?:\.[0-9]{1,3}){3}`,
	`192\.168(?:\.[0-9]{1,3}){2}`,
	`172\.(?:1[6-9]|2[0-9]|3[01])(?:\.[0-9]{1,3}){2}`,
}

var loopbackHosts = []string{"localhost", "127.0.0.1", "0.0.0.0", "::1"}

var privatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

var (
	// opaqueSchemeRe ловит "javascript:...", "mailto:..." без "://".
	opaqueSchemeRe = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.-]*):(.*)$`)
	dottedQuadRe   = regexp.MustCompile(`^[0-9]{1,3}(?:\.[0-9]{1,3}){3}$`)
	// numericHostRe: сокращённые, десятичные и шестнадцатеричные формы IPv4
	// ("127.1", "2130706433", "0x7f.0.0.1"), которые браузер всё равно разрешит.
	numericHostRe = regexp.MustCompile(`(?i)^(?:0x[0-9a-f]*|[0-9]+)(?:\.(?:0x[0-9a-f]*|[0-9]+)){0,3}$`)
)

// Схемы без авторитета, которые не путаются с "user:pass@host".
var opaqueOnlySchemes = map[string]struct{}{
	"mailto": {},
	"tel":    {},
	"sms":    {},
	"sip":    {},
	"xmpp":   {},
	"news":   {},
	"magnet": {},
	"urn":    {},
}

// suspiciousPattern собирает одно регулярное выражение, привязанное к authority
// нормализованного URL: userinfo пропускается, после хоста допускается порт.
func suspiciousPattern(extraDomains []string) string {
	domains := make([]string, 0, len(shortenerDomains)+len(extraDomains))
	for _, d := range append(append([]string{}, shortenerDomains...), extraDomains...) {
		d = strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
		if d == "" {
			continue
		}
		domains = append(domains, regexp.QuoteMeta(d))
	}

	hosts := make([]string, 0, len(privateHostPatterns)+1)
	hosts = append(hosts, `(?:[a-z0-9-]+\.)*(?:`+strings.Join(domains, "|")+`)`)
	hosts = append(hosts, privateHostPatterns...)

	return `(?i)^[a-z][a-z0-9+.-]*://(?:[^/?#]*@)?(?:` + strings.Join(hosts, "|") + `)\.?(?::[0-9]*)?(?:[/?#]|$)`
}

// normalizeHost приводит хост к виду для сравнения: нижний регистр,
// без порта, скобок IPv6 и завершающей точки.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if strings.HasPrefix(host, "[") {
		if i := strings.Index(host, "]"); i > 0 {
			return host[1:i]
		}
	}
	if i := strings.LastIndex(host, ":"); i >= 0 && strings.Count(host, ":") == 1 {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}
