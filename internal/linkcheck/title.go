package linkcheck

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var wordSeparators = strings.NewReplacer("-", " ", "_", " ")

// Title строит подпись для ссылки по её адресу: "About Us - example.com".
// Если в пути нет последнего сегмента, возвращается домен.
// ok == false, если URL не удалось разобрать.
func Title(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	domain := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if domain == "" {
		return "", false
	}

	segment := strings.Trim(u.Path, "/")
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	segment = strings.TrimSuffix(segment, path.Ext(segment))
	segment = strings.TrimSpace(wordSeparators.Replace(segment))
	if segment == "" {
		return domain, true
	}

	// Caser не потокобезопасен, поэтому создаётся на каждый вызов.
	title := cases.Title(language.Und).String(segment)
	return title + " - " + domain, true
}
