package mustcompile

import "regexp"

var slugRe = regexp.MustCompile(`^[a-z0-9-]+$`)

var lateRe *regexp.Regexp

func init() {
	lateRe = regexp.MustCompile(`^[a-z]+$`)
}

func Match(s string) bool {
	re := regexp.MustCompile(`^[0-9]+$`) // want "regexp.MustCompile"
	return re.MatchString(s) || slugRe.MatchString(s) || lateRe.MatchString(s)
}

func Build(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(pattern)
}

type checker struct{}

func (checker) posix(s string) bool {
	return regexp.MustCompilePOSIX(`a+`).MatchString(s) // want "regexp.MustCompile"
}
