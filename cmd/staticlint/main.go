// Package main собирает multichecker для статического анализа linkguard.
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
//
// Состав:
//
//   - printf, shadow, structtag, unusedresult из golang.org/x/tools/go/analysis/passes;
//   - все анализаторы класса SA из staticcheck.io;
//   - noosexit: запрещает прямой вызов os.Exit в функции main пакета main;
//   - mustcompile: запрещает regexp.MustCompile внутри функций.
//
// Шаблоны проверки ссылок компилируются один раз при загрузке пакета,
// mustcompile следит, чтобы паникующая компиляция не попала в обработку запроса.
package main

import (
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/staticcheck"
)

func main() {
	checks := []*analysis.Analyzer{
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		unusedresult.Analyzer,

		NoOsExitAnalyzer,
		MustCompileAnalyzer,
	}

	for _, v := range staticcheck.Analyzers {
		checks = append(checks, v.Analyzer)
	}

	multichecker.Main(checks...)
}
