package main

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
)

// MustCompileAnalyzer запрещает regexp.MustCompile и regexp.MustCompilePOSIX
// в телах функций. Такие шаблоны объявляются пакетными переменными,
// а динамические компилируются через regexp.Compile с проверкой ошибки.
// Функции init допускаются.
var MustCompileAnalyzer = &analysis.Analyzer{
	Name: "mustcompile",
	Doc:  "запрещает regexp.MustCompile внутри функций",
	Run:  runMustCompile,
}

func runMustCompile(pass *analysis.Pass) (any, error) {
	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Body == nil {
				continue
			}
			if fn.Recv == nil && fn.Name.Name == "init" {
				continue
			}

			ast.Inspect(fn.Body, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				if isPkgFunc(pass, call, "regexp", "MustCompile") || isPkgFunc(pass, call, "regexp", "MustCompilePOSIX") {
					pass.Reportf(call.Pos(), "regexp.MustCompile внутри функции: вынесите шаблон в переменную пакета")
				}
				return true
			})
		}
	}

	return nil, nil
}
