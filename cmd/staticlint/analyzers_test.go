package main

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
)

func TestNoOsExitAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), NoOsExitAnalyzer, "osexit", "notmain")
}

func TestMustCompileAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), MustCompileAnalyzer, "mustcompile")
}
