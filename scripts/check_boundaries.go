package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "snapstream"

// Roots scanned relative to the repository root.
var roots = []string{"contexts", "contracts", "internal"}

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// source is one non-test Go file and where it sits in the layout.
type source struct {
	path string
	// area and service are set for files under contexts/<area>/<service>.
	area    string
	service string
	layer   string
}

func (s source) under(prefix string) bool {
	return hasPrefix(s.path, prefix)
}

func (s source) moduleImport() string {
	return fmt.Sprintf("%s/contexts/%s/%s", modulePath, s.area, s.service)
}

// rule returns a non-empty reason when src must not import importPath.
type rule func(src source, importPath string) string

var rules = []rule{
	contextIsolation,
	contextsStayOffPlatform,
	contractsStayStdlib,
	storageDriversInAdapters,
	brokerClientsInMessaging,
	platformBelowBootstrap,
	layerAllowlist,
}

func main() {
	violations := collectViolations(roots...)
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Line == violations[j].Line {
				return violations[i].Import < violations[j].Import
			}
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(dirs ...string) []violation {
	var violations []violation
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			violations = append(violations, validateFile(path, classify(filepath.ToSlash(path)))...)
			return nil
		})
	}
	return violations
}

func classify(normalized string) source {
	src := source{path: normalized}
	parts := strings.Split(normalized, "/")
	if len(parts) >= 4 && parts[0] == "contexts" {
		src.area = parts[1]
		src.service = parts[2]
		src.layer = parts[3]
	}
	return src
}

func validateFile(path string, src source) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: src.path, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		for _, check := range rules {
			if reason := check(src, importPath); reason != "" {
				violations = append(violations, violation{
					File:   src.path,
					Line:   line,
					Import: importPath,
					Rule:   reason,
				})
			}
		}
	}
	return violations
}

// contextIsolation keeps each service to itself. The producer side and the
// read model exchange nothing but records defined in contracts.
func contextIsolation(src source, importPath string) string {
	if src.area == "" || !hasPrefix(importPath, modulePath+"/contexts") {
		return ""
	}
	if hasPrefix(importPath, src.moduleImport()) {
		return ""
	}
	if !hasPrefix(importPath, modulePath+"/contexts/"+src.area) {
		return "contexts meet only through contracts/gen/events"
	}
	return "cross-module imports are forbidden"
}

func contextsStayOffPlatform(src source, importPath string) string {
	if src.area == "" || !hasPrefix(importPath, modulePath+"/internal") {
		return ""
	}
	return "contexts must not import runtime infrastructure"
}

func contractsStayStdlib(src source, importPath string) string {
	if !src.under("contracts") || isStdlib(importPath) {
		return ""
	}
	return "contracts must only use the standard library"
}

var storageDrivers = []string{
	"gorm.io",
	"github.com/jackc/pgx",
	"github.com/glebarez/sqlite",
}

// storageDriversInAdapters keeps SQL behind the postgres adapters and the
// shared connection package.
func storageDriversInAdapters(src source, importPath string) string {
	if !isAllowed(importPath, storageDrivers) {
		return ""
	}
	if src.under("internal/platform/db") || (src.layer == "adapters" && strings.Contains(src.path, "/adapters/postgres/")) {
		return ""
	}
	return "storage drivers belong to postgres adapters"
}

var brokerClients = []string{
	"github.com/twmb/franz-go",
	"github.com/rabbitmq/amqp091-go",
}

func brokerClientsInMessaging(src source, importPath string) string {
	if !isAllowed(importPath, brokerClients) || src.under("internal/platform/messaging") {
		return ""
	}
	return "broker clients belong to internal/platform/messaging"
}

func platformBelowBootstrap(src source, importPath string) string {
	if !src.under("internal/platform") {
		return ""
	}
	if hasPrefix(importPath, modulePath+"/internal/app") || hasPrefix(importPath, modulePath+"/cmd") {
		return "platform must not import bootstrap or commands"
	}
	return ""
}

// layerAllowlist is the per-layer import allowlist inside a service.
func layerAllowlist(src source, importPath string) string {
	if src.area == "" || isStdlib(importPath) {
		return ""
	}
	own := src.moduleImport()

	var allowed []string
	switch src.layer {
	case "domain":
		allowed = []string{own + "/domain"}
	case "application":
		if strings.Contains(importPath, "/adapters/") {
			return "application must not import adapters"
		}
		allowed = []string{own + "/application", own + "/domain", own + "/ports", modulePath + "/contracts"}
	case "ports":
		// Generated mocks under ports/mocks also need gomock.
		allowed = []string{own + "/ports", own + "/domain", modulePath + "/contracts", "go.uber.org/mock"}
	default:
		return ""
	}
	if isAllowed(importPath, allowed) {
		return ""
	}
	return src.layer + " import is outside explicit allowlist"
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if strings.HasPrefix(importPath, modulePath+"/") {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
