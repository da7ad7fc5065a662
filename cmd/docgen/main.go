// Command docgen regenerates the API reference (internal/docs/api.adoc)
// from the @Title/@Route/@Description/@Response comments on the handlers
// in internal/api. Run it after adding or changing an endpoint.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

type Endpoint struct {
	Title       string
	Route       string
	Description string
	Response    string
}

func main() {
	apiDir := "internal/api"
	outFile := "internal/docs/api.adoc"

	endpoints, err := scanEndpoints(apiDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docgen: %v\n", err)
		os.Exit(1)
	}
	if err := writeAdoc(outFile, endpoints); err != nil {
		fmt.Fprintf(os.Stderr, "docgen: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d endpoints)\n", outFile, len(endpoints))
}

func scanEndpoints(apiDir string) ([]Endpoint, error) {
	files, err := os.ReadDir(apiDir)
	if err != nil {
		return nil, err
	}

	reTitle := regexp.MustCompile(`// @Title: (.*)`)
	reRoute := regexp.MustCompile(`// @Route: (.*)`)
	reDesc := regexp.MustCompile(`// @Description: (.*)`)
	reResp := regexp.MustCompile(`// @Response: (.*)`)

	var endpoints []Endpoint
	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".go") || strings.HasSuffix(file.Name(), "_test.go") {
			continue
		}

		f, err := os.Open(filepath.Join(apiDir, file.Name()))
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(f)
		var current Endpoint
		for scanner.Scan() {
			line := scanner.Text()
			if m := reTitle.FindStringSubmatch(line); len(m) > 1 {
				current.Title = strings.TrimSpace(m[1])
			}
			if m := reRoute.FindStringSubmatch(line); len(m) > 1 {
				current.Route = strings.TrimSpace(m[1])
			}
			if m := reDesc.FindStringSubmatch(line); len(m) > 1 {
				current.Description = strings.TrimSpace(m[1])
			}
			if m := reResp.FindStringSubmatch(line); len(m) > 1 {
				current.Response = strings.TrimSpace(m[1])
				// End of block, append and reset
				if current.Title != "" && current.Route != "" {
					endpoints = append(endpoints, current)
					current = Endpoint{}
				}
			}
		}
		f.Close()
	}

	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].Route < endpoints[j].Route })
	return endpoints, nil
}

func writeAdoc(path string, endpoints []Endpoint) error {
	var b strings.Builder
	b.WriteString("= dam API Reference\n\n")
	b.WriteString("Auto-generated from handler comments by cmd/docgen. Do not edit.\n\n")

	for _, ep := range endpoints {
		b.WriteString(fmt.Sprintf("== %s\n\n", ep.Title))
		b.WriteString(fmt.Sprintf("`%s`\n\n", ep.Route))
		if ep.Description != "" {
			b.WriteString(ep.Description + "\n\n")
		}
		if ep.Response != "" {
			b.WriteString(fmt.Sprintf("Response: %s\n\n", ep.Response))
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
